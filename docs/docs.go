// Package docs registers the OpenAPI description served at /v1/swagger.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["health"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}}},
        "/jobs": {
            "get": {"tags": ["jobs"], "summary": "List jobs", "parameters": [{"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "page_size", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["jobs"], "summary": "Create a job", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}
        },
        "/jobs/search": {"post": {"tags": ["jobs"], "summary": "Search published jobs", "responses": {"200": {"description": "OK"}}}},
        "/jobs/company/{companyId}": {"get": {"tags": ["jobs"], "summary": "List jobs of a company", "parameters": [{"type": "string", "name": "companyId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/jobs/{id}": {
            "get": {"tags": ["jobs"], "summary": "Get job details", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["jobs"], "summary": "Update a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["jobs"], "summary": "Delete a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/jobs/{id}/publish": {"patch": {"security": [{"BearerAuth": []}], "tags": ["jobs"], "summary": "Publish a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/jobs/{id}/unpublish": {"patch": {"security": [{"BearerAuth": []}], "tags": ["jobs"], "summary": "Unpublish a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/jobs/{id}/apply": {"post": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Apply to a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/jobs/{id}/applicants": {"get": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "List applicants of a job", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/jobs/{id}/applicants/export": {"get": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Export applicants as a spreadsheet", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/jobs/{id}/applicants/{applicantId}/status": {"patch": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Change an application status", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "applicantId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/applications/{applicantId}/status": {"patch": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "Change an application status", "parameters": [{"type": "string", "name": "applicantId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/applications/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["applications"], "summary": "List my applications", "responses": {"200": {"description": "OK"}}}},
        "/companies": {"get": {"tags": ["companies"], "summary": "List companies", "parameters": [{"type": "boolean", "name": "verified", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/companies/register": {"post": {"security": [{"BearerAuth": []}], "tags": ["companies"], "summary": "Register a company", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/companies/pending": {"get": {"security": [{"BearerAuth": []}], "tags": ["companies"], "summary": "List companies awaiting moderation", "responses": {"200": {"description": "OK"}}}},
        "/companies/verify": {"post": {"security": [{"BearerAuth": []}], "tags": ["companies"], "summary": "Approve or reject a company", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/companies/{id}": {
            "get": {"tags": ["companies"], "summary": "Get a company", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["companies"], "summary": "Update a company", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["companies"], "summary": "Delete a company", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/users/sync": {"post": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Sync the caller's account", "responses": {"200": {"description": "OK"}}}},
        "/users/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get my profile", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update my profile", "responses": {"200": {"description": "OK"}}}
        },
        "/users": {"get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "List users", "parameters": [{"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "page_size", "in": "query"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}},
        "/users/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get a user", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update a user account", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Delete a user", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/uploads/cv": {"post": {"security": [{"BearerAuth": []}], "tags": ["uploads"], "summary": "Upload a CV", "consumes": ["multipart/form-data"], "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}], "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid or infected file"}, "413": {"description": "Too Large"}, "429": {"description": "Daily upload quota reached"}, "503": {"description": "Storage or scanner unavailable"}}}},
        "/uploads/image": {"post": {"security": [{"BearerAuth": []}], "tags": ["uploads"], "summary": "Upload an image", "consumes": ["multipart/form-data"], "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}], "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid or infected file"}, "413": {"description": "Too Large"}, "429": {"description": "Daily upload quota reached"}, "503": {"description": "Storage or scanner unavailable"}}}},
        "/uploads/validate": {"get": {"security": [{"BearerAuth": []}], "tags": ["uploads"], "summary": "Check an upload before sending it", "parameters": [{"type": "string", "name": "fileType", "in": "query", "required": true}, {"type": "string", "name": "fileName", "in": "query", "required": true}, {"type": "integer", "name": "fileSize", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/uploads/{fileType}/{fileName}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["uploads"], "summary": "Delete an uploaded file", "parameters": [{"type": "string", "name": "fileType", "in": "path", "required": true}, {"type": "string", "name": "fileName", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Recruitment Platform API",
	Description:      "Job board and applicant tracking backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
