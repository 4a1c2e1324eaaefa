package validation

import (
	"errors"
	"fmt"
	"strings"

	"go-recruitment-platform/internal/domain"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	"Title":             "Title",
	"Description":       "Description",
	"CompanyID":         "Company",
	"EmploymentType":    "Employment type",
	"ExperienceLevel":   "Experience level",
	"Categories":        "Categories",
	"Keywords":          "Keywords",
	"ApplicationEmail":  "Application email",
	"Status":            "Status",
	"Note":              "Note",
	"CoverLetter":       "Cover letter",
	"ResumeURL":         "Resume URL",
	"Name":              "Name",
	"FullName":          "Full name",
	"Phone":             "Phone number",
	"Bio":               "Bio",
	"Website":           "Website",
	"Industry":          "Industry",
	"Size":              "Company size",
	"Action":            "Action",
	"Reason":            "Reason",
	"YearsOfExperience": "Years of experience",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.StructField())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "email":
		return fmt.Sprintf("%s: invalid email format", label)
	case "url":
		return fmt.Sprintf("%s: invalid URL format", label)
	case "valid_name":
		return fmt.Sprintf("%s: only letters, spaces and common punctuation are allowed", label)
	case "valid_phone":
		return fmt.Sprintf("%s: invalid phone number (7-15 digits, optional +)", label)
	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji or special symbols", label)
	case "application_status":
		return fmt.Sprintf("%s: must be one of: %s", label, statusList())
	case "gtefield":
		return fmt.Sprintf("%s: must be greater than or equal to %s", label, getFieldLabel(param))
	default:
		return fmt.Sprintf("%s: failed validation (%s)", label, e.Tag())
	}
}

func statusList() string {
	names := make([]string, len(domain.ApplicationStatuses))
	for i, s := range domain.ApplicationStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
