package domain

import "context"

type FileType string

const (
	FileTypeCV    FileType = "cv"
	FileTypeImage FileType = "image"
)

// StoredFile describes an uploaded object.
type StoredFile struct {
	Key         string   `json:"key"`
	URL         string   `json:"url"`
	FileType    FileType `json:"fileType"`
	ContentType string   `json:"contentType"`
	Size        int64    `json:"size"`
}

// FileStorage is the object storage boundary.
type FileStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// MalwareScanner returns the detected threat name, or "" for clean content.
type MalwareScanner interface {
	Scan(ctx context.Context, filename string, data []byte) (string, error)
}

type UploadUsecase interface {
	Upload(ctx context.Context, viewer Viewer, fileType FileType, filename string, data []byte) (*StoredFile, error)
	Delete(ctx context.Context, viewer Viewer, fileType FileType, fileName string) error
	// Check reports whether an upload with this name and size would pass the
	// checks that do not need the content.
	Check(ctx context.Context, viewer Viewer, fileType FileType, fileName string, size int64) error
}

// AuditEvent records a moderation or lifecycle action.
type AuditEvent struct {
	Action    string
	ActorID   string
	ActorRole Role
	Subject   string
	RequestID string
	Details   map[string]any
}

const (
	AuditJobCreated         = "job_created"
	AuditJobUpdated         = "job_updated"
	AuditJobDeleted         = "job_deleted"
	AuditJobPublished       = "job_published"
	AuditJobUnpublished     = "job_unpublished"
	AuditApplicationCreated = "application_created"
	AuditApplicationStatus  = "application_status_changed"
	AuditCompanyRegistered  = "company_registered"
	AuditCompanyApproved    = "company_approved"
	AuditCompanyRejected    = "company_rejected"
	AuditCompanyUpdated     = "company_updated"
	AuditCompanyDeleted     = "company_deleted"
	AuditFileUploaded       = "file_uploaded"
	AuditFileDeleted        = "file_deleted"
	AuditFileRejected       = "file_rejected"
	AuditRateLimited        = "rate_limit_triggered"
	AuditUnauthorized       = "unauthorized_access"
)

type AuditLogger interface {
	Record(ctx context.Context, event AuditEvent)
}

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}
