package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-recruitment-platform/internal/domain"
	"go-recruitment-platform/pkg/apperror"
	"go-recruitment-platform/pkg/storage"

	"github.com/google/uuid"
)

type uploadUsecase struct {
	files    domain.FileStorage
	maxBytes int64
	audit    domain.AuditLogger
	scanner  domain.MalwareScanner
}

type UploadOption func(*uploadUsecase)

// WithScanner rejects uploads the scanner flags. Scan failures reject the
// upload as well.
func WithScanner(scanner domain.MalwareScanner) UploadOption {
	return func(u *uploadUsecase) { u.scanner = scanner }
}

func NewUploadUsecase(files domain.FileStorage, maxBytes int64, audit domain.AuditLogger, opts ...UploadOption) domain.UploadUsecase {
	u := &uploadUsecase{files: files, maxBytes: maxBytes, audit: audit}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *uploadUsecase) Upload(ctx context.Context, viewer domain.Viewer, fileType domain.FileType, filename string, data []byte) (*domain.StoredFile, error) {
	if !viewer.IsAuthenticated() {
		return nil, apperror.Unauthorized("Authentication required")
	}
	if u.files == nil {
		return nil, apperror.Unavailable(errors.New("file storage is not configured"))
	}
	if len(data) == 0 {
		return nil, apperror.BadRequest("File is empty")
	}
	if u.maxBytes > 0 && int64(len(data)) > u.maxBytes {
		return nil, apperror.TooLarge(fmt.Sprintf("File exceeds the %d byte limit", u.maxBytes))
	}

	ext, contentType, err := storage.Validate(fileType, filename, data)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	if u.scanner != nil {
		threat, err := u.scanner.Scan(ctx, filename, data)
		if err != nil {
			return nil, apperror.Unavailable(err)
		}
		if threat != "" {
			record(ctx, u.audit, viewer, domain.AuditFileRejected, filename, map[string]any{"threat": threat})
			return nil, apperror.BadRequest("File rejected by malware scan")
		}
	}

	if fileType == domain.FileTypeImage {
		compressed, err := storage.CompressImage(data, storage.DefaultMaxDimension, storage.DefaultJPEGQuality)
		if err != nil {
			return nil, apperror.BadRequest("Image could not be processed")
		}
		data, ext, contentType = compressed, ".jpg", "image/jpeg"
	}

	name := fmt.Sprintf("%s_%s%s", uuid.NewString(), storage.SanitizeFilename(filename), ext)
	key := string(fileType) + "/" + name
	url, err := u.files.Put(ctx, key, contentType, data)
	if err != nil {
		return nil, apperror.Unavailable(err)
	}

	record(ctx, u.audit, viewer, domain.AuditFileUploaded, key, map[string]any{"size": len(data)})
	return &domain.StoredFile{
		Key:         name,
		URL:         url,
		FileType:    fileType,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (u *uploadUsecase) Delete(ctx context.Context, viewer domain.Viewer, fileType domain.FileType, fileName string) error {
	if !viewer.IsAdmin() && !viewer.IsRecruiter() {
		return apperror.Forbidden("Only recruiters and admins can delete files")
	}
	if fileType != domain.FileTypeCV && fileType != domain.FileTypeImage {
		return apperror.BadRequest("Unknown file type")
	}
	if !storage.ValidObjectName(fileName) {
		return apperror.BadRequest("Invalid file name")
	}
	if u.files == nil {
		return apperror.Unavailable(errors.New("file storage is not configured"))
	}

	key := string(fileType) + "/" + fileName
	if err := u.files.Delete(ctx, key); err != nil {
		return apperror.Unavailable(err)
	}
	record(ctx, u.audit, viewer, domain.AuditFileDeleted, key, nil)
	return nil
}

// Check collects every problem with the declared upload into one error.
func (u *uploadUsecase) Check(_ context.Context, viewer domain.Viewer, fileType domain.FileType, fileName string, size int64) error {
	if !viewer.IsAuthenticated() {
		return apperror.Unauthorized("Authentication required")
	}

	var problems []string
	if strings.TrimSpace(fileName) == "" {
		problems = append(problems, "File name is required")
	} else if _, _, err := storage.CheckName(fileType, fileName); err != nil {
		problems = append(problems, err.Error())
	}
	switch {
	case size <= 0:
		problems = append(problems, "File is empty")
	case u.maxBytes > 0 && size > u.maxBytes:
		problems = append(problems, fmt.Sprintf("File exceeds the %d byte limit", u.maxBytes))
	}

	if len(problems) > 0 {
		return apperror.BadRequest(strings.Join(problems, "; "))
	}
	return nil
}
