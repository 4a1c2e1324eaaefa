package storage

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"go-recruitment-platform/internal/domain"
)

var ErrInvalidFile = errors.New("invalid file")

// Magic byte signatures keyed by lowercase extension
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}},
	".webp": {{0x52, 0x49, 0x46, 0x46}},
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	".docx": {{0x50, 0x4B, 0x03, 0x04}},
}

var allowedExtensions = map[domain.FileType]map[string]string{
	domain.FileTypeCV: {
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	},
	domain.FileTypeImage: {
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
	},
}

// CheckName checks the extension whitelist for fileType. It returns the
// lowercase extension and the content type to store the object with.
func CheckName(fileType domain.FileType, filename string) (string, string, error) {
	allowed, ok := allowedExtensions[fileType]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown file type %q", ErrInvalidFile, fileType)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", "", fmt.Errorf("%w: file has no extension", ErrInvalidFile)
	}
	contentType, ok := allowed[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: extension %s not allowed for %s", ErrInvalidFile, ext, fileType)
	}
	return ext, contentType, nil
}

// Validate runs CheckName and verifies that the content starts with the
// extension's magic bytes.
func Validate(fileType domain.FileType, filename string, data []byte) (string, string, error) {
	ext, contentType, err := CheckName(fileType, filename)
	if err != nil {
		return "", "", err
	}
	if !hasMagic(ext, data) {
		return "", "", fmt.Errorf("%w: content does not match extension", ErrInvalidFile)
	}

	// docx and doc are often sniffed as zip or octet-stream; the magic bytes
	// above are authoritative for those.
	if fileType == domain.FileTypeImage {
		if sniffed := http.DetectContentType(data); !strings.HasPrefix(sniffed, "image/") {
			return "", "", fmt.Errorf("%w: MIME type not allowed: %s", ErrInvalidFile, sniffed)
		}
	}
	return ext, contentType, nil
}

func hasMagic(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// SanitizeFilename keeps ASCII letters, digits, '_' and '-' of the base name.
func SanitizeFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.ReplaceAll(base, " ", "_")

	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

// ValidObjectName reports whether name is a single path segment produced by
// the upload flow.
func ValidObjectName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return false
	}
	return filepath.Ext(name) != ""
}
