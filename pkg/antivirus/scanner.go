package antivirus

import "context"

// Scanner inspects file content for malware. Scan returns the threat name
// when the content is infected. A non-nil error means the content could not
// be scanned and must be treated as unsafe.
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) (string, error)
	Name() string
	Available(ctx context.Context) bool
}
