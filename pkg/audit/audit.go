package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
	"time"

	"go-recruitment-platform/internal/domain"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes audit events as structured JSON through zap.
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
	now         func() time.Time
}

// New builds a production zap logger. An empty path writes to stdout.
func New(serviceName, path string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"

	if path == "" {
		path = "stdout"
	}
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		// Fallback to a basic logger if config fails
		logger, _ = zap.NewProduction()
	}
	return NewWithZap(logger, serviceName)
}

func NewWithZap(logger *zap.Logger, serviceName string) *Logger {
	return &Logger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment(),
		now:         time.Now,
	}
}

// Nop discards every event.
func Nop() *Logger {
	return NewWithZap(zap.NewNop(), "")
}

func (l *Logger) Record(_ context.Context, event domain.AuditEvent) {
	if l == nil {
		return
	}

	fields := []zap.Field{
		zap.String("service", l.serviceName),
		zap.String("env", l.environment),
		zap.String("event", event.Action),
		zap.Time("occurred_at", l.now().UTC()),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.ActorRole != "" {
		fields = append(fields, zap.String("actor_role", string(event.ActorRole)))
	}
	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", scrub(event.Details)))
	}

	l.zapLogger.Log(level(event.Action), event.Action, fields...)
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.zapLogger.Sync()
}

func level(action string) zapcore.Level {
	switch action {
	case domain.AuditUnauthorized:
		return zapcore.ErrorLevel
	case domain.AuditRateLimited, domain.AuditCompanyRejected, domain.AuditCompanyDeleted, domain.AuditJobDeleted:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 3 || at < 0 {
		return "***"
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue creates a short SHA256 digest of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

// scrub masks personal data in event details. The caller's map is not
// modified.
func scrub(details map[string]any) map[string]any {
	out := make(map[string]any, len(details))
	for k, v := range details {
		s, ok := v.(string)
		switch {
		case ok && k == "email":
			out[k] = MaskEmail(s)
		case ok && k == "ip":
			out[k] = HashValue(s)
		default:
			out[k] = v
		}
	}
	return out
}

func environment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
