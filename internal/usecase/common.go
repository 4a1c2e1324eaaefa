package usecase

import (
	"context"
	"time"

	"go-recruitment-platform/internal/domain"
)

func now() time.Time {
	return time.Now().UTC()
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(domain.KeyRequestID).(string)
	return id
}

// record writes an audit event attributed to actor. A nil logger discards it.
func record(ctx context.Context, l domain.AuditLogger, actor domain.Viewer, action, subject string, details map[string]any) {
	if l == nil {
		return
	}
	l.Record(ctx, domain.AuditEvent{
		Action:    action,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Subject:   subject,
		RequestID: requestID(ctx),
		Details:   details,
	})
}
