package identity

import (
	"context"

	"go.uber.org/zap"
)

// ActivityEntry describes one administrative mutation for the audit trail
type ActivityEntry struct {
	ActorID int64
	UserID  int64
	Action  string
	Detail  string
}

// ActivityLog records administrative mutations. Implementations must never
// fail the mutation they record.
type ActivityLog interface {
	Record(ctx context.Context, entry ActivityEntry)
}

type zapActivityLog struct {
	logger *zap.Logger
}

// NewZapActivityLog returns an activity log that writes structured log entries
func NewZapActivityLog(logger *zap.Logger) ActivityLog {
	return &zapActivityLog{logger: logger}
}

func (l *zapActivityLog) Record(_ context.Context, entry ActivityEntry) {
	l.logger.Info(entry.Action,
		zap.Int64("acting_admin_id", entry.ActorID),
		zap.Int64("user_id", entry.UserID),
		zap.String("detail", entry.Detail))
}
