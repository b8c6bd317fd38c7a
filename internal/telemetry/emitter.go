package telemetry

import (
	"context"

	"campus-access-control/backend/internal/telemetry/domain"
)

// EventEmitter emits access events (e.g. to Kafka or OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.AccessEvent) error
}
