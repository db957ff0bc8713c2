package audit

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventFaceDetected     EventType = "FACE_DETECTED"
	EventTemplateEnrolled EventType = "TEMPLATE_ENROLLED"
	EventIdentityVerified EventType = "IDENTITY_VERIFIED"
	EventCredentialIssued EventType = "CREDENTIAL_ISSUED"
)

// Event represents one auditable step of enrollment or verification
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType EventType         `json:"event_type"`
	Identity  string            `json:"identity,omitempty"`
	Source    string            `json:"source"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Logger records audit events. Implementations must be safe for concurrent use
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a new audit logger using slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log writes event as one structured record. Failed steps are logged at
// warn level so they surface without a dedicated audit sink.
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	attrs := []slog.Attr{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.Time("event_time", event.Timestamp),
		slog.String("source", event.Source),
		slog.Bool("success", event.Success),
	}
	if event.Identity != "" {
		attrs = append(attrs, slog.String("identity", event.Identity))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}
	if len(event.Metadata) > 0 {
		keys := make([]string, 0, len(event.Metadata))
		for k := range event.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		meta := make([]any, 0, len(keys))
		for _, k := range keys {
			meta = append(meta, slog.String(k, event.Metadata[k]))
		}
		attrs = append(attrs, slog.Group("metadata", meta...))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	l.logger.LogAttrs(ctx, level, "audit_event", attrs...)

	return nil
}

// NoOpLogger discards events
type NoOpLogger struct{}

func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}
