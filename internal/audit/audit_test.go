package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logOne(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	require.NoError(t, NewSlogLogger(logger).Log(context.Background(), event))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSlogLogger_Log(t *testing.T) {
	tests := []struct {
		name      string
		event     Event
		wantLevel string
		wantMeta  map[string]any
	}{
		{
			name: "face detected",
			event: Event{
				EventType: EventFaceDetected,
				Source:    "rekognition",
				Success:   true,
				Metadata:  map[string]string{"faces_count": "1"},
			},
			wantLevel: "INFO",
			wantMeta:  map[string]any{"faces_count": "1"},
		},
		{
			name: "template enrolled",
			event: Event{
				EventType: EventTemplateEnrolled,
				Identity:  "alice",
				Source:    "gatepass",
				Success:   true,
			},
			wantLevel: "INFO",
		},
		{
			name: "failed verification",
			event: Event{
				EventType: EventIdentityVerified,
				Identity:  "bob",
				Source:    "gatepass",
				Error:     "store unreachable",
			},
			wantLevel: "WARN",
		},
		{
			name: "credential issued",
			event: Event{
				EventType: EventCredentialIssued,
				Identity:  "alice",
				Source:    "gatepass",
				Success:   true,
				Metadata:  map[string]string{"token_fingerprint": "3f2a9c01"},
			},
			wantLevel: "INFO",
			wantMeta:  map[string]any{"token_fingerprint": "3f2a9c01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := logOne(t, tt.event)

			assert.Equal(t, "audit_event", entry["msg"])
			assert.Equal(t, "audit", entry["component"])
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, string(tt.event.EventType), entry["event_type"])
			assert.Equal(t, tt.event.Source, entry["source"])
			assert.Equal(t, tt.event.Success, entry["success"])

			if tt.event.Identity != "" {
				assert.Equal(t, tt.event.Identity, entry["identity"])
			} else {
				assert.NotContains(t, entry, "identity")
			}
			if tt.event.Error != "" {
				assert.Equal(t, tt.event.Error, entry["error"])
			}
			if tt.wantMeta != nil {
				assert.Equal(t, tt.wantMeta, entry["metadata"])
			} else {
				assert.NotContains(t, entry, "metadata")
			}
		})
	}
}

func TestSlogLogger_Log_GeneratesIDAndTimestamp(t *testing.T) {
	entry := logOne(t, Event{EventType: EventFaceDetected, Source: "mock", Success: true})

	eventID, ok := entry["event_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(eventID)
	assert.NoError(t, err)

	eventTime, ok := entry["event_time"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339Nano, eventTime)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, time.Minute)
}

func TestSlogLogger_Log_UsesProvidedID(t *testing.T) {
	expectedID := uuid.New()
	entry := logOne(t, Event{
		ID:        expectedID,
		Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		EventType: EventTemplateEnrolled,
		Source:    "gatepass",
		Success:   true,
	})

	assert.Equal(t, expectedID.String(), entry["event_id"])
	assert.Equal(t, "2024-01-15T10:30:00Z", entry["event_time"])
}

func TestNoOpLogger_Log(t *testing.T) {
	err := (&NoOpLogger{}).Log(context.Background(), Event{EventType: EventCredentialIssued})
	assert.NoError(t, err)
}
