package events

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	BookingRequested      = "BOOKING_REQUESTED"
	SessionApproved       = "SESSION_APPROVED"
	SessionReady          = "SESSION_READY"
	PostApproved          = "POST_APPROVED"
	AnnouncementPublished = "ANNOUNCEMENT_PUBLISHED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_APPROVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType string, data map[string]interface{}, at time.Time) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: at.UTC()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Encode serializes any Event into the envelope shared by the in-process bus and NATS.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(BaseEvent{
		Type:       e.EventType(),
		Data:       e.Payload(),
		OccurredAt: e.Timestamp(),
	})
}

func Decode(data []byte) (BaseEvent, error) {
	var e BaseEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return BaseEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return BaseEvent{}, fmt.Errorf("decode event: missing type")
	}
	if e.Data == nil {
		e.Data = map[string]interface{}{}
	}
	return e, nil
}

// Uint reads a numeric payload field. JSON round trips turn integers into float64.
func (e BaseEvent) Uint(key string) (uint, bool) {
	switch v := e.Data[key].(type) {
	case uint:
		return v, true
	case int:
		if v >= 0 {
			return uint(v), true
		}
	case int64:
		if v >= 0 {
			return uint(v), true
		}
	case float64:
		if v >= 0 && v == float64(uint(v)) {
			return uint(v), true
		}
	case json.Number:
		if n, err := v.Int64(); err == nil && n >= 0 {
			return uint(n), true
		}
	}
	return 0, false
}

func (e BaseEvent) String(key string) string {
	s, _ := e.Data[key].(string)
	return s
}
