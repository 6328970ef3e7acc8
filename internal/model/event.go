package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeRealtime  EventType = "realtime"
	EventTypeScheduled EventType = "scheduled"
)

// JSONMap is a free-form event payload stored as a jsonb column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", src)
	}
	return json.Unmarshal(b, m)
}

// String returns the value for key when it is a string, else "".
func (m JSONMap) String(key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

type Event struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Type        EventType  `json:"type" db:"type"`
	Data        JSONMap    `json:"data" db:"data"`
	Processed   bool       `json:"processed" db:"processed"`
	ProcessedAt *time.Time `json:"processed_at,omitempty" db:"processed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Source is the classification key carried in the event payload.
func (e *Event) Source() string {
	return e.Data.String("source")
}

// CronExpression is the schedule carried by scheduled events. Empty for
// realtime events and for scheduled events missing the field.
func (e *Event) CronExpression() string {
	return e.Data.String("cron")
}
