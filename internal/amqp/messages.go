package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"custombudget/internal/budget"
)

// LineItemEventMessage is published for every value the budget manager
// pushes to a custom line item.
type LineItemEventMessage struct {
	EventID       string    `json:"event_id"`
	CityID        string    `json:"city_id"`
	Type          string    `json:"type"`
	DepartmentID  uint32    `json:"department_id"`
	LineID        uint32    `json:"line_id"`
	Kind          string    `json:"kind"`
	BuildingCount int64     `json:"building_count"`
	Total         int64     `json:"total"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLineItemEventMessage converts a manager event and gives it a fresh id
func NewLineItemEventMessage(e budget.Event) *LineItemEventMessage {
	ts := e.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &LineItemEventMessage{
		EventID:       uuid.NewString(),
		CityID:        e.CityID,
		Type:          string(e.Type),
		DepartmentID:  e.DepartmentID,
		LineID:        e.LineID,
		Kind:          e.Kind.String(),
		BuildingCount: e.BuildingCount,
		Total:         e.Total,
		Timestamp:     ts,
	}
}

// ToJSON converts the message to JSON bytes
func (m *LineItemEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LineItemEventMessageFromJSON creates a message from JSON bytes
func LineItemEventMessageFromJSON(data []byte) (*LineItemEventMessage, error) {
	var msg LineItemEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
