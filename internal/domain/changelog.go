package domain

import (
	"encoding/json"
	"time"
)

// FieldChange records one tracked field's old and new values.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// ChangeLog is an audit entry recorded on update of a tracked entity.
type ChangeLog struct {
	ID         int64           `json:"id" db:"id"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   int64           `json:"entity_id" db:"entity_id"`
	EntityName string          `json:"entity_name" db:"entity_name"`
	Changes    json.RawMessage `json:"changes" db:"changes"`
	Path       string          `json:"path" db:"path"`
	UserID     int64           `json:"user_id" db:"user_id"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// FieldChanges decodes the serialized change list.
func (c *ChangeLog) FieldChanges() ([]FieldChange, error) {
	var changes []FieldChange
	if err := json.Unmarshal(c.Changes, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}
