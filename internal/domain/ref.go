package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// EntityRef is a normalized reference to an external record (agent, bank,
// franchise). Upstream payloads carry references in several shapes: a bare
// string ID, or an object keyed by "_id" or "id". Normalization happens once,
// at the JSON boundary; the rest of the code only ever sees the ID.
type EntityRef struct {
	ID string `json:"id"`
}

func (r EntityRef) IsZero() bool {
	return r.ID == ""
}

func (r EntityRef) String() string {
	return r.ID
}

func (r EntityRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

func (r *EntityRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.ID = strings.TrimSpace(s)
		return nil
	}

	var obj struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("entity ref: unsupported shape: %w", err)
	}
	if obj.MongoID != "" {
		r.ID = obj.MongoID
	} else {
		r.ID = obj.ID
	}
	return nil
}

// Value implements driver.Valuer; refs persist as plain text IDs.
func (r EntityRef) Value() (driver.Value, error) {
	return r.ID, nil
}

func (r *EntityRef) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		r.ID = ""
	case string:
		r.ID = v
	case []byte:
		r.ID = string(v)
	default:
		return fmt.Errorf("entity ref: cannot scan %T", src)
	}
	return nil
}
