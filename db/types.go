package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is the free-form JSON column carried by cached assets (precache
// flags) and log entries (request context). It moves in and out of TEXT
// columns through sql.Scanner and driver.Valuer.
type Metadata map[string]any

// Scan implements sql.Scanner. A NULL column scans to an empty map; a column
// holding malformed JSON is a scan error, not silently empty metadata.
func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = make(Metadata)
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scanning metadata: unsupported type %T", v)
	}

	if err := json.Unmarshal(raw, m); err != nil {
		return fmt.Errorf("scanning metadata: %w", err)
	}
	return nil
}

// Value implements driver.Valuer. An empty map is written as the empty JSON
// object so new rows never hold NULL metadata.
func (m Metadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}
