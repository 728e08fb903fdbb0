package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Money is an amount in the smallest currency unit
type Money int64

// Int64 returns the raw amount
func (m Money) Int64() int64 {
	return int64(m)
}

// scanJSON decodes a JSONB column into dst
func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
}

// valueJSON encodes v for a JSONB column
func valueJSON(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
