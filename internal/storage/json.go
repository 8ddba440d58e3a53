package storage

import (
	"bytes"
	"database/sql/driver"
	"fmt"
)

// JSON is raw json value stored in JSONB column. Nil value is stored as NULL.
type JSON []byte

var (
	_ driver.Valuer = JSON(nil)
)

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}

	return string(j), nil
}

func (j *JSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0:0], v...)
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("cannot scan %T into storage.JSON", src)
	}

	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}

	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return fmt.Errorf("storage.JSON: UnmarshalJSON on nil pointer")
	}

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*j = nil
		return nil
	}

	*j = append((*j)[:0:0], data...)
	return nil
}

// IsNull reports whether j is empty or json null.
func (j JSON) IsNull() bool {
	return len(j) == 0 || bytes.Equal(bytes.TrimSpace(j), []byte("null"))
}
