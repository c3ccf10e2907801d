package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"leadsync/internal/domain"
)

// ResponseMap stores the question-id to choice mapping as a JSONB column.
type ResponseMap map[string]string

// Value implements driver.Valuer.
func (m ResponseMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response map: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *ResponseMap) Scan(src interface{}) error {
	if src == nil {
		*m = ResponseMap{}
		return nil
	}
	b, err := toBytes(src)
	if err != nil {
		return fmt.Errorf("failed to scan response map: %w", err)
	}
	return json.Unmarshal(b, m)
}

// StringSlice stores a list of strings as a JSONB column.
type StringSlice []string

// Value implements driver.Valuer.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string slice: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *StringSlice) Scan(src interface{}) error {
	if src == nil {
		*s = StringSlice{}
		return nil
	}
	b, err := toBytes(src)
	if err != nil {
		return fmt.Errorf("failed to scan string slice: %w", err)
	}
	return json.Unmarshal(b, s)
}

// NullScoreBreakdown stores the per-category score breakdown as a nullable
// JSONB column. The breakdown is null until the assessment is completed.
type NullScoreBreakdown struct {
	Breakdown domain.ScoreBreakdown
	Valid     bool
}

// Value implements driver.Valuer.
func (n NullScoreBreakdown) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	b, err := json.Marshal(n.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal score breakdown: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (n *NullScoreBreakdown) Scan(src interface{}) error {
	if src == nil {
		n.Valid = false
		return nil
	}
	b, err := toBytes(src)
	if err != nil {
		return fmt.Errorf("failed to scan score breakdown: %w", err)
	}
	if err := json.Unmarshal(b, &n.Breakdown); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func toBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported source type %T", src)
	}
}
