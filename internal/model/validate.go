package model

import (
	"encoding/json"
	"fmt"
)

// ValidationError reports an invalid value for a model field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidatePrice checks a listing price before it is persisted.
//
// nil (absent or JSON null) and negative prices are rejected; any other
// value is returned unchanged.
func ValidatePrice(price *int) (int, error) {
	if price == nil {
		return 0, &ValidationError{Field: "price", Message: "is required"}
	}
	if *price < 0 {
		return 0, &ValidationError{Field: "price", Message: "must be a non-negative integer"}
	}
	return *price, nil
}

// ParsePrice decodes a price as a client sent it, then validates it.
//
// An empty or null raw value is a missing price. Strings, fractions and
// integers that overflow int fail with "price must be an integer".
func ParsePrice(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return ValidatePrice(nil)
	}

	var price int
	if err := json.Unmarshal(raw, &price); err != nil {
		return 0, &ValidationError{Field: "price", Message: "must be an integer"}
	}
	return ValidatePrice(&price)
}
