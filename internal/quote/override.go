package quote

import (
	"encoding/json"
	"fmt"
)

// Override is either Auto (use the computed default) or Manual(value).
// The zero value is Auto.
type Override struct {
	manual bool
	value  float64
}

// Auto returns an override that defers to the computed default.
func Auto() Override {
	return Override{}
}

// Manual returns an override pinned to value.
func Manual(value float64) Override {
	return Override{manual: true, value: value}
}

// IsManual reports whether the user supplied a value.
func (o Override) IsManual() bool {
	return o.manual
}

// Value returns the manual value and whether one is set.
func (o Override) Value() (float64, bool) {
	return o.value, o.manual
}

// Resolve returns the manual value, or def when the override is Auto.
func (o Override) Resolve(def float64) float64 {
	if o.manual {
		return o.value
	}
	return def
}

func (o Override) String() string {
	if !o.manual {
		return "auto"
	}
	return fmt.Sprintf("manual(%g)", o.value)
}

// MarshalJSON encodes Auto as null and Manual as its number.
func (o Override) MarshalJSON() ([]byte, error) {
	if !o.manual {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON accepts null or a number.
func (o *Override) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("override: %w", err)
	}
	if v == nil {
		*o = Auto()
		return nil
	}
	*o = Manual(*v)
	return nil
}
