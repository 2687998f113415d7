package validation

import (
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/blind-quote/internal/quote"
)

// ParseAmount parses numeric form input. Blank input is zero. Currency
// symbols, thousands separators and a trailing percent sign are accepted.
// Anything else is reported as a *quote.FormatError.
func ParseAmount(field, raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &quote.FormatError{Field: field, Input: raw}
	}
	return v, nil
}

// ParseOptionalAmount is ParseAmount where blank input means "not set".
func ParseOptionalAmount(field, raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := ParseAmount(field, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CoerceAmount parses raw and falls back to zero on malformed input. The
// zero is returned together with the *quote.FormatError so callers can log
// the coercion.
func CoerceAmount(field, raw string) (float64, error) {
	v, err := ParseAmount(field, raw)
	if err != nil {
		return 0, err
	}
	return v, nil
}
