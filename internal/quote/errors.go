package quote

import "fmt"

// LookupError reports a configuration key, product or collaborator that is not
// registered. It is fatal at startup.
type LookupError struct {
	Kind string
	Key  string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q is not registered", e.Kind, e.Key)
}

// StateError reports a rejected mutation. State is left unchanged.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// FormatError reports malformed numeric input from a form field.
type FormatError struct {
	Field string
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("field %s: %q is not a number", e.Field, e.Input)
}
