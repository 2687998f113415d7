package events

// Topic names a channel on the Bus.
type Topic string

const (
	// StateChanged is published after every successful state mutation. The
	// payload is the post-mutation quote.AppState snapshot.
	StateChanged Topic = "stateChanged"

	F1DiscountChanged    Topic = "F1_DISCOUNT_CHANGED"
	F1OverrideChanged    Topic = "F1_OVERRIDE_CHANGED"
	F2ValueChanged       Topic = "F2_VALUE_CHANGED"
	ToggleFeeExclusion   Topic = "TOGGLE_FEE_EXCLUSION"
	ItemAdded            Topic = "ITEM_ADDED"
	ItemRemoved          Topic = "ITEM_REMOVED"
	ItemFieldChanged     Topic = "ITEM_FIELD_CHANGED"
	ProductSwitched      Topic = "PRODUCT_SWITCHED"
	FocusChanged         Topic = "FOCUS_CHANGED"
	CustomerFieldChanged Topic = "CUSTOMER_FIELD_CHANGED"

	UserRequestedSave       Topic = "USER_REQUESTED_SAVE"
	UserRequestedLoad       Topic = "USER_REQUESTED_LOAD"
	UserRequestedExportCSV  Topic = "USER_REQUESTED_EXPORT_CSV"
	UserRequestedExportXLSX Topic = "USER_REQUESTED_EXPORT_XLSX"
	UserRequestedReset      Topic = "USER_REQUESTED_RESET"
)

// DiscountPayload carries F1_DISCOUNT_CHANGED.
type DiscountPayload struct {
	Product    string  `json:"product"`
	Percentage float64 `json:"percentage"`
}

// OverridePayload carries F1_OVERRIDE_CHANGED. A nil Value resets to auto.
type OverridePayload struct {
	Product string   `json:"product"`
	ID      string   `json:"id"`
	Value   *float64 `json:"value"`
}

// ValuePayload carries F2_VALUE_CHANGED. Value is the raw field text.
type ValuePayload struct {
	Product string `json:"product"`
	ID      string `json:"id"`
	Value   string `json:"value"`
}

// FeePayload carries TOGGLE_FEE_EXCLUSION.
type FeePayload struct {
	Product string `json:"product"`
	FeeType string `json:"feeType"`
}

// ItemPayload carries ITEM_ADDED, ITEM_REMOVED and ITEM_FIELD_CHANGED.
type ItemPayload struct {
	Product string `json:"product"`
	Index   int    `json:"index"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
}

// ProductPayload carries PRODUCT_SWITCHED.
type ProductPayload struct {
	Product string `json:"product"`
}

// FocusPayload carries FOCUS_CHANGED.
type FocusPayload struct {
	Target string `json:"target"`
}

// CustomerPayload carries CUSTOMER_FIELD_CHANGED.
type CustomerPayload struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// RequestPayload carries the USER_REQUESTED_* topics. Name selects a saved
// quote or output file where the workflow needs one.
type RequestPayload struct {
	Name string `json:"name,omitempty"`
}
