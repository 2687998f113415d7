package events

import (
	"encoding/json"
	"fmt"
)

var payloadTypes = map[Topic]func() interface{}{
	F1DiscountChanged:       func() interface{} { return &DiscountPayload{} },
	F1OverrideChanged:       func() interface{} { return &OverridePayload{} },
	F2ValueChanged:          func() interface{} { return &ValuePayload{} },
	ToggleFeeExclusion:      func() interface{} { return &FeePayload{} },
	ItemAdded:               func() interface{} { return &ItemPayload{} },
	ItemRemoved:             func() interface{} { return &ItemPayload{} },
	ItemFieldChanged:        func() interface{} { return &ItemPayload{} },
	ProductSwitched:         func() interface{} { return &ProductPayload{} },
	FocusChanged:            func() interface{} { return &FocusPayload{} },
	CustomerFieldChanged:    func() interface{} { return &CustomerPayload{} },
	UserRequestedSave:       func() interface{} { return &RequestPayload{} },
	UserRequestedLoad:       func() interface{} { return &RequestPayload{} },
	UserRequestedExportCSV:  func() interface{} { return &RequestPayload{} },
	UserRequestedExportXLSX: func() interface{} { return &RequestPayload{} },
	UserRequestedReset:      func() interface{} { return &RequestPayload{} },
}

// InputTopics returns every topic a front end may publish.
func InputTopics() []Topic {
	return []Topic{
		F1DiscountChanged, F1OverrideChanged, F2ValueChanged, ToggleFeeExclusion,
		ItemAdded, ItemRemoved, ItemFieldChanged, ProductSwitched, FocusChanged,
		CustomerFieldChanged, UserRequestedSave, UserRequestedLoad,
		UserRequestedExportCSV, UserRequestedExportXLSX, UserRequestedReset,
	}
}

// DecodePayload decodes raw JSON into the payload struct of topic and returns
// it by value. Empty input yields the zero payload. stateChanged and unknown
// topics are rejected since only input topics arrive from outside.
func DecodePayload(topic Topic, raw json.RawMessage) (interface{}, error) {
	newPayload, ok := payloadTypes[topic]
	if !ok {
		return nil, fmt.Errorf("unknown input topic %q", topic)
	}
	ptr := newPayload()
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, ptr); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", topic, err)
		}
	}
	switch p := ptr.(type) {
	case *DiscountPayload:
		return *p, nil
	case *OverridePayload:
		return *p, nil
	case *ValuePayload:
		return *p, nil
	case *FeePayload:
		return *p, nil
	case *ItemPayload:
		return *p, nil
	case *ProductPayload:
		return *p, nil
	case *FocusPayload:
		return *p, nil
	case *CustomerPayload:
		return *p, nil
	case *RequestPayload:
		return *p, nil
	}
	return nil, fmt.Errorf("unhandled payload type %T", ptr)
}
