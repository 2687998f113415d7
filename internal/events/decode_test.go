package events

import (
	"encoding/json"
	"testing"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name        string
		topic       Topic
		raw         string
		expected    interface{}
		expectError bool
	}{
		{
			name:     "discount",
			topic:    F1DiscountChanged,
			raw:      `{"product":"rollerBlind","percentage":12.5}`,
			expected: DiscountPayload{Product: "rollerBlind", Percentage: 12.5},
		},
		{
			name:     "item field",
			topic:    ItemFieldChanged,
			raw:      `{"product":"rollerBlind","index":2,"field":"width","value":"1200"}`,
			expected: ItemPayload{Product: "rollerBlind", Index: 2, Field: "width", Value: "1200"},
		},
		{
			name:     "empty payload",
			topic:    UserRequestedReset,
			raw:      ``,
			expected: RequestPayload{},
		},
		{
			name:     "null payload",
			topic:    FocusChanged,
			raw:      `null`,
			expected: FocusPayload{},
		},
		{name: "state changed is internal", topic: StateChanged, raw: `{}`, expectError: true},
		{name: "unknown topic", topic: "ITEM_EXPLODED", raw: `{}`, expectError: true},
		{name: "malformed", topic: F1DiscountChanged, raw: `{"percentage":"ten"}`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePayload(tt.topic, json.RawMessage(tt.raw))
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodePayload() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("DecodePayload() = %#v, expected %#v", got, tt.expected)
			}
		})
	}
}

func TestDecodePayloadOverrideValue(t *testing.T) {
	got, err := DecodePayload(F1OverrideChanged, json.RawMessage(`{"id":"charger","value":3}`))
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	p := got.(OverridePayload)
	if p.Value == nil || *p.Value != 3 {
		t.Errorf("Value = %v", p.Value)
	}

	got, err = DecodePayload(F1OverrideChanged, json.RawMessage(`{"id":"charger","value":null}`))
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if got.(OverridePayload).Value != nil {
		t.Error("null value not decoded as auto")
	}
}

func TestInputTopicsDecode(t *testing.T) {
	for _, topic := range InputTopics() {
		if _, err := DecodePayload(topic, nil); err != nil {
			t.Errorf("DecodePayload(%s) error = %v", topic, err)
		}
	}
}
