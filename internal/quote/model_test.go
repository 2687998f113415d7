package quote

import (
	"errors"
	"reflect"
	"testing"
)

func strPtr(s string) *string    { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestAppStateCloneIsDeep(t *testing.T) {
	original := AppState{
		QuoteData: QuoteData{
			CurrentProduct: "rollerBlind",
			Products: map[string]ProductData{
				"rollerBlind": {
					Items: []LineItem{{ID: "a", Motor: strPtr("Alpha"), Price: floatPtr(100)}},
				},
			},
		},
		UI: UIState{
			Panels: map[string]PanelState{
				"rollerBlind": {F2: F2Panel{
					Values:        map[string]float64{"wifiQty": 1},
					FeeExclusions: map[string]bool{"delivery": true},
				}},
			},
		},
	}

	clone := original.Clone()
	if !reflect.DeepEqual(original, clone) {
		t.Fatal("Clone() is not equal to the original")
	}

	p := clone.QuoteData.Products["rollerBlind"]
	*p.Items[0].Motor = "Beta"
	*p.Items[0].Price = 5
	p.Items[0].Location = "Kitchen"
	clone.UI.Panels["rollerBlind"].F2.Values["wifiQty"] = 9
	clone.UI.Panels["rollerBlind"].F2.FeeExclusions["delivery"] = false

	item := original.QuoteData.Products["rollerBlind"].Items[0]
	if *item.Motor != "Alpha" || *item.Price != 100 || item.Location != "" {
		t.Errorf("mutating the clone changed the original item: %+v", item)
	}
	panel := original.UI.Panels["rollerBlind"]
	if panel.F2.Values["wifiQty"] != 1 || !panel.F2.FeeExclusions["delivery"] {
		t.Errorf("mutating the clone changed the original panel: %+v", panel)
	}
}

func TestSummaryHelpers(t *testing.T) {
	s := Summary{
		MotorCount:     2,
		WinderCostSum:  1,
		DualCostSum:    2,
		MotorCostSum:   3,
		RemoteCostSum:  4,
		ChargerCostSum: 5,
		CordCostSum:    6,
	}
	if got := s.AccessorySum(); got != 21 {
		t.Errorf("AccessorySum() = %v, expected 21", got)
	}
	if got := s.RemoteQty(); got != 2 {
		t.Errorf("RemoteQty() = %v, expected 2", got)
	}
}

func TestFactory(t *testing.T) {
	n := 0
	f := NewFactory([]string{"rollerBlind", "fabric", "rollerBlind"}).WithIDGenerator(func() string {
		n++
		return "id-" + string(rune('0'+n))
	})

	if got := f.Products(); !reflect.DeepEqual(got, []string{"rollerBlind", "fabric"}) {
		t.Errorf("Products() = %v", got)
	}

	item, err := f.CreateEmptyItem("fabric")
	if err != nil {
		t.Fatalf("CreateEmptyItem() error = %v", err)
	}
	if item.ID != "id-1" || item.Motor != nil || item.Price != nil {
		t.Errorf("CreateEmptyItem() = %+v", item)
	}

	_, err = f.CreateEmptyItem("curtain")
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("CreateEmptyItem(curtain) error = %v, expected LookupError", err)
	}
	if lookupErr.Key != "curtain" {
		t.Errorf("LookupError.Key = %q", lookupErr.Key)
	}

	if _, err := f.CreateEmptySummary("curtain"); err == nil {
		t.Error("CreateEmptySummary(curtain) expected error")
	}

	state, err := f.CreateEmptyState("fabric")
	if err != nil {
		t.Fatalf("CreateEmptyState() error = %v", err)
	}
	if state.QuoteData.CurrentProduct != "fabric" {
		t.Errorf("CurrentProduct = %q", state.QuoteData.CurrentProduct)
	}
	if len(state.QuoteData.Products) != 2 || len(state.UI.Panels) != 2 {
		t.Errorf("CreateEmptyState() products=%d panels=%d", len(state.QuoteData.Products), len(state.UI.Panels))
	}
	if state.UI.Panels["rollerBlind"].F2.Values == nil {
		t.Error("CreateEmptyState() panel values map is nil")
	}

	if _, err := f.CreateEmptyState("curtain"); err == nil {
		t.Error("CreateEmptyState(curtain) expected error")
	}
}
