package calculation

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/blind-quote/internal/config"
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/mathutil"
	"github.com/iwvelando/blind-quote/pkg/testutil"
	"go.uber.org/zap"
)

type stubPrices struct {
	f1 map[string]float64
}

func (s stubPrices) GetComponentPrice(key string) (float64, error) {
	return 0, &quote.LookupError{Kind: "retail component", Key: key}
}

func (s stubPrices) GetF1ComponentPrice(key string) (float64, error) {
	p, ok := s.f1[key]
	if !ok {
		return 0, &quote.LookupError{Kind: "f1 component", Key: key}
	}
	return p, nil
}

func (s stubPrices) GetSurchargeRule(feeType string) (config.SurchargeRule, error) {
	return config.SurchargeRule{}, &quote.LookupError{Kind: "surcharge", Key: feeType}
}

func (s stubPrices) FeeTypes() []string      { return nil }
func (s stubPrices) CommissionRate() float64 { return 0 }

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if !mathutil.WithinTolerance(got, want, 1e-6) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestCalculateF1ComponentPrice(t *testing.T) {
	svc := NewService(stubPrices{f1: map[string]float64{"winder": 25}}, zap.NewNop())

	tests := []struct {
		name      string
		key       string
		qty       float64
		expected  float64
		wantError bool
	}{
		{"Four winders", "winder", 4, 100, false},
		{"Zero quantity", "winder", 0, 0, false},
		{"Negative quantity", "winder", -3, 0, false},
		{"NaN quantity", "winder", math.NaN(), 0, false},
		{"Zero quantity of unknown key", "tassel", 0, 0, false},
		{"Unknown key", "tassel", 2, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CalculateF1ComponentPrice(tt.key, tt.qty)
			if tt.wantError {
				var lookupErr *quote.LookupError
				if !errors.As(err, &lookupErr) {
					t.Errorf("CalculateF1ComponentPrice() error = %v, expected LookupError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CalculateF1ComponentPrice() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("CalculateF1ComponentPrice(%q, %v) = %v, expected %v", tt.key, tt.qty, got, tt.expected)
			}
		})
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name           string
		retail         float64
		pct            float64
		expectedAmount float64
		expectedPrice  float64
	}{
		{"Ten percent of 1000", 1000, 10, 100, 900},
		{"No discount", 1000, 0, 0, 1000},
		{"Full discount", 480, 100, 480, 0},
		{"Fractional", 333.33, 12, 40, 293.33},
		{"NaN percentage", 500, math.NaN(), 0, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, price := Discount(tt.retail, tt.pct)
			nearlyEqual(t, "discountAmount", amount, tt.expectedAmount)
			nearlyEqual(t, "rbPrice", price, tt.expectedPrice)
		})
	}
}

func TestGST(t *testing.T) {
	tests := []struct {
		subTotal      float64
		expectedGST   float64
		expectedFinal float64
	}{
		{900, 90, 990},
		{0, 0, 0},
		{1494, 149.4, 1643.4},
		{0.05, 0.01, 0.06},
	}

	for _, tt := range tests {
		gst, final := GST(tt.subTotal)
		nearlyEqual(t, "gst", gst, tt.expectedGST)
		nearlyEqual(t, "finalTotal", final, tt.expectedFinal)
	}
}

func TestRemoteSplit(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		override    quote.Override
		expectedOne float64
		expectedSix float64
	}{
		{"Auto puts all on one channel", 3, quote.Auto(), 3, 0},
		{"Manual split", 3, quote.Manual(1), 1, 2},
		{"Manual zero", 3, quote.Manual(0), 0, 3},
		{"Manual above total is clamped", 2, quote.Manual(5), 2, 0},
		{"Manual negative is clamped", 2, quote.Manual(-1), 0, 2},
		{"Fraction truncated", 4, quote.Manual(2.7), 2, 2},
		{"No remotes", 0, quote.Manual(3), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			one, six := RemoteSplit(tt.total, tt.override)
			if one != tt.expectedOne || six != tt.expectedSix {
				t.Errorf("RemoteSplit(%d, %v) = %v, %v; expected %v, %v", tt.total, tt.override, one, six, tt.expectedOne, tt.expectedSix)
			}
			if one+six != float64(tt.total) {
				t.Errorf("RemoteSplit(%d, %v) does not add up: %v + %v", tt.total, tt.override, one, six)
			}
		})
	}
}

// sampleItems: two HD winders, one dual pair, two motors, retail total 1000.
func sampleItems() []quote.LineItem {
	return []quote.LineItem{
		testutil.HD(testutil.Blind("a", 100)),
		testutil.Dual(testutil.Blind("b", 200)),
		testutil.Motorised(testutil.Dual(testutil.Blind("c", 300)), "Somfy"),
		testutil.Motorised(testutil.HD(testutil.Blind("d", 400)), "Somfy"),
	}
}

func TestComputeSummary(t *testing.T) {
	svc := NewService(testutil.Manager(t), zap.NewNop())

	sum, err := svc.ComputeSummary(sampleItems())
	if err != nil {
		t.Fatalf("ComputeSummary() error = %v", err)
	}

	if sum.HDCount != 2 || sum.DualCount != 2 || sum.DualPairs != 1 || sum.MotorCount != 2 {
		t.Errorf("counts = %+v", sum)
	}
	nearlyEqual(t, "winderCostSum", sum.WinderCostSum, 60)
	nearlyEqual(t, "dualCostSum", sum.DualCostSum, 40)
	nearlyEqual(t, "motorCostSum", sum.MotorCostSum, 500)
	nearlyEqual(t, "remoteCostSum", sum.RemoteCostSum, 120)
	nearlyEqual(t, "chargerCostSum", sum.ChargerCostSum, 70)
	nearlyEqual(t, "cordCostSum", sum.CordCostSum, 40)
	nearlyEqual(t, "totalSum", sum.TotalSum, 1000)
}

func TestComputeSummaryEdgeCases(t *testing.T) {
	svc := NewService(testutil.Manager(t), nil)

	empty, err := svc.ComputeSummary(nil)
	if err != nil {
		t.Fatalf("ComputeSummary(nil) error = %v", err)
	}
	if empty != (quote.Summary{}) {
		t.Errorf("ComputeSummary(nil) = %+v, expected zero summary", empty)
	}

	blank := ""
	items := []quote.LineItem{
		{ID: "no-price"},
		{ID: "empty-motor", Motor: &blank},
		testutil.Dual(testutil.Blind("lonely-dual", 50)),
		{ID: "lowercase", Winder: "hd"},
	}
	sum, err := svc.ComputeSummary(items)
	if err != nil {
		t.Fatalf("ComputeSummary() error = %v", err)
	}
	if sum.MotorCount != 0 {
		t.Errorf("empty motor name counted as a motor")
	}
	if sum.DualCount != 1 || sum.DualPairs != 0 || sum.DualCostSum != 0 {
		t.Errorf("an unpaired dual was priced: %+v", sum)
	}
	if sum.HDCount != 0 {
		t.Errorf("winder markers are case sensitive, got HDCount = %d", sum.HDCount)
	}
	nearlyEqual(t, "totalSum", sum.TotalSum, 50)
}

func TestComputeSummaryIsPure(t *testing.T) {
	svc := NewService(testutil.Manager(t), zap.NewNop())
	items := sampleItems()

	first, err := svc.ComputeSummary(items)
	if err != nil {
		t.Fatalf("ComputeSummary() error = %v", err)
	}
	if _, err := svc.ComputeSummary(items[:1]); err != nil {
		t.Fatalf("ComputeSummary() error = %v", err)
	}
	second, err := svc.ComputeSummary(items)
	if err != nil {
		t.Fatalf("ComputeSummary() error = %v", err)
	}
	if first != second {
		t.Errorf("ComputeSummary() depends on prior calls: %+v vs %+v", first, second)
	}
}

func TestComputeSummaryMissingPrice(t *testing.T) {
	svc := NewService(stubPrices{}, zap.NewNop())
	if _, err := svc.ComputeSummary(sampleItems()); err == nil {
		t.Error("ComputeSummary() expected error when the retail table is incomplete")
	}
}
