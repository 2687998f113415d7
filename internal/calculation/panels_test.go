package calculation

import (
	"errors"
	"testing"

	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/constants"
	"github.com/iwvelando/blind-quote/pkg/testutil"
	"go.uber.org/zap"
)

func sampleState(t *testing.T, svc *Service) quote.AppState {
	t.Helper()
	items := sampleItems()
	sum, err := svc.ComputeSummary(items)
	if err != nil {
		t.Fatalf("ComputeSummary() error = %v", err)
	}
	return quote.AppState{
		QuoteData: quote.QuoteData{
			CurrentProduct: constants.ProductRollerBlind,
			Products: map[string]quote.ProductData{
				constants.ProductRollerBlind: {Items: items, Summary: sum},
			},
		},
		UI: quote.UIState{
			Panels: map[string]quote.PanelState{
				constants.ProductRollerBlind: {
					F1: quote.F1Panel{DiscountPercentage: 10},
					F2: quote.F2Panel{
						Values: map[string]float64{
							constants.F2WifiQty:     1,
							constants.F2DeliveryQty: 1,
							constants.F2InstallQty:  4,
							constants.F2RemovalQty:  2,
						},
						FeeExclusions: map[string]bool{constants.FeeRemoval: true},
					},
				},
			},
		},
	}
}

func TestF1(t *testing.T) {
	svc := NewService(testutil.Manager(t), zap.NewNop())
	state := sampleState(t, svc)

	res, err := svc.F1(state, constants.ProductRollerBlind)
	if err != nil {
		t.Fatalf("F1() error = %v", err)
	}

	expected := map[string]float64{
		constants.ComponentWinder:    50,
		constants.ComponentDual:      30,
		constants.ComponentMotor:     360,
		constants.ComponentRemote1ch: 80,
		constants.ComponentRemote16:  0,
		constants.ComponentCharger:   50,
		constants.ComponentCord:      24,
	}
	for key, want := range expected {
		nearlyEqual(t, key, res.Component(key).Price, want)
	}
	if len(res.Components) != len(expected) {
		t.Errorf("F1() returned %d components, expected %d", len(res.Components), len(expected))
	}

	nearlyEqual(t, "componentTotal", res.ComponentTotal, 594)
	nearlyEqual(t, "retailTotal", res.RetailTotal, 1000)
	nearlyEqual(t, "discountAmount", res.DiscountAmount, 100)
	nearlyEqual(t, "rbPrice", res.RBPrice, 900)
	nearlyEqual(t, "subTotal", res.SubTotal, 1494)
	nearlyEqual(t, "gst", res.GST, 149.4)
	nearlyEqual(t, "finalTotal", res.FinalTotal, 1643.4)
}

func TestF1Overrides(t *testing.T) {
	svc := NewService(testutil.Manager(t), zap.NewNop())
	state := sampleState(t, svc)

	panel := state.UI.Panels[constants.ProductRollerBlind]
	panel.F1.Remote1ch = quote.Manual(1)
	panel.F1.Charger = quote.Manual(0)
	panel.F1.Cord = quote.Manual(5)
	state.UI.Panels[constants.ProductRollerBlind] = panel

	res, err := svc.F1(state, constants.ProductRollerBlind)
	if err != nil {
		t.Fatalf("F1() error = %v", err)
	}

	one := res.Component(constants.ComponentRemote1ch)
	six := res.Component(constants.ComponentRemote16)
	if one.Qty+six.Qty != 2 {
		t.Errorf("remote split %v + %v does not equal 2 motors", one.Qty, six.Qty)
	}
	nearlyEqual(t, "remote1ch", one.Price, 40)
	nearlyEqual(t, "remote16ch", six.Price, 55)
	nearlyEqual(t, "charger", res.Component(constants.ComponentCharger).Price, 0)
	nearlyEqual(t, "cord", res.Component(constants.ComponentCord).Price, 60)
	nearlyEqual(t, "componentTotal", res.ComponentTotal, 50+30+360+40+55+0+60)
}

func TestF1UnknownProduct(t *testing.T) {
	svc := NewService(testutil.Manager(t), zap.NewNop())
	state := sampleState(t, svc)

	_, err := svc.F1(state, "curtain")
	var lookupErr *quote.LookupError
	if !errors.As(err, &lookupErr) {
		t.Errorf("F1(curtain) error = %v, expected LookupError", err)
	}
}

func TestF1WithoutPanelState(t *testing.T) {
	svc := NewService(testutil.Manager(t), zap.NewNop())
	state := sampleState(t, svc)
	state.UI = quote.UIState{}

	res, err := svc.F1(state, constants.ProductRollerBlind)
	if err != nil {
		t.Fatalf("F1() error = %v", err)
	}
	nearlyEqual(t, "discountAmount", res.DiscountAmount, 0)
	nearlyEqual(t, "rbPrice", res.RBPrice, 1000)
}

func TestF2(t *testing.T) {
	svc := NewService(testutil.Manager(t), zap.NewNop())
	state := sampleState(t, svc)

	res, err := svc.F2(state, constants.ProductRollerBlind)
	if err != nil {
		t.Fatalf("F2() error = %v", err)
	}

	nearlyEqual(t, "wifiPrice", res.WifiPrice, 150)
	nearlyEqual(t, "wifiCost", res.WifiCost, 110)
	nearlyEqual(t, "accessorySum", res.AccessorySum, 980)

	delivery := res.Fee(constants.FeeDelivery)
	install := res.Fee(constants.FeeInstall)
	removal := res.Fee(constants.FeeRemoval)
	nearlyEqual(t, "delivery price", delivery.Price, 80)
	nearlyEqual(t, "install price", install.Price, 100)
	nearlyEqual(t, "install cost", install.Cost, 60)
	if !removal.Excluded || removal.Price != 0 || removal.Cost != 0 {
		t.Errorf("excluded removal fee was priced: %+v", removal)
	}
	nearlyEqual(t, "feeSum", res.FeeSum, 180)
	nearlyEqual(t, "feeCost", res.FeeCost, 110)

	nearlyEqual(t, "sumPrice", res.SumPrice, 2160)
	nearlyEqual(t, "offer", res.Offer, 2160)
	if res.OfferManual {
		t.Error("offer reported as manual")
	}
	nearlyEqual(t, "gst", res.GST, 216)
	nearlyEqual(t, "grandTotal", res.GrandTotal, 2376)

	nearlyEqual(t, "rbCost", res.RBCost, 900)
	nearlyEqual(t, "componentCost", res.ComponentCost, 594)
	nearlyEqual(t, "totalCost", res.TotalCost, 1714)
	nearlyEqual(t, "rbProfit", res.RBProfit, 100)
	nearlyEqual(t, "singleprofit", res.SingleProfit, 25)
	nearlyEqual(t, "sumprofit", res.SumProfit, 446)
	nearlyEqual(t, "commission", res.Commission, 108)
	nearlyEqual(t, "netProfit", res.NetProfit, 338)
}

func TestF2ManualOffer(t *testing.T) {
	svc := NewService(testutil.Manager(t), zap.NewNop())
	state := sampleState(t, svc)

	panel := state.UI.Panels[constants.ProductRollerBlind]
	panel.F2.NewOffer = quote.Manual(2000)
	state.UI.Panels[constants.ProductRollerBlind] = panel

	res, err := svc.F2(state, constants.ProductRollerBlind)
	if err != nil {
		t.Fatalf("F2() error = %v", err)
	}
	if !res.OfferManual {
		t.Error("offer not reported as manual")
	}
	nearlyEqual(t, "sumPrice", res.SumPrice, 2160)
	nearlyEqual(t, "offer", res.Offer, 2000)
	nearlyEqual(t, "gst", res.GST, 200)
	nearlyEqual(t, "grandTotal", res.GrandTotal, 2200)
	nearlyEqual(t, "sumprofit", res.SumProfit, 286)
	nearlyEqual(t, "commission", res.Commission, 100)
	nearlyEqual(t, "netProfit", res.NetProfit, 186)
}

func TestF2EmptyProduct(t *testing.T) {
	svc := NewService(testutil.Manager(t), zap.NewNop())
	state := quote.AppState{QuoteData: quote.QuoteData{
		Products: map[string]quote.ProductData{"fabric": {}},
	}}

	res, err := svc.F2(state, "fabric")
	if err != nil {
		t.Fatalf("F2() error = %v", err)
	}
	if res.SingleProfit != 0 || res.GrandTotal != 0 || res.NetProfit != 0 {
		t.Errorf("empty product produced non-zero figures: %+v", res)
	}
}

func TestF2NegativeInputsIgnored(t *testing.T) {
	svc := NewService(testutil.Manager(t), zap.NewNop())
	state := sampleState(t, svc)

	panel := state.UI.Panels[constants.ProductRollerBlind]
	panel.F2.Values[constants.F2WifiQty] = -4
	panel.F2.Values[constants.F2DeliveryQty] = -1
	state.UI.Panels[constants.ProductRollerBlind] = panel

	res, err := svc.F2(state, constants.ProductRollerBlind)
	if err != nil {
		t.Fatalf("F2() error = %v", err)
	}
	if res.WifiQty != 0 || res.WifiPrice != 0 || res.Fee(constants.FeeDelivery).Price != 0 {
		t.Errorf("negative quantities were priced: %+v", res)
	}
}

func TestCalculate(t *testing.T) {
	svc := NewService(testutil.Manager(t), zap.NewNop())
	state := sampleState(t, svc)

	res, err := svc.Calculate(state, constants.ProductRollerBlind)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if res.Product != constants.ProductRollerBlind {
		t.Errorf("Product = %q", res.Product)
	}
	nearlyEqual(t, "summary.totalSum", res.Summary.TotalSum, 1000)
	nearlyEqual(t, "f1.finalTotal", res.F1.FinalTotal, 1643.4)
	nearlyEqual(t, "f2.grandTotal", res.F2.GrandTotal, 2376)

	if _, err := svc.Calculate(state, "curtain"); err == nil {
		t.Error("Calculate(curtain) expected error")
	}
}

func TestFeeQtyID(t *testing.T) {
	if id, ok := FeeQtyID(constants.FeeInstall); !ok || id != constants.F2InstallQty {
		t.Errorf("FeeQtyID(install) = %q, %v", id, ok)
	}
	if _, ok := FeeQtyID("storage"); ok {
		t.Error("FeeQtyID(storage) expected not found")
	}
}
