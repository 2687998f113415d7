package calculation

import (
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/constants"
	"github.com/iwvelando/blind-quote/pkg/mathutil"
	"go.uber.org/zap"
)

// FeeLine is one surcharge row of the F2 panel.
type FeeLine struct {
	FeeType  string  `json:"feeType"`
	Qty      float64 `json:"qty"`
	Price    float64 `json:"price"`
	Cost     float64 `json:"cost"`
	Excluded bool    `json:"excluded"`
}

// F2Result holds the customer price and the profit figures for one product.
type F2Result struct {
	ItemCount     int       `json:"itemCount"`
	TotalSum      float64   `json:"totalSum"`
	WifiQty       float64   `json:"wifiQty"`
	WifiPrice     float64   `json:"wifiPrice"`
	AccessorySum  float64   `json:"accessorySum"`
	Fees          []FeeLine `json:"fees"`
	FeeSum        float64   `json:"feeSum"`
	SumPrice      float64   `json:"sumPrice"`
	Offer         float64   `json:"offer"`
	OfferManual   bool      `json:"offerManual"`
	GST           float64   `json:"gst"`
	GrandTotal    float64   `json:"grandTotal"`
	RBCost        float64   `json:"rbCost"`
	ComponentCost float64   `json:"componentCost"`
	WifiCost      float64   `json:"wifiCost"`
	FeeCost       float64   `json:"feeCost"`
	TotalCost     float64   `json:"totalCost"`
	RBProfit      float64   `json:"rbProfit"`
	SingleProfit  float64   `json:"singleprofit"`
	SumProfit     float64   `json:"sumprofit"`
	Commission    float64   `json:"commission"`
	NetProfit     float64   `json:"netProfit"`
}

// Fee returns the line for feeType, or a zero line.
func (r F2Result) Fee(feeType string) FeeLine {
	for _, f := range r.Fees {
		if f.FeeType == feeType {
			return f
		}
	}
	return FeeLine{FeeType: feeType}
}

var feeQtyIDs = map[string]string{
	constants.FeeDelivery: constants.F2DeliveryQty,
	constants.FeeInstall:  constants.F2InstallQty,
	constants.FeeRemoval:  constants.F2RemovalQty,
}

// FeeQtyID returns the F2 value id holding the quantity of feeType.
func FeeQtyID(feeType string) (string, bool) {
	id, ok := feeQtyIDs[feeType]
	return id, ok
}

// F2 prices product for the customer and compares it with the F1 cost basis.
func (s *Service) F2(state quote.AppState, product string) (F2Result, error) {
	p, err := productData(state, product)
	if err != nil {
		return F2Result{}, err
	}
	f1, err := s.F1(state, product)
	if err != nil {
		return F2Result{}, err
	}
	panel := state.UI.Panel(product).F2
	sum := p.Summary

	res := F2Result{ItemCount: len(p.Items), TotalSum: sum.TotalSum}

	res.WifiQty = nonNegative(panel.Value(constants.F2WifiQty))
	wifiUnit, err := s.prices.GetComponentPrice(constants.ComponentWifi)
	if err != nil {
		return F2Result{}, err
	}
	res.WifiPrice = mathutil.Round(wifiUnit * res.WifiQty)
	res.WifiCost, err = s.CalculateF1ComponentPrice(constants.ComponentWifi, res.WifiQty)
	if err != nil {
		return F2Result{}, err
	}
	res.AccessorySum = mathutil.Round(sum.AccessorySum() + res.WifiPrice)

	for _, feeType := range s.prices.FeeTypes() {
		rule, err := s.prices.GetSurchargeRule(feeType)
		if err != nil {
			return F2Result{}, err
		}
		id, _ := FeeQtyID(feeType)
		line := FeeLine{FeeType: feeType, Qty: nonNegative(panel.Value(id)), Excluded: panel.Excluded(feeType)}
		if !line.Excluded {
			line.Price = mathutil.Round(rule.Price * line.Qty)
			line.Cost = mathutil.Round(rule.Cost * line.Qty)
		}
		res.Fees = append(res.Fees, line)
		res.FeeSum += line.Price
		res.FeeCost += line.Cost
	}
	res.FeeSum = mathutil.Round(res.FeeSum)
	res.FeeCost = mathutil.Round(res.FeeCost)

	res.SumPrice = mathutil.Round(res.TotalSum + res.AccessorySum + res.FeeSum)
	res.Offer = res.SumPrice
	if v, ok := panel.NewOffer.Value(); ok {
		res.Offer = mathutil.Round(mathutil.Finite(v))
		res.OfferManual = true
	}
	res.GST, res.GrandTotal = GST(res.Offer)

	res.RBCost = f1.RBPrice
	res.ComponentCost = f1.ComponentTotal
	res.TotalCost = mathutil.Round(res.RBCost + res.ComponentCost + res.WifiCost + res.FeeCost)

	res.RBProfit = mathutil.Round(res.TotalSum - res.RBCost)
	res.SingleProfit = mathutil.Round(mathutil.SafeDivide(res.RBProfit, float64(res.ItemCount)))
	res.SumProfit = mathutil.Round(res.Offer - res.TotalCost)
	res.Commission = mathutil.Round(res.Offer * s.prices.CommissionRate())
	res.NetProfit = mathutil.Round(res.SumProfit - res.Commission)

	s.logger.Debug("f2 computed",
		zap.String("op", "calculation.F2"),
		zap.String("product", product),
		zap.Float64("offer", res.Offer),
		zap.Float64("netProfit", res.NetProfit),
	)
	return res, nil
}

// Result bundles both panels of one product.
type Result struct {
	Product string        `json:"product"`
	Summary quote.Summary `json:"summary"`
	F1      F1Result      `json:"f1"`
	F2      F2Result      `json:"f2"`
}

// Calculate returns the summary, F1 and F2 figures of product.
func (s *Service) Calculate(state quote.AppState, product string) (Result, error) {
	p, err := productData(state, product)
	if err != nil {
		return Result{}, err
	}
	f1, err := s.F1(state, product)
	if err != nil {
		return Result{}, err
	}
	f2, err := s.F2(state, product)
	if err != nil {
		return Result{}, err
	}
	return Result{Product: product, Summary: p.Summary, F1: f1, F2: f2}, nil
}

func nonNegative(v float64) float64 {
	v = mathutil.Finite(v)
	if v < 0 {
		return 0
	}
	return v
}
