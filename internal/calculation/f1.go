package calculation

import (
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/constants"
	"github.com/iwvelando/blind-quote/pkg/mathutil"
)

// ComponentLine is one priced row of the F1 panel.
type ComponentLine struct {
	Key       string  `json:"key"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	Price     float64 `json:"price"`
}

// F1Result holds the supplier-side figures for one product.
type F1Result struct {
	Components         []ComponentLine `json:"components"`
	ComponentTotal     float64         `json:"componentTotal"`
	RetailTotal        float64         `json:"retailTotal"`
	DiscountPercentage float64         `json:"discountPercentage"`
	DiscountAmount     float64         `json:"discountAmount"`
	RBPrice            float64         `json:"rbPrice"`
	SubTotal           float64         `json:"subTotal"`
	GST                float64         `json:"gst"`
	FinalTotal         float64         `json:"finalTotal"`
}

// Component returns the line for key, or a zero line.
func (r F1Result) Component(key string) ComponentLine {
	for _, c := range r.Components {
		if c.Key == key {
			return c
		}
	}
	return ComponentLine{Key: key}
}

// F1 prices what the supplier charges for product: the accessories at F1
// unit prices plus the blinds at retail less the supplier discount.
func (s *Service) F1(state quote.AppState, product string) (F1Result, error) {
	p, err := productData(state, product)
	if err != nil {
		return F1Result{}, err
	}
	panel := state.UI.Panel(product).F1
	sum := p.Summary

	oneCh, sixteenCh := RemoteSplit(sum.RemoteQty(), panel.Remote1ch)
	quantities := []struct {
		key string
		qty float64
	}{
		{constants.ComponentWinder, float64(sum.HDCount)},
		{constants.ComponentDual, float64(sum.DualPairs)},
		{constants.ComponentMotor, float64(sum.MotorCount)},
		{constants.ComponentRemote1ch, oneCh},
		{constants.ComponentRemote16, sixteenCh},
		{constants.ComponentCharger, accessoryQty(sum.MotorCount, panel.Charger)},
		{constants.ComponentCord, accessoryQty(sum.MotorCount, panel.Cord)},
	}

	res := F1Result{Components: make([]ComponentLine, 0, len(quantities))}
	for _, q := range quantities {
		unit, err := s.prices.GetF1ComponentPrice(q.key)
		if err != nil {
			return F1Result{}, err
		}
		price, err := s.CalculateF1ComponentPrice(q.key, q.qty)
		if err != nil {
			return F1Result{}, err
		}
		res.Components = append(res.Components, ComponentLine{Key: q.key, Qty: q.qty, UnitPrice: unit, Price: price})
		res.ComponentTotal += price
	}
	res.ComponentTotal = mathutil.Round(res.ComponentTotal)

	res.RetailTotal = sum.TotalSum
	res.DiscountPercentage = mathutil.Finite(panel.DiscountPercentage)
	res.DiscountAmount, res.RBPrice = Discount(res.RetailTotal, res.DiscountPercentage)
	res.SubTotal = mathutil.Round(res.ComponentTotal + res.RBPrice)
	res.GST, res.FinalTotal = GST(res.SubTotal)
	return res, nil
}
