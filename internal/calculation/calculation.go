// Package calculation derives priced summaries, supplier (F1) figures and
// customer (F2) figures from the quote state and the pricing tables. Nothing
// in this package mutates state.
package calculation

import (
	"math"

	"github.com/iwvelando/blind-quote/internal/config"
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/constants"
	"github.com/iwvelando/blind-quote/pkg/mathutil"
	"go.uber.org/zap"
)

// PriceTable is the read-only view of configuration the calculations need.
// *config.Manager satisfies it.
type PriceTable interface {
	GetComponentPrice(key string) (float64, error)
	GetF1ComponentPrice(key string) (float64, error)
	GetSurchargeRule(feeType string) (config.SurchargeRule, error)
	FeeTypes() []string
	CommissionRate() float64
}

// Service computes derived figures.
type Service struct {
	prices PriceTable
	logger *zap.Logger
}

// NewService creates a calculation service over prices.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewService(prices PriceTable, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{prices: prices, logger: logger}
}

// FeeTypes returns the surcharges F2 prices, in display order.
func (s *Service) FeeTypes() []string {
	return s.prices.FeeTypes()
}

// CalculateF1ComponentPrice returns the supplier price of qty units of a
// component. Non-positive quantities cost nothing and skip the lookup.
func (s *Service) CalculateF1ComponentPrice(componentKey string, qty float64) (float64, error) {
	qty = mathutil.Finite(qty)
	if qty <= 0 {
		return 0, nil
	}
	unit, err := s.prices.GetF1ComponentPrice(componentKey)
	if err != nil {
		return 0, err
	}
	return mathutil.Round(unit * qty), nil
}

// Discount applies a percentage discount to a retail total.
func Discount(retailTotal, percentage float64) (discountAmount, rbPrice float64) {
	discountAmount = mathutil.Round(mathutil.ApplyPercentage(mathutil.Finite(retailTotal), mathutil.Finite(percentage)))
	rbPrice = mathutil.Round(retailTotal - discountAmount)
	return discountAmount, rbPrice
}

// GST returns the tax on subTotal and the tax-inclusive total.
func GST(subTotal float64) (gst, finalTotal float64) {
	subTotal = mathutil.Finite(subTotal)
	gst = mathutil.Round(mathutil.ApplyGST(subTotal))
	finalTotal = mathutil.Round(subTotal + gst)
	return gst, finalTotal
}

// RemoteSplit divides the required remotes between single-channel and
// 16-channel units. Auto puts every remote on one channel; a manual 1ch count
// is clamped to [0, total] so the two always add up to total.
func RemoteSplit(total int, remote1ch quote.Override) (oneCh, sixteenCh float64) {
	t := float64(total)
	if t < 0 {
		t = 0
	}
	oneCh = remote1ch.Resolve(t)
	oneCh = math.Max(0, math.Min(math.Trunc(mathutil.Finite(oneCh)), t))
	return oneCh, t - oneCh
}

// accessoryQty resolves a charger or cord override against the per-motor default.
func accessoryQty(def int, o quote.Override) float64 {
	q := mathutil.Finite(o.Resolve(float64(def)))
	if q < 0 {
		return 0
	}
	return math.Trunc(q)
}

func productData(state quote.AppState, product string) (quote.ProductData, error) {
	p, ok := state.QuoteData.Products[product]
	if !ok {
		return quote.ProductData{}, &quote.LookupError{Kind: "product", Key: product}
	}
	return p, nil
}

func dualPairs(count int) int {
	return count / constants.DualPairSize
}
