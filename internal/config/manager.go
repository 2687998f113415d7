package config

import (
	"errors"

	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/constants"
)

// RequiredRetailComponents must be priced in the retail table.
var RequiredRetailComponents = []string{
	constants.ComponentWinder,
	constants.ComponentDual,
	constants.ComponentMotor,
	constants.ComponentRemote,
	constants.ComponentCharger,
	constants.ComponentCord,
	constants.ComponentWifi,
}

// RequiredF1Components must be priced in the F1 (supplier) table.
var RequiredF1Components = []string{
	constants.ComponentWinder,
	constants.ComponentDual,
	constants.ComponentMotor,
	constants.ComponentRemote1ch,
	constants.ComponentRemote16,
	constants.ComponentCharger,
	constants.ComponentCord,
	constants.ComponentWifi,
}

// RequiredFeeTypes must have a surcharge rule. The order is the display order
// of the F2 fee lines.
var RequiredFeeTypes = []string{
	constants.FeeDelivery,
	constants.FeeInstall,
	constants.FeeRemoval,
}

// Manager is a read-only accessor over the pricing tables. It copies the tables
// on construction so later edits to the Configuration are not observed.
type Manager struct {
	retail         map[string]float64
	f1             map[string]float64
	surcharges     map[string]SurchargeRule
	products       []string
	commissionRate float64
}

// NewManager validates that every required table entry is present and returns
// a Manager. Missing entries are reported together as LookupErrors.
func NewManager(conf Configuration) (*Manager, error) {
	m := &Manager{
		retail:         copyTable(conf.Pricing.Retail),
		f1:             copyTable(conf.Pricing.F1),
		surcharges:     make(map[string]SurchargeRule, len(conf.Surcharges)),
		products:       append([]string(nil), conf.Products...),
		commissionRate: conf.CommissionRate,
	}
	for k, v := range conf.Surcharges {
		m.surcharges[k] = v
	}

	var errs []error
	for _, key := range RequiredRetailComponents {
		if _, ok := m.retail[key]; !ok {
			errs = append(errs, &quote.LookupError{Kind: "retail component", Key: key})
		}
	}
	for _, key := range RequiredF1Components {
		if _, ok := m.f1[key]; !ok {
			errs = append(errs, &quote.LookupError{Kind: "f1 component", Key: key})
		}
	}
	for _, fee := range RequiredFeeTypes {
		if _, ok := m.surcharges[fee]; !ok {
			errs = append(errs, &quote.LookupError{Kind: "surcharge", Key: fee})
		}
	}
	if !contains(m.products, constants.ProductRollerBlind) {
		errs = append(errs, &quote.LookupError{Kind: "product", Key: constants.ProductRollerBlind})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// GetComponentPrice returns the retail unit price of a component.
func (m *Manager) GetComponentPrice(key string) (float64, error) {
	price, ok := m.retail[key]
	if !ok {
		return 0, &quote.LookupError{Kind: "retail component", Key: key}
	}
	return price, nil
}

// GetF1ComponentPrice returns the supplier unit price of a component.
func (m *Manager) GetF1ComponentPrice(key string) (float64, error) {
	price, ok := m.f1[key]
	if !ok {
		return 0, &quote.LookupError{Kind: "f1 component", Key: key}
	}
	return price, nil
}

// GetSurchargeRule returns the per-unit price and cost of a fee.
func (m *Manager) GetSurchargeRule(feeType string) (SurchargeRule, error) {
	rule, ok := m.surcharges[feeType]
	if !ok {
		return SurchargeRule{}, &quote.LookupError{Kind: "surcharge", Key: feeType}
	}
	return rule, nil
}

// FeeTypes returns the required fee types in display order.
func (m *Manager) FeeTypes() []string {
	return append([]string(nil), RequiredFeeTypes...)
}

// Products returns the configured product keys.
func (m *Manager) Products() []string {
	return append([]string(nil), m.products...)
}

// CommissionRate returns the sales commission taken from the offer.
func (m *Manager) CommissionRate() float64 {
	return m.commissionRate
}

func copyTable(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
