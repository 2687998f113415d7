package state

import (
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/constants"
)

var f2ValueIDs = map[string]bool{
	constants.F2WifiQty:     true,
	constants.F2DeliveryQty: true,
	constants.F2InstallQty:  true,
	constants.F2RemovalQty:  true,
}

// SetF1Discount sets the supplier discount percentage of product (0..100).
func (s *Service) SetF1Discount(product string, percentage float64) error {
	const op = "state.SetF1Discount"
	return s.mutate(op, product, func(next *quote.AppState) error {
		if _, err := requireProduct(op, next, product); err != nil {
			return err
		}
		if !finite(percentage) || percentage < 0 || percentage > constants.PercentageMultiplier {
			return reject(op, "discount %v%% outside [0, 100]", percentage)
		}
		p := s.panel(next, product)
		p.F1.DiscountPercentage = percentage
		s.setPanel(next, product, p)
		return nil
	})
}

// SetF1Override sets or clears (Auto) an F1 quantity override. A manual
// single-channel remote count may not exceed the remotes the items require.
func (s *Service) SetF1Override(product, id string, o quote.Override) error {
	const op = "state.SetF1Override"
	return s.mutate(op, product, func(next *quote.AppState) error {
		data, err := requireProduct(op, next, product)
		if err != nil {
			return err
		}
		if v, ok := o.Value(); ok && (!finite(v) || v < 0) {
			return reject(op, "override %s must be a non-negative number, got %v", id, v)
		}
		p := s.panel(next, product)
		switch id {
		case constants.OverrideRemote1ch:
			if v, ok := o.Value(); ok && v > float64(data.Summary.RemoteQty()) {
				return reject(op, "remote1ch %v exceeds the %d remotes required", v, data.Summary.RemoteQty())
			}
			p.F1.Remote1ch = o
		case constants.OverrideCharger:
			p.F1.Charger = o
		case constants.OverrideCord:
			p.F1.Cord = o
		default:
			return reject(op, "unknown override %q", id)
		}
		s.setPanel(next, product, p)
		return nil
	})
}

// SetF2Value sets an F2 quantity input of product.
func (s *Service) SetF2Value(product, id string, value float64) error {
	const op = "state.SetF2Value"
	return s.mutate(op, product, func(next *quote.AppState) error {
		if _, err := requireProduct(op, next, product); err != nil {
			return err
		}
		if !f2ValueIDs[id] {
			return reject(op, "unknown value %q", id)
		}
		if !finite(value) || value < 0 {
			return reject(op, "value %s must be a non-negative number, got %v", id, value)
		}
		p := s.panel(next, product)
		p.F2.Values[id] = value
		s.setPanel(next, product, p)
		return nil
	})
}

// SetNewOffer sets or clears (Auto) the manual pre-GST offer of product.
func (s *Service) SetNewOffer(product string, o quote.Override) error {
	const op = "state.SetNewOffer"
	return s.mutate(op, product, func(next *quote.AppState) error {
		if _, err := requireProduct(op, next, product); err != nil {
			return err
		}
		if v, ok := o.Value(); ok && (!finite(v) || v < 0) {
			return reject(op, "offer must be a non-negative number, got %v", v)
		}
		p := s.panel(next, product)
		p.F2.NewOffer = o
		s.setPanel(next, product, p)
		return nil
	})
}

// ToggleFeeExclusion flips whether feeType is left out of product's quote.
func (s *Service) ToggleFeeExclusion(product, feeType string) error {
	const op = "state.ToggleFeeExclusion"
	return s.mutate(op, product, func(next *quote.AppState) error {
		if _, err := requireProduct(op, next, product); err != nil {
			return err
		}
		known := false
		for _, f := range s.calc.FeeTypes() {
			if f == feeType {
				known = true
				break
			}
		}
		if !known {
			return reject(op, "unknown fee type %q", feeType)
		}
		p := s.panel(next, product)
		if p.F2.FeeExclusions[feeType] {
			delete(p.F2.FeeExclusions, feeType)
		} else {
			p.F2.FeeExclusions[feeType] = true
		}
		s.setPanel(next, product, p)
		return nil
	})
}

// SetFocus records the field the user is typing in so a render does not
// overwrite it. An empty target clears focus.
func (s *Service) SetFocus(target string) error {
	return s.mutate("state.SetFocus", "", func(next *quote.AppState) error {
		next.UI.Focus = target
		return nil
	})
}
