package state

import (
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/constants"
	"github.com/iwvelando/blind-quote/pkg/datetime"
)

// Customer fields accepted by SetCustomerField.
const (
	CustomerName      = "name"
	CustomerAddress   = "address"
	CustomerPhone     = "phone"
	CustomerEmail     = "email"
	CustomerQuoteDate = "quoteDate"
	CustomerDueDate   = "dueDate"
)

// SetCurrentProduct switches the active product tab.
func (s *Service) SetCurrentProduct(product string) error {
	const op = "state.SetCurrentProduct"
	return s.mutate(op, "", func(next *quote.AppState) error {
		if _, err := requireProduct(op, next, product); err != nil {
			return err
		}
		next.QuoteData.CurrentProduct = product
		return nil
	})
}

// SetCustomerField sets one quote header field. Dates are normalised to
// datetime.DateLayout; a quote date fills an empty due date, and the due date
// may not precede the quote date.
func (s *Service) SetCustomerField(field, value string) error {
	const op = "state.SetCustomerField"
	return s.mutate(op, "", func(next *quote.AppState) error {
		c := &next.QuoteData.Customer
		if field == CustomerQuoteDate || field == CustomerDueDate {
			date, err := datetime.NormalizeDate(value)
			if err != nil {
				return reject(op, "%s: %v", field, err)
			}
			value = date
		}
		switch field {
		case CustomerName:
			c.Name = value
		case CustomerAddress:
			c.Address = value
		case CustomerPhone:
			c.Phone = value
		case CustomerEmail:
			c.Email = value
		case CustomerQuoteDate:
			c.QuoteDate = value
			if c.DueDate == "" && value != "" {
				c.DueDate, _ = datetime.OffsetDays(value, constants.DefaultDueDays)
			}
		case CustomerDueDate:
			c.DueDate = value
		default:
			return reject(op, "unknown customer field %q", field)
		}
		if c.QuoteDate != "" && c.DueDate != "" {
			if early, _ := datetime.DateBeforeDate(c.DueDate, c.QuoteDate); early {
				return reject(op, "due date %s precedes quote date %s", c.DueDate, c.QuoteDate)
			}
		}
		return nil
	})
}

// ReplaceQuoteData installs loaded quote data. Summaries are recomputed from
// the loaded items and UI state returns to defaults.
func (s *Service) ReplaceQuoteData(data quote.QuoteData) error {
	const op = "state.ReplaceQuoteData"
	return s.mutate(op, "", func(next *quote.AppState) error {
		normalized, err := s.normalizeQuoteData(data)
		if err != nil {
			return err
		}
		next.QuoteData = normalized
		next.UI = s.factory.CreateEmptyUI()
		return nil
	})
}

// Reset discards the quote and starts a fresh session.
func (s *Service) Reset() error {
	return s.mutate("state.Reset", "", func(next *quote.AppState) error {
		fresh, err := s.freshState()
		if err != nil {
			return err
		}
		*next = fresh
		return nil
	})
}

func (s *Service) normalizeQuoteData(data quote.QuoteData) (quote.QuoteData, error) {
	const op = "state.ReplaceQuoteData"
	data = data.Clone()

	fresh, err := s.freshState()
	if err != nil {
		return quote.QuoteData{}, err
	}
	if data.CurrentProduct == "" {
		data.CurrentProduct = fresh.QuoteData.CurrentProduct
	}
	if !s.factory.Has(data.CurrentProduct) {
		return quote.QuoteData{}, reject(op, "unknown product %q", data.CurrentProduct)
	}
	for key := range data.Products {
		if !s.factory.Has(key) {
			return quote.QuoteData{}, reject(op, "unknown product %q", key)
		}
	}
	if data.Products == nil {
		data.Products = map[string]quote.ProductData{}
	}

	for _, key := range s.factory.Products() {
		p := data.Products[key]
		if p.Items == nil {
			p.Items = []quote.LineItem{}
		}
		for i := range p.Items {
			if p.Items[i].ID == "" {
				p.Items[i].ID = s.factory.NewID()
			}
		}
		summary, err := s.calc.ComputeSummary(p.Items)
		if err != nil {
			return quote.QuoteData{}, err
		}
		p.Summary = summary
		data.Products[key] = p
	}
	return data, nil
}
