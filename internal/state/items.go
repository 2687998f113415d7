package state

import (
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/validation"
	"go.uber.org/zap"
)

// Item fields accepted by SetItemField.
const (
	FieldLocation   = "location"
	FieldWidth      = "width"
	FieldHeight     = "height"
	FieldFabricType = "fabricType"
	FieldFabric     = "fabric"
	FieldColor      = "color"
	FieldOver       = "over"
	FieldOI         = "oi"
	FieldLR         = "lr"
	FieldDual       = "dual"
	FieldChain      = "chain"
	FieldWinder     = "winder"
	FieldMotor      = "motor"
	FieldPrice      = "price"
)

// AddItem appends an empty item to product and returns it.
func (s *Service) AddItem(product string) (quote.LineItem, error) {
	const op = "state.AddItem"
	var added quote.LineItem
	err := s.mutate(op, product, func(next *quote.AppState) error {
		data, err := requireProduct(op, next, product)
		if err != nil {
			return err
		}
		added, err = s.factory.CreateEmptyItem(product)
		if err != nil {
			return reject(op, "%v", err)
		}
		data.Items = append(data.Items, added)
		next.QuoteData.Products[product] = data
		return nil
	})
	if err != nil {
		return quote.LineItem{}, err
	}
	return added.Clone(), nil
}

// InsertItem places item at index (0..len) of product. An item without an ID
// is given one.
func (s *Service) InsertItem(product string, index int, item quote.LineItem) error {
	const op = "state.InsertItem"
	return s.mutate(op, product, func(next *quote.AppState) error {
		data, err := requireProduct(op, next, product)
		if err != nil {
			return err
		}
		if index < 0 || index > len(data.Items) {
			return reject(op, "insert index %d out of range [0, %d]", index, len(data.Items))
		}
		item = item.Clone()
		if item.ID == "" {
			item.ID = s.factory.NewID()
		}
		items := make([]quote.LineItem, 0, len(data.Items)+1)
		items = append(items, data.Items[:index]...)
		items = append(items, item)
		items = append(items, data.Items[index:]...)
		data.Items = items
		next.QuoteData.Products[product] = data
		return nil
	})
}

// RemoveItem deletes the item at index of product.
func (s *Service) RemoveItem(product string, index int) error {
	const op = "state.RemoveItem"
	return s.mutate(op, product, func(next *quote.AppState) error {
		data, err := requireProduct(op, next, product)
		if err != nil {
			return err
		}
		if err := requireIndex(op, data, index); err != nil {
			return err
		}
		items := make([]quote.LineItem, 0, len(data.Items)-1)
		items = append(items, data.Items[:index]...)
		items = append(items, data.Items[index+1:]...)
		data.Items = items
		next.QuoteData.Products[product] = data
		return nil
	})
}

// UpdateItem replaces the item at index of product. The existing ID is kept
// when item has none.
func (s *Service) UpdateItem(product string, index int, item quote.LineItem) error {
	const op = "state.UpdateItem"
	return s.mutate(op, product, func(next *quote.AppState) error {
		data, err := requireProduct(op, next, product)
		if err != nil {
			return err
		}
		if err := requireIndex(op, data, index); err != nil {
			return err
		}
		item = item.Clone()
		if item.ID == "" {
			item.ID = data.Items[index].ID
		}
		data.Items[index] = item
		next.QuoteData.Products[product] = data
		return nil
	})
}

// SetItemField sets one field of one item from raw form input. Malformed
// numbers are coerced to zero (price to unset) and logged, never rejected.
func (s *Service) SetItemField(product string, index int, field, value string) error {
	const op = "state.SetItemField"
	return s.mutate(op, product, func(next *quote.AppState) error {
		data, err := requireProduct(op, next, product)
		if err != nil {
			return err
		}
		if err := requireIndex(op, data, index); err != nil {
			return err
		}
		item := &data.Items[index]
		switch field {
		case FieldLocation:
			item.Location = value
		case FieldFabricType:
			item.FabricType = value
		case FieldFabric:
			item.Fabric = value
		case FieldColor:
			item.Color = value
		case FieldOver:
			item.Over = value
		case FieldOI:
			item.OI = value
		case FieldLR:
			item.LR = value
		case FieldDual:
			item.Dual = value
		case FieldChain:
			item.Chain = value
		case FieldWinder:
			item.Winder = value
		case FieldMotor:
			if value == "" {
				item.Motor = nil
			} else {
				m := value
				item.Motor = &m
			}
		case FieldWidth:
			item.Width = s.coerce(op, field, value)
		case FieldHeight:
			item.Height = s.coerce(op, field, value)
		case FieldPrice:
			price, err := validation.ParseOptionalAmount(field, value)
			if err != nil {
				s.logFormatError(op, err)
			}
			item.Price = price
		default:
			return reject(op, "unknown item field %q", field)
		}
		next.QuoteData.Products[product] = data
		return nil
	})
}

func (s *Service) coerce(op, field, value string) float64 {
	v, err := validation.CoerceAmount(field, value)
	if err != nil {
		s.logFormatError(op, err)
	}
	return v
}

func (s *Service) logFormatError(op string, err error) {
	s.logger.Warn("malformed numeric input coerced to zero",
		zap.String("op", op),
		zap.Error(err),
	)
}
