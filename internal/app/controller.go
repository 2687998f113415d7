package app

import (
	"fmt"

	"github.com/iwvelando/blind-quote/internal/events"
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/internal/state"
	"github.com/iwvelando/blind-quote/pkg/validation"
	"go.uber.org/zap"
)

// NewOfferID is the F2 input id of the manual offer.
const NewOfferID = "newOffer"

// Controller maps input topics onto state mutations.
type Controller struct {
	state  *state.Service
	logger *zap.Logger
	subs   []events.Subscription
}

// NewController subscribes the input handlers on bus.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewController(st *state.Service, bus *events.Bus, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{state: st, logger: logger}
	handlers := map[events.Topic]events.Handler{
		events.F1DiscountChanged:    c.onDiscount,
		events.F1OverrideChanged:    c.onOverride,
		events.F2ValueChanged:       c.onF2Value,
		events.ToggleFeeExclusion:   c.onToggleFee,
		events.ItemAdded:            c.onItemAdded,
		events.ItemRemoved:          c.onItemRemoved,
		events.ItemFieldChanged:     c.onItemField,
		events.ProductSwitched:      c.onProductSwitched,
		events.FocusChanged:         c.onFocus,
		events.CustomerFieldChanged: c.onCustomerField,
	}
	for _, topic := range events.InputTopics() {
		if h, ok := handlers[topic]; ok {
			c.subs = append(c.subs, bus.Subscribe(topic, h))
		}
	}
	return c
}

// Close removes the controller's subscriptions.
func (c *Controller) Close() {
	for _, s := range c.subs {
		s.Unsubscribe()
	}
	c.subs = nil
}

func (c *Controller) product(p string) string {
	if p == "" {
		return c.state.CurrentProduct()
	}
	return p
}

func (c *Controller) onDiscount(e events.Event) error {
	p, err := payloadAs[events.DiscountPayload](e)
	if err != nil {
		return err
	}
	return c.state.SetF1Discount(c.product(p.Product), p.Percentage)
}

func (c *Controller) onOverride(e events.Event) error {
	p, err := payloadAs[events.OverridePayload](e)
	if err != nil {
		return err
	}
	o := quote.Auto()
	if p.Value != nil {
		o = quote.Manual(*p.Value)
	}
	return c.state.SetF1Override(c.product(p.Product), p.ID, o)
}

func (c *Controller) onF2Value(e events.Event) error {
	p, err := payloadAs[events.ValuePayload](e)
	if err != nil {
		return err
	}
	product := c.product(p.Product)

	if p.ID == NewOfferID {
		offer, err := validation.ParseOptionalAmount(p.ID, p.Value)
		if err != nil {
			c.coerced(err)
			zero := 0.0
			offer = &zero
		}
		if offer == nil {
			return c.state.SetNewOffer(product, quote.Auto())
		}
		return c.state.SetNewOffer(product, quote.Manual(*offer))
	}

	v, err := validation.CoerceAmount(p.ID, p.Value)
	if err != nil {
		c.coerced(err)
	}
	return c.state.SetF2Value(product, p.ID, v)
}

func (c *Controller) onToggleFee(e events.Event) error {
	p, err := payloadAs[events.FeePayload](e)
	if err != nil {
		return err
	}
	return c.state.ToggleFeeExclusion(c.product(p.Product), p.FeeType)
}

func (c *Controller) onItemAdded(e events.Event) error {
	p, err := payloadAs[events.ItemPayload](e)
	if err != nil {
		return err
	}
	_, err = c.state.AddItem(c.product(p.Product))
	return err
}

func (c *Controller) onItemRemoved(e events.Event) error {
	p, err := payloadAs[events.ItemPayload](e)
	if err != nil {
		return err
	}
	return c.state.RemoveItem(c.product(p.Product), p.Index)
}

func (c *Controller) onItemField(e events.Event) error {
	p, err := payloadAs[events.ItemPayload](e)
	if err != nil {
		return err
	}
	return c.state.SetItemField(c.product(p.Product), p.Index, p.Field, p.Value)
}

func (c *Controller) onProductSwitched(e events.Event) error {
	p, err := payloadAs[events.ProductPayload](e)
	if err != nil {
		return err
	}
	return c.state.SetCurrentProduct(p.Product)
}

func (c *Controller) onFocus(e events.Event) error {
	p, err := payloadAs[events.FocusPayload](e)
	if err != nil {
		return err
	}
	return c.state.SetFocus(p.Target)
}

func (c *Controller) onCustomerField(e events.Event) error {
	p, err := payloadAs[events.CustomerPayload](e)
	if err != nil {
		return err
	}
	return c.state.SetCustomerField(p.Field, p.Value)
}

func (c *Controller) coerced(err error) {
	c.logger.Warn("malformed numeric input coerced to zero",
		zap.String("op", "app.Controller"),
		zap.Error(err),
	)
}

// payloadAs extracts a T (or *T) payload from e.
func payloadAs[T any](e events.Event) (T, error) {
	switch p := e.Payload.(type) {
	case T:
		return p, nil
	case *T:
		if p != nil {
			return *p, nil
		}
	}
	var zero T
	return zero, &quote.StateError{
		Op:     string(e.Topic),
		Reason: fmt.Sprintf("unexpected payload %T", e.Payload),
	}
}
