package quote

import (
	"github.com/google/uuid"
)

// Factory builds default-shaped structures for the configured products.
type Factory struct {
	products map[string]struct{}
	order    []string
	newID    func() string
}

// NewFactory creates a factory for the given product keys.
func NewFactory(products []string) *Factory {
	f := &Factory{
		products: make(map[string]struct{}, len(products)),
		newID:    func() string { return uuid.NewString() },
	}
	for _, p := range products {
		if _, dup := f.products[p]; dup {
			continue
		}
		f.products[p] = struct{}{}
		f.order = append(f.order, p)
	}
	return f
}

// WithIDGenerator replaces the item ID source. Used by tests that need stable IDs.
func (f *Factory) WithIDGenerator(gen func() string) *Factory {
	f.newID = gen
	return f
}

// Products returns the product keys in configuration order.
func (f *Factory) Products() []string {
	return append([]string(nil), f.order...)
}

// Has reports whether product is registered.
func (f *Factory) Has(product string) bool {
	_, ok := f.products[product]
	return ok
}

// NewID returns a fresh line item ID.
func (f *Factory) NewID() string {
	return f.newID()
}

// CreateEmptyItem returns a blank line item for product.
func (f *Factory) CreateEmptyItem(product string) (LineItem, error) {
	if !f.Has(product) {
		return LineItem{}, &LookupError{Kind: "product", Key: product}
	}
	return LineItem{ID: f.newID()}, nil
}

// CreateEmptySummary returns the zero summary for product.
func (f *Factory) CreateEmptySummary(product string) (Summary, error) {
	if !f.Has(product) {
		return Summary{}, &LookupError{Kind: "product", Key: product}
	}
	return Summary{}, nil
}

// CreateEmptyPanel returns panel state with every input at its default.
func (f *Factory) CreateEmptyPanel() PanelState {
	return PanelState{
		F2: F2Panel{
			Values:        map[string]float64{},
			FeeExclusions: map[string]bool{},
		},
	}
}

// CreateEmptyQuoteData returns quote data with an empty tab per product.
func (f *Factory) CreateEmptyQuoteData(current string) (QuoteData, error) {
	if !f.Has(current) {
		return QuoteData{}, &LookupError{Kind: "product", Key: current}
	}
	q := QuoteData{
		CurrentProduct: current,
		Products:       make(map[string]ProductData, len(f.order)),
	}
	for _, p := range f.order {
		q.Products[p] = ProductData{Items: []LineItem{}}
	}
	return q, nil
}

// CreateEmptyUI returns default UI state for every product.
func (f *Factory) CreateEmptyUI() UIState {
	ui := UIState{Panels: make(map[string]PanelState, len(f.order))}
	for _, p := range f.order {
		ui.Panels[p] = f.CreateEmptyPanel()
	}
	return ui
}

// CreateEmptyState returns a fresh session state.
func (f *Factory) CreateEmptyState(current string) (AppState, error) {
	q, err := f.CreateEmptyQuoteData(current)
	if err != nil {
		return AppState{}, err
	}
	return AppState{QuoteData: q, UI: f.CreateEmptyUI()}, nil
}
