// Package quote defines the quote state tree, the product factory and the
// error taxonomy shared by the state, calculation and view layers.
package quote

// AppState is the single owned state tree of a quoting session.
type AppState struct {
	QuoteData QuoteData `json:"quoteData" yaml:"quoteData"`
	UI        UIState   `json:"ui" yaml:"-"`
}

// QuoteData is the priced part of the state; it is what gets persisted.
type QuoteData struct {
	CurrentProduct string                 `json:"currentProduct" yaml:"currentProduct"`
	Customer       Customer               `json:"customer" yaml:"customer"`
	Products       map[string]ProductData `json:"products" yaml:"products"`
}

// Customer holds the free-form quote header fields.
type Customer struct {
	Name      string `json:"name" yaml:"name,omitempty"`
	Address   string `json:"address" yaml:"address,omitempty"`
	Phone     string `json:"phone" yaml:"phone,omitempty"`
	Email     string `json:"email" yaml:"email,omitempty"`
	QuoteDate string `json:"quoteDate" yaml:"quoteDate,omitempty"`
	DueDate   string `json:"dueDate" yaml:"dueDate,omitempty"`
}

// ProductData is one product tab: its ordered items and derived summary.
type ProductData struct {
	Items   []LineItem `json:"items" yaml:"items"`
	Summary Summary    `json:"summary" yaml:"summary"`
}

// LineItem is one configurable blind.
type LineItem struct {
	ID         string   `json:"id" yaml:"id"`
	Location   string   `json:"location" yaml:"location,omitempty"`
	Width      float64  `json:"width" yaml:"width,omitempty"`
	Height     float64  `json:"height" yaml:"height,omitempty"`
	FabricType string   `json:"fabricType" yaml:"fabricType,omitempty"`
	Fabric     string   `json:"fabric" yaml:"fabric,omitempty"`
	Color      string   `json:"color" yaml:"color,omitempty"`
	Over       string   `json:"over" yaml:"over,omitempty"`
	OI         string   `json:"oi" yaml:"oi,omitempty"`
	LR         string   `json:"lr" yaml:"lr,omitempty"`
	Dual       string   `json:"dual" yaml:"dual,omitempty"`
	Chain      string   `json:"chain" yaml:"chain,omitempty"`
	Winder     string   `json:"winder" yaml:"winder,omitempty"`
	Motor      *string  `json:"motor" yaml:"motor,omitempty"`
	Price      *float64 `json:"price" yaml:"price,omitempty"`
}

// Summary is the derived accessory and retail rollup of a product's items.
type Summary struct {
	HDCount    int `json:"hdCount" yaml:"hdCount"`
	DualCount  int `json:"dualCount" yaml:"dualCount"`
	DualPairs  int `json:"dualPairs" yaml:"dualPairs"`
	MotorCount int `json:"motorCount" yaml:"motorCount"`

	WinderCostSum  float64 `json:"winderCostSum" yaml:"winderCostSum"`
	DualCostSum    float64 `json:"dualCostSum" yaml:"dualCostSum"`
	MotorCostSum   float64 `json:"motorCostSum" yaml:"motorCostSum"`
	RemoteCostSum  float64 `json:"remoteCostSum" yaml:"remoteCostSum"`
	ChargerCostSum float64 `json:"chargerCostSum" yaml:"chargerCostSum"`
	CordCostSum    float64 `json:"cordCostSum" yaml:"cordCostSum"`
	TotalSum       float64 `json:"totalSum" yaml:"totalSum"`
}

// AccessorySum is the retail total of every accessory category.
func (s Summary) AccessorySum() float64 {
	return s.WinderCostSum + s.DualCostSum + s.MotorCostSum + s.RemoteCostSum + s.ChargerCostSum + s.CordCostSum
}

// RemoteQty is the physical number of remotes the items require.
func (s Summary) RemoteQty() int {
	return s.MotorCount
}

// UIState is transient per-panel view state. It is not persisted.
type UIState struct {
	Panels map[string]PanelState `json:"panels"`
	Focus  string                `json:"focus"`
}

// PanelState groups the F1 (supplier cost) and F2 (customer price) panel inputs
// of one product.
type PanelState struct {
	F1 F1Panel `json:"f1"`
	F2 F2Panel `json:"f2"`
}

// F1Panel holds the supplier-side inputs.
type F1Panel struct {
	DiscountPercentage float64  `json:"discountPercentage"`
	Remote1ch          Override `json:"remote1ch"`
	Charger            Override `json:"charger"`
	Cord               Override `json:"cord"`
}

// F2Panel holds the customer-side inputs.
type F2Panel struct {
	Values        map[string]float64 `json:"values"`
	NewOffer      Override           `json:"newOffer"`
	FeeExclusions map[string]bool    `json:"feeExclusions"`
}

// Value returns the F2 input id, or zero when it was never entered.
func (p F2Panel) Value(id string) float64 {
	return p.Values[id]
}

// Excluded reports whether feeType is excluded from the quote.
func (p F2Panel) Excluded(feeType string) bool {
	return p.FeeExclusions[feeType]
}

// Clone returns a deep copy of the state.
func (s AppState) Clone() AppState {
	return AppState{
		QuoteData: s.QuoteData.Clone(),
		UI:        s.UI.Clone(),
	}
}

// Clone returns a deep copy of the quote data.
func (q QuoteData) Clone() QuoteData {
	out := QuoteData{
		CurrentProduct: q.CurrentProduct,
		Customer:       q.Customer,
	}
	if q.Products != nil {
		out.Products = make(map[string]ProductData, len(q.Products))
		for k, p := range q.Products {
			out.Products[k] = p.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the product data.
func (p ProductData) Clone() ProductData {
	out := ProductData{Summary: p.Summary}
	if p.Items != nil {
		out.Items = make([]LineItem, len(p.Items))
		for i, item := range p.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the line item.
func (i LineItem) Clone() LineItem {
	out := i
	if i.Motor != nil {
		m := *i.Motor
		out.Motor = &m
	}
	if i.Price != nil {
		p := *i.Price
		out.Price = &p
	}
	return out
}

// HasMotor reports whether the item is motorised.
func (i LineItem) HasMotor() bool {
	return i.Motor != nil && *i.Motor != ""
}

// Clone returns a deep copy of the UI state.
func (u UIState) Clone() UIState {
	out := UIState{Focus: u.Focus}
	if u.Panels != nil {
		out.Panels = make(map[string]PanelState, len(u.Panels))
		for k, p := range u.Panels {
			out.Panels[k] = p.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the panel state.
func (p PanelState) Clone() PanelState {
	out := p
	if p.F2.Values != nil {
		out.F2.Values = make(map[string]float64, len(p.F2.Values))
		for k, v := range p.F2.Values {
			out.F2.Values[k] = v
		}
	}
	if p.F2.FeeExclusions != nil {
		out.F2.FeeExclusions = make(map[string]bool, len(p.F2.FeeExclusions))
		for k, v := range p.F2.FeeExclusions {
			out.F2.FeeExclusions[k] = v
		}
	}
	return out
}

// Panel returns the panel state of product, or an empty panel.
func (u UIState) Panel(product string) PanelState {
	if p, ok := u.Panels[product]; ok {
		return p
	}
	return PanelState{}
}
