// Package view turns the quote state and its derived figures into display
// fields for a front end.
package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/blind-quote/internal/calculation"
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/constants"
	"github.com/iwvelando/blind-quote/pkg/format"
	"go.uber.org/zap"
)

// Calculator derives the figures shown for a product.
type Calculator interface {
	Calculate(state quote.AppState, product string) (calculation.Result, error)
}

// Field is one display value. Preserve is set on the field the user is
// typing in; a front end must leave its current input alone.
type Field struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Preserve bool   `json:"preserve,omitempty"`
}

// ItemRow is one line item rendered for the items table.
type ItemRow struct {
	Index  int     `json:"index"`
	ID     string  `json:"id"`
	Fields []Field `json:"fields"`
}

// ViewModel is everything a front end needs to draw the current product tab.
type ViewModel struct {
	Product  string    `json:"product"`
	Products []string  `json:"products"`
	Focus    string    `json:"focus,omitempty"`
	Customer []Field   `json:"customer"`
	Items    []ItemRow `json:"items"`
	Summary  []Field   `json:"summary"`
	F1       []Field   `json:"f1"`
	F2       []Field   `json:"f2"`
}

// Field returns the field with id from any section, and whether it exists.
func (v ViewModel) Field(id string) (Field, bool) {
	sections := [][]Field{v.Customer, v.Summary, v.F1, v.F2}
	for _, row := range v.Items {
		sections = append(sections, row.Fields)
	}
	for _, section := range sections {
		for _, f := range section {
			if f.ID == id {
				return f, true
			}
		}
	}
	return Field{}, false
}

// Renderer builds view models. Render reads its argument only, so rendering
// the same state twice yields the same model.
type Renderer struct {
	calc     Calculator
	logger   *zap.Logger
	products []string
}

// NewRenderer creates a renderer over calc.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewRenderer(calc Calculator, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{calc: calc, logger: logger}
}

// WithProductOrder sets the tab order of ViewModel.Products, normally the
// configured product list.
func (r *Renderer) WithProductOrder(products []string) *Renderer {
	r.products = append([]string(nil), products...)
	return r
}

// ItemFieldID is the focus target of one item field.
func ItemFieldID(index int, field string) string {
	return fmt.Sprintf("items.%d.%s", index, field)
}

// Render builds the view model of the current product of state.
func (r *Renderer) Render(state quote.AppState) (ViewModel, error) {
	product := state.QuoteData.CurrentProduct
	res, err := r.calc.Calculate(state, product)
	if err != nil {
		r.logger.Error("failed to calculate view figures",
			zap.String("op", "view.Render"),
			zap.String("product", product),
			zap.Error(err),
		)
		return ViewModel{}, fmt.Errorf("failed to render %s: %w", product, err)
	}

	b := builder{focus: state.UI.Focus}
	vm := ViewModel{
		Product:  product,
		Products: productKeys(r.products, state.QuoteData.Products),
		Focus:    state.UI.Focus,
	}
	vm.Customer = b.customer(state.QuoteData.Customer)
	vm.Items = b.items(state.QuoteData.Products[product].Items)
	vm.Summary = b.summary(res.Summary)
	vm.F1 = b.f1(res.F1, state.UI.Panel(product).F1)
	vm.F2 = b.f2(res.F2)
	return vm, nil
}

type builder struct {
	focus string
}

func (b builder) field(id, label, value string) Field {
	return Field{ID: id, Label: label, Value: value, Preserve: id == b.focus}
}

func (b builder) customer(c quote.Customer) []Field {
	return []Field{
		b.field("customer.name", "Customer", c.Name),
		b.field("customer.address", "Address", c.Address),
		b.field("customer.phone", "Phone", c.Phone),
		b.field("customer.email", "Email", c.Email),
		b.field("customer.quoteDate", "Quote Date", c.QuoteDate),
		b.field("customer.dueDate", "Due Date", c.DueDate),
	}
}

func (b builder) items(items []quote.LineItem) []ItemRow {
	rows := make([]ItemRow, 0, len(items))
	for i, item := range items {
		motor := ""
		if item.Motor != nil {
			motor = *item.Motor
		}
		price := ""
		if item.Price != nil {
			price = format.NumericCurrency(*item.Price)
		}
		rows = append(rows, ItemRow{
			Index: i,
			ID:    item.ID,
			Fields: []Field{
				b.field(ItemFieldID(i, "location"), "Location", item.Location),
				b.field(ItemFieldID(i, "width"), "Width", dimension(item.Width)),
				b.field(ItemFieldID(i, "height"), "Height", dimension(item.Height)),
				b.field(ItemFieldID(i, "fabricType"), "Fabric Type", item.FabricType),
				b.field(ItemFieldID(i, "fabric"), "Fabric", item.Fabric),
				b.field(ItemFieldID(i, "color"), "Color", item.Color),
				b.field(ItemFieldID(i, "over"), "Over", item.Over),
				b.field(ItemFieldID(i, "oi"), "O/I", item.OI),
				b.field(ItemFieldID(i, "lr"), "L/R", item.LR),
				b.field(ItemFieldID(i, "dual"), "Dual", item.Dual),
				b.field(ItemFieldID(i, "chain"), "Chain", item.Chain),
				b.field(ItemFieldID(i, "winder"), "Winder", item.Winder),
				b.field(ItemFieldID(i, "motor"), "Motor", motor),
				b.field(ItemFieldID(i, "price"), "Price", price),
			},
		})
	}
	return rows
}

func (b builder) summary(s quote.Summary) []Field {
	return []Field{
		b.field("summary.hdCount", "HD Winders", format.Quantity(float64(s.HDCount))),
		b.field("summary.dualPairs", "Dual Pairs", format.Quantity(float64(s.DualPairs))),
		b.field("summary.motorCount", "Motors", format.Quantity(float64(s.MotorCount))),
		b.field("summary.winderCostSum", "Winders", format.Currency(s.WinderCostSum)),
		b.field("summary.dualCostSum", "Dual Brackets", format.Currency(s.DualCostSum)),
		b.field("summary.motorCostSum", "Motors", format.Currency(s.MotorCostSum)),
		b.field("summary.remoteCostSum", "Remotes", format.Currency(s.RemoteCostSum)),
		b.field("summary.chargerCostSum", "Chargers", format.Currency(s.ChargerCostSum)),
		b.field("summary.cordCostSum", "Cords", format.Currency(s.CordCostSum)),
		b.field("summary.totalSum", "Blinds Total", format.Currency(s.TotalSum)),
	}
}

var componentLabels = map[string]string{
	constants.ComponentWinder:    "HD Winder",
	constants.ComponentDual:      "Dual Bracket",
	constants.ComponentMotor:     "Motor",
	constants.ComponentRemote1ch: "Remote 1ch",
	constants.ComponentRemote16:  "Remote 16ch",
	constants.ComponentCharger:   "Charger",
	constants.ComponentCord:      "Cord",
}

func (b builder) f1(res calculation.F1Result, panel quote.F1Panel) []Field {
	overrides := map[string]quote.Override{
		constants.ComponentRemote1ch: panel.Remote1ch,
		constants.ComponentCharger:   panel.Charger,
		constants.ComponentCord:      panel.Cord,
	}

	fields := make([]Field, 0, 2*len(res.Components)+8)
	for _, c := range res.Components {
		label := componentLabels[c.Key]
		qty := b.field("f1."+c.Key+".qty", label+" Qty", format.Quantity(c.Qty))
		if o, ok := overrides[c.Key]; ok && o.IsManual() {
			qty.Label += " (manual)"
		}
		fields = append(fields,
			qty,
			b.field("f1."+c.Key+".price", label, format.Currency(c.Price)),
		)
	}
	return append(fields,
		b.field("f1.componentTotal", "Components", format.Currency(res.ComponentTotal)),
		b.field("f1.retailTotal", "Retail Total", format.Currency(res.RetailTotal)),
		b.field("f1.discount", "Discount %", format.Percent(res.DiscountPercentage)),
		b.field("f1.discountAmount", "Discount", format.Currency(res.DiscountAmount)),
		b.field("f1.rbPrice", "RB Price", format.Currency(res.RBPrice)),
		b.field("f1.subTotal", "Sub Total", format.Currency(res.SubTotal)),
		b.field("f1.gst", "GST", format.Currency(res.GST)),
		b.field("f1.finalTotal", "Final Total", format.Currency(res.FinalTotal)),
	)
}

func (b builder) f2(res calculation.F2Result) []Field {
	fields := []Field{
		b.field("f2.totalSum", "Blinds", format.Currency(res.TotalSum)),
		b.field("f2."+constants.F2WifiQty, "WiFi Hub Qty", format.Quantity(res.WifiQty)),
		b.field("f2.wifiPrice", "WiFi Hub", format.Currency(res.WifiPrice)),
		b.field("f2.accessorySum", "Accessories", format.Currency(res.AccessorySum)),
	}
	for _, fee := range res.Fees {
		id, _ := calculation.FeeQtyID(fee.FeeType)
		label := feeLabel(fee.FeeType)
		price := format.Currency(fee.Price)
		if fee.Excluded {
			price = "excluded"
		}
		fields = append(fields,
			b.field("f2."+id, label+" Qty", format.Quantity(fee.Qty)),
			b.field("f2."+fee.FeeType, label, price),
		)
	}
	offerLabel := "Offer"
	if res.OfferManual {
		offerLabel = "Offer (manual)"
	}
	return append(fields,
		b.field("f2.feeSum", "Fees", format.Currency(res.FeeSum)),
		b.field("f2.sumPrice", "Sum Price", format.Currency(res.SumPrice)),
		b.field("f2.newOffer", offerLabel, format.Currency(res.Offer)),
		b.field("f2.gst", "GST", format.Currency(res.GST)),
		b.field("f2.grandTotal", "Grand Total", format.Currency(res.GrandTotal)),
		b.field("f2.totalCost", "Total Cost", format.Currency(res.TotalCost)),
		b.field("f2.rbProfit", "RB Profit", format.Currency(res.RBProfit)),
		b.field("f2.singleprofit", "Profit per Blind", format.Currency(res.SingleProfit)),
		b.field("f2.sumprofit", "Gross Profit", format.Currency(res.SumProfit)),
		b.field("f2.commission", "Commission", format.Currency(res.Commission)),
		b.field("f2.netProfit", "Net Profit", format.Currency(res.NetProfit)),
	)
}

func feeLabel(feeType string) string {
	if feeType == "" {
		return feeType
	}
	return strings.ToUpper(feeType[:1]) + feeType[1:]
}

func dimension(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%g", v)
}

// productKeys lists the products of state in order; keys missing from order
// follow alphabetically.
func productKeys(order []string, products map[string]quote.ProductData) []string {
	keys := make([]string, 0, len(products))
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		if _, ok := products[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range products {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
