// Package export writes a priced quote as CSV or XLSX.
package export

import (
	"strconv"

	"github.com/iwvelando/blind-quote/internal/calculation"
	"github.com/iwvelando/blind-quote/internal/quote"
)

// Data is one product of a quote together with its figures.
type Data struct {
	Title    string
	Customer quote.Customer
	Items    []quote.LineItem
	Result   calculation.Result
}

// NewData collects the current product of state with its figures.
func NewData(state quote.AppState, res calculation.Result) Data {
	title := state.QuoteData.Customer.Name
	if title == "" {
		title = "Quote"
	}
	return Data{
		Title:    title,
		Customer: state.QuoteData.Customer,
		Items:    state.QuoteData.Products[res.Product].Items,
		Result:   res,
	}
}

// ItemHeaders are the column titles of the items table.
var ItemHeaders = []string{
	"#", "Location", "Width", "Height", "Fabric Type", "Fabric", "Color",
	"Over", "O/I", "L/R", "Dual", "Chain", "Winder", "Motor", "Price",
}

func itemRow(index int, item quote.LineItem) []string {
	motor := ""
	if item.Motor != nil {
		motor = *item.Motor
	}
	price := ""
	if item.Price != nil {
		price = amount(*item.Price)
	}
	return []string{
		strconv.Itoa(index + 1),
		item.Location,
		dimension(item.Width),
		dimension(item.Height),
		item.FabricType,
		item.Fabric,
		item.Color,
		item.Over,
		item.OI,
		item.LR,
		item.Dual,
		item.Chain,
		item.Winder,
		motor,
		price,
	}
}

// TotalLine is one labelled figure below the items table.
type TotalLine struct {
	Label string
	Value float64
}

// Totals lists the quote figures in display order.
func Totals(res calculation.Result) []TotalLine {
	lines := []TotalLine{
		{"Blinds", res.F2.TotalSum},
		{"Accessories", res.F2.AccessorySum},
	}
	for _, fee := range res.F2.Fees {
		if fee.Excluded {
			continue
		}
		lines = append(lines, TotalLine{feeTitle(fee.FeeType), fee.Price})
	}
	return append(lines,
		TotalLine{"Sub Total", res.F2.SumPrice},
		TotalLine{"Offer", res.F2.Offer},
		TotalLine{"GST", res.F2.GST},
		TotalLine{"Grand Total", res.F2.GrandTotal},
	)
}

// CostLines lists the internal cost and profit figures.
func CostLines(res calculation.Result) []TotalLine {
	return []TotalLine{
		{"Supplier Components", res.F1.ComponentTotal},
		{"Supplier Blinds", res.F1.RBPrice},
		{"Supplier GST", res.F1.GST},
		{"Supplier Total", res.F1.FinalTotal},
		{"Total Cost", res.F2.TotalCost},
		{"Gross Profit", res.F2.SumProfit},
		{"Commission", res.F2.Commission},
		{"Net Profit", res.F2.NetProfit},
	}
}

func feeTitle(feeType string) string {
	if feeType == "" {
		return feeType
	}
	b := []byte(feeType)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func dimension(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
