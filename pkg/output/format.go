// Package output provides utilities for formatting and displaying priced quotes.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/blind-quote/internal/calculation"
	"github.com/iwvelando/blind-quote/internal/export"
	"github.com/iwvelando/blind-quote/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write dispatches to the formatter named by format.
func Write(w io.Writer, format string, results []calculation.Result, withCosts bool) error {
	switch format {
	case constants.OutputFormatCSV:
		return CsvFormat(w, results, withCosts)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results)
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, results, withCosts)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []calculation.Result, withCosts bool) error {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		if _, err := fmt.Fprintf(w, "--- Quote for product %s (%d items) ---\n", result.Product, result.F2.ItemCount); err != nil {
			return err
		}
		if err := prettySection(w, p, export.Totals(result)); err != nil {
			return err
		}
		if withCosts {
			if _, err := fmt.Fprintf(w, "--- Costs for product %s ---\n", result.Product); err != nil {
				return err
			}
			if err := prettySection(w, p, export.CostLines(result)); err != nil {
				return err
			}
		}
		if i < len(results)-1 {
			if _, err := fmt.Fprintf(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func prettySection(w io.Writer, p *message.Printer, lines []export.TotalLine) error {
	width := len("Line")
	for _, line := range lines {
		if len(line.Label) > width {
			width = len(line.Label)
		}
	}
	if _, err := fmt.Fprintf(w, "%-*s | Amount\n", width, "Line"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-*s | ______\n", width, "____"); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := p.Fprintf(w, "%-*s | $%.2f\n", width, line.Label, line.Value); err != nil {
			return err
		}
	}
	return nil
}

// CsvFormat outputs in comma-separated value format, one row per figure.
func CsvFormat(w io.Writer, results []calculation.Result, withCosts bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"product", "section", "line", "amount"}); err != nil {
		return err
	}
	for _, result := range results {
		if err := csvSection(cw, result.Product, "quote", export.Totals(result)); err != nil {
			return err
		}
		if withCosts {
			if err := csvSection(cw, result.Product, "costs", export.CostLines(result)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvSection(cw *csv.Writer, product, section string, lines []export.TotalLine) error {
	for _, line := range lines {
		if err := cw.Write([]string{product, section, line.Label, strconv.FormatFloat(line.Value, 'f', 2, 64)}); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormat outputs the full calculation results as indented JSON.
func JSONFormat(w io.Writer, results []calculation.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
