package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the items table followed by the totals. Internal costs are
// included when withCosts is set.
func WriteCSV(w io.Writer, d Data, withCosts bool) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ItemHeaders); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, item := range d.Items {
		if err := cw.Write(itemRow(i, item)); err != nil {
			return fmt.Errorf("write csv item %d: %w", i+1, err)
		}
	}

	lines := Totals(d.Result)
	if withCosts {
		lines = append(lines, CostLines(d.Result)...)
	}
	if err := cw.Write(nil); err != nil {
		return fmt.Errorf("write csv separator: %w", err)
	}
	for _, line := range lines {
		if err := cw.Write([]string{line.Label, amount(line.Value)}); err != nil {
			return fmt.Errorf("write csv total %s: %w", line.Label, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
