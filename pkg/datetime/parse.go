// Package datetime provides date utility functions for quote header fields.
package datetime

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical quote date format stored in quotes and exports.
const DateLayout = "2006-01-02"

// inputLayouts are the date spellings accepted from the editor, tried in order.
var inputLayouts = []string{
	DateLayout,
	"02/01/2006",
	"2/1/2006",
	"2 Jan 2006",
	"2 January 2006",
}

// NormalizeDate parses value in any accepted layout and returns it in
// DateLayout. Blank input clears the date and is returned as "".
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognised date %q, expected %s", value, DateLayout)
}

// OffsetDays returns date moved by days, both in DateLayout.
func OffsetDays(date string, days int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, 0, days).Format(DateLayout), nil
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate string, secondDate string) (bool, error) {
	firstDateT, err := time.Parse(DateLayout, firstDate)
	if err != nil {
		return false, err
	}
	secondDateT, err := time.Parse(DateLayout, secondDate)
	if err != nil {
		return false, err
	}
	return firstDateT.Before(secondDateT), nil
}
