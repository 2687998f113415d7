// Package testutil provides common fixtures for testing the quote pipeline.
package testutil

import (
	"fmt"
	"testing"

	"github.com/iwvelando/blind-quote/internal/config"
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/constants"
)

// Configuration returns a complete pricing configuration with round numbers.
//
//	retail: winder 30, dual 40, motor 250, remote 60, charger 35, cord 20, wifi 150
//	f1:     winder 25, dual 30, motor 180, remote1ch 40, remote16ch 55, charger 25, cord 12, wifi 110
//	fees:   delivery 80/50, install 25/15, removal 10/5 (price/cost)
func Configuration() config.Configuration {
	return config.Configuration{
		Products: []string{constants.ProductRollerBlind, "fabric"},
		Pricing: config.Pricing{
			Retail: map[string]float64{
				constants.ComponentWinder:  30,
				constants.ComponentDual:    40,
				constants.ComponentMotor:   250,
				constants.ComponentRemote:  60,
				constants.ComponentCharger: 35,
				constants.ComponentCord:    20,
				constants.ComponentWifi:    150,
			},
			F1: map[string]float64{
				constants.ComponentWinder:    25,
				constants.ComponentDual:      30,
				constants.ComponentMotor:     180,
				constants.ComponentRemote1ch: 40,
				constants.ComponentRemote16:  55,
				constants.ComponentCharger:   25,
				constants.ComponentCord:      12,
				constants.ComponentWifi:      110,
			},
		},
		Surcharges: map[string]config.SurchargeRule{
			constants.FeeDelivery: {Price: 80, Cost: 50},
			constants.FeeInstall:  {Price: 25, Cost: 15},
			constants.FeeRemoval:  {Price: 10, Cost: 5},
		},
		CommissionRate: 0.05,
	}
}

// Manager returns a config.Manager over Configuration and fails the test if
// it cannot be built.
func Manager(tb testing.TB) *config.Manager {
	tb.Helper()
	m, err := config.NewManager(Configuration())
	if err != nil {
		tb.Fatalf("config.NewManager() error = %v", err)
	}
	return m
}

// SequentialIDs returns an ID generator yielding item-1, item-2, ...
func SequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}
}

// Blind builds a line item priced at price.
func Blind(id string, price float64) quote.LineItem {
	return quote.LineItem{ID: id, Location: "Room " + id, Width: 1200, Height: 1500, Price: &price}
}

// HD marks item with a heavy-duty winder.
func HD(item quote.LineItem) quote.LineItem {
	item.Winder = constants.WinderHeavyDuty
	return item
}

// Dual marks item as part of a dual pairing.
func Dual(item quote.LineItem) quote.LineItem {
	item.Dual = constants.DualMarker
	return item
}

// Motorised fits item with the named motor.
func Motorised(item quote.LineItem, motor string) quote.LineItem {
	item.Motor = &motor
	return item
}
