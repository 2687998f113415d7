// Package app assembles the quoting services into one session and maps
// input topics and user requests onto them.
package app

import (
	"fmt"

	"github.com/iwvelando/blind-quote/internal/calculation"
	"github.com/iwvelando/blind-quote/internal/config"
	"github.com/iwvelando/blind-quote/internal/events"
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/internal/state"
	"github.com/iwvelando/blind-quote/internal/store"
	"github.com/iwvelando/blind-quote/internal/view"
	"go.uber.org/zap"
)

// Options adjust how New builds a session.
type Options struct {
	// Seed is loaded as the initial quote when non-nil.
	Seed *quote.QuoteData
	// StorePath opens a SQLite quote store when non-empty.
	StorePath string
	// ExportDir receives files written by export and file save requests.
	ExportDir string
}

// App holds every service of one quoting session.
type App struct {
	Config     *config.Configuration
	Prices     *config.Manager
	Factory    *quote.Factory
	Calc       *calculation.Service
	Bus        *events.Bus
	State      *state.Service
	View       *view.Renderer
	Store      *store.Store
	Controller *Controller
	Workflow   *Workflow
	Logger     *zap.Logger
}

// New validates conf and wires a session. Missing or inconsistent pricing
// tables fail here rather than at first use.
// If logger is nil, it will use a no-op logger to prevent panics.
func New(conf *config.Configuration, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		return nil, &quote.LookupError{Kind: "configuration", Key: "app"}
	}

	prices, err := config.NewManager(*conf)
	if err != nil {
		return nil, fmt.Errorf("invalid pricing configuration: %w", err)
	}

	a := &App{
		Config:  conf,
		Prices:  prices,
		Factory: quote.NewFactory(prices.Products()),
		Calc:    calculation.NewService(prices, logger),
		Bus:     events.NewBus(logger),
		Logger:  logger,
	}

	a.State, err = state.NewService(a.Factory, a.Calc, a.Bus, logger, opts.Seed)
	if err != nil {
		return nil, err
	}
	a.View = view.NewRenderer(a.Calc, logger).WithProductOrder(a.Factory.Products())

	var qs QuoteStore
	if opts.StorePath != "" {
		a.Store, err = store.Open(opts.StorePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open quote store: %w", err)
		}
		qs = a.Store
	}

	a.Controller = NewController(a.State, a.Bus, logger)
	a.Workflow = NewWorkflow(a.State, a.Calc, qs, opts.ExportDir, a.Bus, logger)

	logger.Debug("session ready",
		zap.String("op", "app.New"),
		zap.Strings("products", a.Factory.Products()),
		zap.Bool("store", a.Store != nil),
	)
	return a, nil
}

// Render returns the view model of the current state.
func (a *App) Render() (view.ViewModel, error) {
	return a.View.Render(a.State.State())
}

// Results calculates every product that has items, in configuration order.
// The current product is always included.
func (a *App) Results() ([]calculation.Result, error) {
	st := a.State.State()
	var results []calculation.Result
	for _, product := range a.Factory.Products() {
		if len(st.QuoteData.Products[product].Items) == 0 && product != st.QuoteData.CurrentProduct {
			continue
		}
		res, err := a.Calc.Calculate(st, product)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Close unsubscribes the session handlers and closes the store.
func (a *App) Close() error {
	a.Controller.Close()
	a.Workflow.Close()
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
