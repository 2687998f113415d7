// Package state owns the quote session's AppState. Every change goes through
// a Service method which validates it, recomputes the touched product's
// summary, commits, and publishes events.StateChanged.
package state

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/blind-quote/internal/events"
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/pkg/constants"
	"go.uber.org/zap"
)

// SummaryCalculator derives a product summary from its items and names the
// fee types the F2 panel prices.
type SummaryCalculator interface {
	ComputeSummary(items []quote.LineItem) (quote.Summary, error)
	FeeTypes() []string
}

// Publisher delivers change notifications.
type Publisher interface {
	Publish(topic events.Topic, payload interface{}) error
}

// Service owns the state tree. It is not safe for concurrent use; callers
// that share it across goroutines must serialise access.
type Service struct {
	state   quote.AppState
	factory *quote.Factory
	calc    SummaryCalculator
	bus     Publisher
	logger  *zap.Logger
}

// NewService creates a Service seeded with a fresh state. If seed is non-nil
// its quote data is loaded and validated as by ReplaceQuoteData.
func NewService(factory *quote.Factory, calc SummaryCalculator, bus Publisher, logger *zap.Logger, seed *quote.QuoteData) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if factory == nil || calc == nil || bus == nil {
		return nil, &quote.LookupError{Kind: "collaborator", Key: "state.Service dependencies"}
	}
	s := &Service{factory: factory, calc: calc, bus: bus, logger: logger}

	initial, err := s.freshState()
	if err != nil {
		return nil, err
	}
	if seed != nil {
		initial.QuoteData, err = s.normalizeQuoteData(*seed)
		if err != nil {
			return nil, fmt.Errorf("failed to seed state: %w", err)
		}
	}
	s.state = initial
	return s, nil
}

// State returns a deep copy of the current state.
func (s *Service) State() quote.AppState {
	return s.state.Clone()
}

// CurrentProduct returns the active product key.
func (s *Service) CurrentProduct() string {
	return s.state.QuoteData.CurrentProduct
}

func (s *Service) freshState() (quote.AppState, error) {
	products := s.factory.Products()
	if len(products) == 0 {
		return quote.AppState{}, &quote.LookupError{Kind: "product", Key: constants.ProductRollerBlind}
	}
	current := products[0]
	if s.factory.Has(constants.ProductRollerBlind) {
		current = constants.ProductRollerBlind
	}
	return s.factory.CreateEmptyState(current)
}

// mutate applies fn to a copy of the state. When product is non-empty its
// summary is recomputed before the copy is committed. A failure at any step
// leaves the committed state untouched.
func (s *Service) mutate(op, product string, fn func(next *quote.AppState) error) error {
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		s.logger.Warn("mutation rejected",
			zap.String("op", op),
			zap.String("product", product),
			zap.Error(err),
		)
		return err
	}

	if product != "" {
		data := next.QuoteData.Products[product]
		summary, err := s.calc.ComputeSummary(data.Items)
		if err != nil {
			s.logger.Error("summary recompute failed",
				zap.String("op", op),
				zap.String("product", product),
				zap.Error(err),
			)
			return fmt.Errorf("%s: %w", op, err)
		}
		data.Summary = summary
		next.QuoteData.Products[product] = data
	}

	s.state = next
	s.logger.Debug("state changed",
		zap.String("op", op),
		zap.String("product", product),
	)
	if err := s.bus.Publish(events.StateChanged, s.state.Clone()); err != nil {
		s.logger.Warn("stateChanged subscribers failed",
			zap.String("op", op),
			zap.Error(err),
		)
	}
	return nil
}

func reject(op, format string, args ...interface{}) error {
	return &quote.StateError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func requireProduct(op string, st *quote.AppState, product string) (quote.ProductData, error) {
	data, ok := st.QuoteData.Products[product]
	if !ok {
		return quote.ProductData{}, reject(op, "unknown product %q", product)
	}
	return data, nil
}

func requireIndex(op string, data quote.ProductData, index int) error {
	if index < 0 || index >= len(data.Items) {
		return reject(op, "item index %d out of range [0, %d)", index, len(data.Items))
	}
	return nil
}

// panel returns the panel of product, creating default maps where missing.
func (s *Service) panel(st *quote.AppState, product string) quote.PanelState {
	p, ok := st.UI.Panels[product]
	if !ok {
		p = s.factory.CreateEmptyPanel()
	}
	if p.F2.Values == nil {
		p.F2.Values = map[string]float64{}
	}
	if p.F2.FeeExclusions == nil {
		p.F2.FeeExclusions = map[string]bool{}
	}
	return p
}

func (s *Service) setPanel(st *quote.AppState, product string, p quote.PanelState) {
	if st.UI.Panels == nil {
		st.UI.Panels = map[string]quote.PanelState{}
	}
	st.UI.Panels[product] = p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsStateError reports whether err is a rejected mutation.
func IsStateError(err error) bool {
	var stateErr *quote.StateError
	return errors.As(err, &stateErr)
}
