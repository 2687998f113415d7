package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/blind-quote/internal/calculation"
	"github.com/iwvelando/blind-quote/internal/events"
	"github.com/iwvelando/blind-quote/internal/export"
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/internal/quotefile"
	"github.com/iwvelando/blind-quote/internal/state"
	"github.com/iwvelando/blind-quote/internal/store"
	"go.uber.org/zap"
)

// ErrNoStore is returned by store operations when no quote store is open.
var ErrNoStore = errors.New("no quote store configured")

// QuoteStore persists named quote snapshots. *store.Store satisfies it.
type QuoteStore interface {
	Save(ctx context.Context, req store.SaveRequest) (store.Record, error)
	Load(ctx context.Context, id string) (quote.QuoteData, store.Record, error)
}

// Workflow runs the user-requested operations: save, load, export and reset.
type Workflow struct {
	state     *state.Service
	calc      *calculation.Service
	store     QuoteStore
	exportDir string
	logger    *zap.Logger
	currentID string
	subs      []events.Subscription
}

// NewWorkflow subscribes the USER_REQUESTED_* handlers on bus. qs may be nil,
// in which case save and load fall back to YAML files under exportDir.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewWorkflow(st *state.Service, calc *calculation.Service, qs QuoteStore, exportDir string, bus *events.Bus, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exportDir == "" {
		exportDir = "."
	}
	w := &Workflow{state: st, calc: calc, store: qs, exportDir: exportDir, logger: logger}
	w.subs = []events.Subscription{
		bus.Subscribe(events.UserRequestedSave, w.onSave),
		bus.Subscribe(events.UserRequestedLoad, w.onLoad),
		bus.Subscribe(events.UserRequestedExportCSV, w.onExportCSV),
		bus.Subscribe(events.UserRequestedExportXLSX, w.onExportXLSX),
		bus.Subscribe(events.UserRequestedReset, w.onReset),
	}
	return w
}

// Close removes the workflow's subscriptions.
func (w *Workflow) Close() {
	for _, s := range w.subs {
		s.Unsubscribe()
	}
	w.subs = nil
}

// CurrentID returns the store ID the session was last saved to or loaded
// from, or "" for an unsaved quote.
func (w *Workflow) CurrentID() string {
	return w.currentID
}

// Result calculates the current product.
func (w *Workflow) Result() (calculation.Result, error) {
	st := w.state.State()
	return w.calc.Calculate(st, st.QuoteData.CurrentProduct)
}

// Save stores the quote under name. A quote that was saved or loaded before
// overwrites its record.
func (w *Workflow) Save(ctx context.Context, name string) (store.Record, error) {
	if w.store == nil {
		return store.Record{}, ErrNoStore
	}
	res, err := w.Result()
	if err != nil {
		return store.Record{}, err
	}
	rec, err := w.store.Save(ctx, store.SaveRequest{
		ID:         w.currentID,
		Name:       name,
		GrandTotal: res.F2.GrandTotal,
		Data:       w.state.State().QuoteData,
	})
	if err != nil {
		w.logger.Error("failed to save quote",
			zap.String("op", "app.Workflow.Save"),
			zap.Error(err),
		)
		return store.Record{}, err
	}
	w.currentID = rec.ID
	return rec, nil
}

// Load replaces the session with the quote stored under id.
func (w *Workflow) Load(ctx context.Context, id string) (store.Record, error) {
	if w.store == nil {
		return store.Record{}, ErrNoStore
	}
	data, rec, err := w.store.Load(ctx, id)
	if err != nil {
		return store.Record{}, err
	}
	if err := w.state.ReplaceQuoteData(data); err != nil {
		return store.Record{}, err
	}
	w.currentID = rec.ID
	w.logger.Info("quote loaded",
		zap.String("op", "app.Workflow.Load"),
		zap.String("id", rec.ID),
	)
	return rec, nil
}

// SaveFile writes the quote to a YAML file.
func (w *Workflow) SaveFile(path string) error {
	if err := quotefile.SaveFile(path, w.state.State().QuoteData); err != nil {
		return err
	}
	w.logger.Info("quote written",
		zap.String("op", "app.Workflow.SaveFile"),
		zap.String("path", path),
	)
	return nil
}

// LoadFile replaces the session with a YAML quote file.
func (w *Workflow) LoadFile(path string) error {
	data, err := quotefile.LoadFile(path)
	if err != nil {
		return err
	}
	if err := w.state.ReplaceQuoteData(data); err != nil {
		return err
	}
	w.currentID = ""
	return nil
}

// ExportCSV writes the current product as CSV.
func (w *Workflow) ExportCSV(out io.Writer, withCosts bool) error {
	d, err := w.exportData()
	if err != nil {
		return err
	}
	return export.WriteCSV(out, d, withCosts)
}

// ExportXLSX returns the current product as an XLSX workbook.
func (w *Workflow) ExportXLSX(withCosts bool) ([]byte, error) {
	d, err := w.exportData()
	if err != nil {
		return nil, err
	}
	return export.GenerateXLSX(d, withCosts)
}

// Reset discards the session and starts a new unsaved quote.
func (w *Workflow) Reset() error {
	if err := w.state.Reset(); err != nil {
		return err
	}
	w.currentID = ""
	return nil
}

func (w *Workflow) exportData() (export.Data, error) {
	st := w.state.State()
	res, err := w.calc.Calculate(st, st.QuoteData.CurrentProduct)
	if err != nil {
		return export.Data{}, err
	}
	return export.NewData(st, res), nil
}

func (w *Workflow) onSave(e events.Event) error {
	p, err := payloadAs[events.RequestPayload](e)
	if err != nil {
		return err
	}
	if w.store != nil {
		_, err := w.Save(context.Background(), p.Name)
		return err
	}
	return w.SaveFile(w.outputPath(p.Name, ".yaml"))
}

func (w *Workflow) onLoad(e events.Event) error {
	p, err := payloadAs[events.RequestPayload](e)
	if err != nil {
		return err
	}
	if p.Name == "" {
		return &quote.StateError{Op: "app.Workflow.Load", Reason: "no quote named"}
	}
	if w.store != nil {
		_, err := w.Load(context.Background(), p.Name)
		return err
	}
	return w.LoadFile(w.outputPath(p.Name, ".yaml"))
}

func (w *Workflow) onExportCSV(e events.Event) error {
	p, err := payloadAs[events.RequestPayload](e)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := w.ExportCSV(&buf, false); err != nil {
		return err
	}
	return w.writeExport(w.outputPath(p.Name, ".csv"), buf.Bytes())
}

func (w *Workflow) onExportXLSX(e events.Event) error {
	p, err := payloadAs[events.RequestPayload](e)
	if err != nil {
		return err
	}
	data, err := w.ExportXLSX(false)
	if err != nil {
		return err
	}
	return w.writeExport(w.outputPath(p.Name, ".xlsx"), data)
}

func (w *Workflow) onReset(events.Event) error {
	return w.Reset()
}

func (w *Workflow) writeExport(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.logger.Info("quote exported",
		zap.String("op", "app.Workflow.Export"),
		zap.String("path", path),
	)
	return nil
}

// outputPath places name (default: customer name, else "quote") in the
// export directory with ext. Path separators in name are replaced.
func (w *Workflow) outputPath(name, ext string) string {
	name = strings.TrimSuffix(strings.TrimSpace(name), ext)
	if name == "" {
		name = w.state.State().QuoteData.Customer.Name
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "quote"
	}
	return filepath.Join(w.exportDir, name+ext)
}
