// Package server exposes a quoting session over an HTTP JSON API so a
// browser editor can publish input events and read back the rendered view.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/blind-quote/internal/app"
	"github.com/iwvelando/blind-quote/internal/events"
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/internal/store"
	"github.com/iwvelando/blind-quote/pkg/constants"
	"go.uber.org/zap"
)

type handler struct {
	app         *app.App
	logger      *zap.Logger
	maxBodySize int64
	version     string

	// mu serialises every request; the session services are single-goroutine.
	mu sync.Mutex
}

// NewHandler constructs the HTTP handler for the editor API.
func NewHandler(a *app.App, logger *zap.Logger, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxUploadSizeBytes
	}
	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{app: a, logger: logger, maxBodySize: maxBodySize, version: trimmedVersion}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.limitBody)

	r.Get("/api/version", h.handleVersion)

	r.Group(func(r chi.Router) {
		r.Use(h.serialize)
		r.Get("/api/state", h.handleState)
		r.Get("/api/view", h.handleView)
		r.Post("/api/events", h.handleEvent)
		r.Get("/api/export/csv", h.handleExportCSV)
		r.Get("/api/export/xlsx", h.handleExportXLSX)
		r.Get("/api/quotes", h.handleListQuotes)
		r.Post("/api/quotes", h.handleSaveQuote)
		r.Post("/api/quotes/{id}/load", h.handleLoadQuote)
		r.Delete("/api/quotes/{id}", h.handleDeleteQuote)
	})

	return r
}

func (h *handler) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (h *handler) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.app.State.State())
}

func (h *handler) handleView(w http.ResponseWriter, r *http.Request) {
	h.writeView(w, http.StatusOK, "server.handleView")
}

type eventRequest struct {
	Topic   events.Topic    `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

func (h *handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvent"

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondDecodeError(w, err, op)
		return
	}
	payload, err := events.DecodePayload(req.Topic, req.Payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	if err := h.app.Bus.Publish(req.Topic, payload); err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	h.writeView(w, http.StatusOK, op)
}

func (h *handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportCSV"

	var buf bytes.Buffer
	if err := h.app.Workflow.ExportCSV(&buf, wantCosts(r)); err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="quote.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write csv response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := h.app.Workflow.ExportXLSX(wantCosts(r))
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), "server.handleExportXLSX")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="quote.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write xlsx response",
			zap.String("op", "server.handleExportXLSX"),
			zap.Error(err),
		)
	}
}

func (h *handler) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	if h.app.Store == nil {
		h.respondErrorWithOp(w, http.StatusNotImplemented, app.ErrNoStore.Error(), "server.handleListQuotes")
		return
	}
	records, err := h.app.Store.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleListQuotes")
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

type saveRequest struct {
	Name string `json:"name"`
}

func (h *handler) handleSaveQuote(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveQuote"

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondDecodeError(w, err, op)
		return
	}
	rec, err := h.app.Workflow.Save(r.Context(), req.Name)
	if err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusCreated, rec)
}

func (h *handler) handleLoadQuote(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLoadQuote"
	if _, err := h.app.Workflow.Load(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	h.writeView(w, http.StatusOK, op)
}

func (h *handler) handleDeleteQuote(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteQuote"
	if h.app.Store == nil {
		h.respondErrorWithOp(w, http.StatusNotImplemented, app.ErrNoStore.Error(), op)
		return
	}
	if err := h.app.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) writeView(w http.ResponseWriter, status int, op string) {
	vm, err := h.app.Render()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, status, vm)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var (
		stateErr *quote.StateError
		maxErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &stateErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrNoStore):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (h *handler) respondDecodeError(w http.ResponseWriter, err error, op string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func wantCosts(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("costs"))
	return err == nil && v
}

// ListenAndServe runs the editor API until ctx is cancelled, then shuts the
// server down gracefully.
func ListenAndServe(ctx context.Context, cfg *Config, h http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("editor API listening",
			zap.String("op", "server.ListenAndServe"),
			zap.String("address", cfg.Address),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("editor API shutting down",
			zap.String("op", "server.ListenAndServe"),
		)
		return srv.Shutdown(shutdownCtx)
	}
}
