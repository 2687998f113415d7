// Package store keeps named quote snapshots in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/blind-quote/internal/quote"
	"github.com/iwvelando/blind-quote/internal/quotefile"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no saved quote has the requested ID.
var ErrNotFound = errors.New("quote not found")

// Record describes one saved quote without its document.
type Record struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Customer   string    `json:"customer"`
	GrandTotal float64   `json:"grandTotal"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SaveRequest is a snapshot to store. An empty ID creates a new record;
// an existing ID overwrites that record.
type SaveRequest struct {
	ID         string
	Name       string
	GrandTotal float64
	Data       quote.QuoteData
}

// Store is a SQLite-backed quote archive.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
// If logger is nil, it will use a no-op logger to prevent panics.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and writes serialised.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if err := migrate(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("quote store opened",
		zap.String("op", "store.Open"),
		zap.String("path", path),
	)
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores req and returns its record.
func (s *Store) Save(ctx context.Context, req SaveRequest) (Record, error) {
	doc, err := quotefile.Marshal(req.Data)
	if err != nil {
		return Record{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.Data.Customer.Name
	}
	if name == "" {
		name = "Untitled quote"
	}

	now := s.now().UTC()
	rec := Record{
		ID:         req.ID,
		Name:       name,
		Customer:   req.Data.Customer.Name,
		GrandTotal: req.GrandTotal,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO quotes (id, name, customer, grand_total, document, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Name, rec.Customer, rec.GrandTotal, string(doc), formatTime(now), formatTime(now))
		if err != nil {
			return Record{}, fmt.Errorf("insert quote: %w", err)
		}
	} else {
		res, err := s.db.ExecContext(ctx, `
			UPDATE quotes SET name = ?, customer = ?, grand_total = ?, document = ?, updated_at = ?
			WHERE id = ?`,
			rec.Name, rec.Customer, rec.GrandTotal, string(doc), formatTime(now), rec.ID)
		if err != nil {
			return Record{}, fmt.Errorf("update quote %s: %w", rec.ID, err)
		}
		if err := requireRow(res, rec.ID); err != nil {
			return Record{}, err
		}
		var created string
		if err := s.db.QueryRowContext(ctx, `SELECT created_at FROM quotes WHERE id = ?`, rec.ID).Scan(&created); err != nil {
			return Record{}, fmt.Errorf("read quote %s: %w", rec.ID, err)
		}
		if rec.CreatedAt, err = parseTime(created); err != nil {
			return Record{}, err
		}
	}

	s.logger.Info("quote saved",
		zap.String("op", "store.Save"),
		zap.String("id", rec.ID),
		zap.String("name", rec.Name),
	)
	return rec, nil
}

// Load returns the quote data and record stored under id.
func (s *Store) Load(ctx context.Context, id string) (quote.QuoteData, Record, error) {
	var (
		rec              Record
		doc              string
		created, updated string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, customer, grand_total, document, created_at, updated_at
		FROM quotes WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Name, &rec.Customer, &rec.GrandTotal, &doc, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return quote.QuoteData{}, Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return quote.QuoteData{}, Record{}, fmt.Errorf("read quote %s: %w", id, err)
	}
	if err := rec.setTimes(created, updated); err != nil {
		return quote.QuoteData{}, Record{}, err
	}

	data, err := quotefile.Unmarshal([]byte(doc))
	if err != nil {
		return quote.QuoteData{}, Record{}, fmt.Errorf("quote %s: %w", id, err)
	}
	return data, rec, nil
}

// likeEscaper makes user text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// List returns saved quotes, most recently updated first. A non-empty filter
// matches name or customer, case-insensitively.
func (s *Store) List(ctx context.Context, filter string) ([]Record, error) {
	query := `SELECT id, name, customer, grand_total, created_at, updated_at FROM quotes`
	var args []interface{}
	if filter = strings.TrimSpace(filter); filter != "" {
		query += ` WHERE name LIKE ? ESCAPE '\' OR customer LIKE ? ESCAPE '\'`
		pattern := "%" + likeEscaper.Replace(filter) + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY updated_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			rec              Record
			created, updated string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Customer, &rec.GrandTotal, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		if err := rec.setTimes(created, updated); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	return records, nil
}

// Delete removes the quote stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete quote %s: %w", id, err)
	}
	if err := requireRow(res, id); err != nil {
		return err
	}
	s.logger.Info("quote deleted",
		zap.String("op", "store.Delete"),
		zap.String("id", id),
	)
	return nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("quote %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (r *Record) setTimes(created, updated string) error {
	var err error
	if r.CreatedAt, err = parseTime(created); err != nil {
		return err
	}
	r.UpdatedAt, err = parseTime(updated)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}
