// Package quotefile reads and writes saved quotes as YAML documents.
package quotefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iwvelando/blind-quote/internal/quote"
	"gopkg.in/yaml.v3"
)

// Version is the document layout written by Save.
const Version = 1

// Document is the on-disk layout of a saved quote. Only quote data is
// persisted; panel inputs are session state.
type Document struct {
	Version   int             `yaml:"version"`
	QuoteData quote.QuoteData `yaml:"quoteData"`
}

// ErrUnsupportedVersion is returned for documents written by a newer layout.
var ErrUnsupportedVersion = errors.New("unsupported quote file version")

// Save writes data to w as a YAML document.
func Save(w io.Writer, data quote.QuoteData) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Document{Version: Version, QuoteData: data}); err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush quote: %w", err)
	}
	return nil
}

// Marshal returns data encoded as a YAML document.
func Marshal(data quote.QuoteData) ([]byte, error) {
	var buf bytes.Buffer
	if err := Save(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads a YAML quote document from r. A document without a version
// field is read as the current layout.
func Load(r io.Reader) (quote.QuoteData, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return quote.QuoteData{}, fmt.Errorf("failed to decode quote: empty document")
		}
		return quote.QuoteData{}, fmt.Errorf("failed to decode quote: %w", err)
	}
	if doc.Version > Version {
		return quote.QuoteData{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	if doc.QuoteData.Products == nil {
		doc.QuoteData.Products = map[string]quote.ProductData{}
	}
	return doc.QuoteData, nil
}

// Unmarshal decodes a YAML quote document.
func Unmarshal(data []byte) (quote.QuoteData, error) {
	return Load(bytes.NewReader(data))
}

// SaveFile writes data to path, replacing any existing file.
func SaveFile(path string, data quote.QuoteData) error {
	out, err := Marshal(data)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a quote document from path.
func LoadFile(path string) (quote.QuoteData, error) {
	f, err := os.Open(path)
	if err != nil {
		return quote.QuoteData{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	data, err := Load(f)
	if err != nil {
		return quote.QuoteData{}, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}
