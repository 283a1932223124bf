package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tayloree/bonuscli/internal/bonus"
)

// Decode reads a bonus export and returns its fragments flattened in key
// order. Trailing JSON after the document is an error.
func Decode(r io.Reader) ([]bonus.Fragment, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}
	if err := dec.Decode(new(struct{})); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding feed: trailing JSON content")
	}
	return doc.Fragments(), nil
}

// DecodeLenient is Decode for callers that treat a broken feed as an empty
// one. The decode error is logged at warn level.
func DecodeLenient(raw []byte, logger *slog.Logger) []bonus.Fragment {
	if logger == nil {
		logger = slog.Default()
	}
	fragments, err := Decode(bytes.NewReader(raw))
	if err != nil {
		logger.Warn("ignoring malformed bonus feed", "error", err, "bytes", len(raw))
		return nil
	}
	return fragments
}

// ParseDocument decodes raw leniently and reconstructs its offers.
func ParseDocument(raw []byte, logger *slog.Logger) []bonus.Offer {
	fragments := DecodeLenient(raw, logger)
	return bonus.ParseOffersWith(fragments, bonus.ParseOptions{Logger: logger})
}
