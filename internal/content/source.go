package content

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
)

const DefaultCountry = "world"

var allowedCountries = []string{"france", "world"}

//go:embed countries/*.json
var countryFiles embed.FS

// NormalizeCountry maps a requested country to an allowed one, falling back to
// DefaultCountry for empty or unknown values.
func NormalizeCountry(country string) string {
	c := strings.ToLower(strings.TrimSpace(country))
	if slices.Contains(allowedCountries, c) {
		return c
	}
	return DefaultCountry
}

// EmbeddedSource serves the name lists compiled into the binary.
type EmbeddedSource struct {
	files fs.FS
}

func NewEmbeddedSource() *EmbeddedSource {
	return &EmbeddedSource{files: countryFiles}
}

func (s *EmbeddedSource) Names(_ context.Context, country string) ([]string, error) {
	data, err := fs.ReadFile(s.files, "countries/"+country+".json")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCountry, country)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read names for %s: %w", country, err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to decode names for %s: %w", country, err)
	}
	return names, nil
}

// Chain asks each source in order and returns the first non-empty list. A source
// that fails, reports ErrUnknownCountry or has an empty list passes to the next one.
// When no source has names, the first failure is returned, or ErrUnknownCountry if
// every source simply had none.
type Chain []domain.ContentSource

func (c Chain) Names(ctx context.Context, country string) ([]string, error) {
	var firstErr error
	for i, src := range c {
		names, err := src.Names(ctx, country)
		if errors.Is(err, domain.ErrUnknownCountry) {
			continue
		}
		if err != nil {
			slog.WarnContext(ctx, "Name source failed, trying next", "country", country, "source", i, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(names) > 0 {
			return names, nil
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCountry, country)
}
