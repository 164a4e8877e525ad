package domain

import "context"

// ContentSource returns the candidate labels for a country/category key.
type ContentSource interface {
	Names(ctx context.Context, country string) ([]string, error)
}
