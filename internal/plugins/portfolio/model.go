// Package portfolio manages the agency's case study entries: public
// listing for the SPA and authenticated CRUD for the admin panel. Input
// crosses the validate and sanitize layers before any SQL runs.
package portfolio

import (
	"time"

	"github.com/sigstudio/sigsite/internal/validate"
)

// Item is one portfolio entry. The embedded validated shape carries the
// SPA-facing fields; the rest is server-side metadata.
type Item struct {
	validate.PortfolioItem

	ID        int64     `json:"id"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListOptions controls listing queries.
type ListOptions struct {
	// IncludeUnpublished is set for admin listings only.
	IncludeUnpublished bool

	// Category filters by exact category when non-empty.
	Category string
}

// UpdateInput is the payload for updating an item. Published is a pointer
// so "not sent" and "set to false" are distinguishable.
type UpdateInput struct {
	validate.PortfolioItem

	Published *bool `json:"published"`
}
