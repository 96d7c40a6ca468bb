package portfolio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sigstudio/sigsite/internal/apperror"
	"github.com/sigstudio/sigsite/internal/plugins/audit"
	"github.com/sigstudio/sigsite/internal/sanitize"
	"github.com/sigstudio/sigsite/internal/validate"
)

// Service handles business logic for portfolio operations: slug
// canonicalization, validation, sanitization, and audit trail.
type Service interface {
	Create(ctx context.Context, input validate.PortfolioItem, userAgent string) (*Item, error)
	Update(ctx context.Context, id int64, input UpdateInput, userAgent string) (*Item, error)
	Delete(ctx context.Context, id int64, userAgent string) error
	GetBySlug(ctx context.Context, slug string, includeUnpublished bool) (*Item, error)
	List(ctx context.Context, opts ListOptions) ([]Item, error)
}

// service implements Service.
type service struct {
	repo  Repository
	audit *audit.Emitter
}

// NewService creates a portfolio service with the given dependencies.
func NewService(repo Repository, emitter *audit.Emitter) Service {
	return &service{repo: repo, audit: emitter}
}

// Create validates, sanitizes, and persists a new portfolio item. New
// items start unpublished.
func (s *service) Create(ctx context.Context, input validate.PortfolioItem, userAgent string) (*Item, error) {
	item := &Item{PortfolioItem: input}

	if err := s.prepare(ctx, item); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating portfolio item: %w", err))
	}

	s.audit.Log(audit.Event{
		Action:     audit.ActionPortfolioCreate,
		ResourceID: item.Slug,
		UserAgent:  userAgent,
	})
	slog.Info("portfolio item created", slog.String("slug", item.Slug))
	return item, nil
}

// Update validates, sanitizes, and rewrites an existing item. A nil
// Published in the input leaves the current published state alone.
func (s *service) Update(ctx context.Context, id int64, input UpdateInput, userAgent string) (*Item, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item := &Item{
		PortfolioItem: input.PortfolioItem,
		ID:            id,
		Published:     existing.Published,
	}
	if input.Published != nil {
		item.Published = *input.Published
	}

	if err := s.prepare(ctx, item); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.audit.Log(audit.Event{
		Action:     audit.ActionPortfolioUpdate,
		ResourceID: item.Slug,
		UserAgent:  userAgent,
	})
	return item, nil
}

// Delete removes an item and audits the removal under its slug.
func (s *service) Delete(ctx context.Context, id int64, userAgent string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Log(audit.Event{
		Action:     audit.ActionPortfolioDelete,
		ResourceID: existing.Slug,
		UserAgent:  userAgent,
	})
	slog.Info("portfolio item deleted", slog.String("slug", existing.Slug))
	return nil
}

// GetBySlug returns one item. Unpublished items require includeUnpublished.
func (s *service) GetBySlug(ctx context.Context, slug string, includeUnpublished bool) (*Item, error) {
	return s.repo.FindBySlug(ctx, sanitize.Slug(slug), includeUnpublished)
}

// List returns items for the public site or the admin panel.
func (s *service) List(ctx context.Context, opts ListOptions) ([]Item, error) {
	items, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// prepare runs the shared write path: slug canonicalization, structural
// validation, uniqueness, and sanitization. Validation runs before any
// repository call so rejected input (including unsafe live URLs) never
// touches SQL.
func (s *service) prepare(ctx context.Context, item *Item) error {
	if item.Slug == "" {
		item.Slug = sanitize.Slug(item.Title)
	} else {
		item.Slug = sanitize.Slug(item.Slug)
	}

	if result := validate.ValidatePortfolioItem(&item.PortfolioItem); !result.Valid {
		return apperror.NewValidationFields(result.Errors)
	}

	exists, err := s.repo.SlugExists(ctx, item.Slug, item.ID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if exists {
		return apperror.NewConflict("a portfolio item with this slug already exists")
	}

	sanitizeItem(&item.PortfolioItem)
	return nil
}

// sanitizeItem strips markup from plain-text fields and reduces rich-text
// fields to the allowed formatting subset.
func sanitizeItem(item *validate.PortfolioItem) {
	item.Title = sanitize.Text(item.Title)
	item.Client = sanitize.Text(item.Client)
	item.Category = sanitize.Text(item.Category)
	item.Tagline = sanitize.Text(item.Tagline)
	item.Role = sanitize.Text(item.Role)
	item.Duration = sanitize.Text(item.Duration)
	item.NextProject = sanitize.Text(item.NextProject)

	item.Description = sanitize.HTML(item.Description)
	item.Challenge = sanitize.HTML(item.Challenge)
	item.Solution = sanitize.HTML(item.Solution)

	for i, tag := range item.Tags {
		item.Tags[i] = sanitize.Text(tag)
	}
}
