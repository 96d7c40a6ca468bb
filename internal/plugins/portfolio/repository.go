package portfolio

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sigstudio/sigsite/internal/apperror"
)

// Repository defines the data access contract for portfolio items. All SQL
// lives in the concrete implementation.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Item, error)
	FindBySlug(ctx context.Context, slug string, includeUnpublished bool) (*Item, error)
	List(ctx context.Context, opts ListOptions) ([]Item, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// repository implements Repository with MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a portfolio repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// itemColumns is the column list shared by every SELECT, in scanItem order.
const itemColumns = `id, slug, title, client, category, year, tagline, description,
	challenge, solution, role, duration, live_url, next_project, thumbnail,
	hero_image, tags, gallery, featured, sort_order, published, created_at, updated_at`

// Create inserts a new portfolio item row.
func (r *repository) Create(ctx context.Context, item *Item) error {
	tagsJSON, galleryJSON, err := marshalLists(item)
	if err != nil {
		return err
	}

	query := `INSERT INTO portfolio_items
	          (slug, title, client, category, year, tagline, description, challenge,
	           solution, role, duration, live_url, next_project, thumbnail, hero_image,
	           tags, gallery, featured, sort_order, published)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		item.Slug, item.Title, item.Client, item.Category, item.Year,
		nullable(item.Tagline), item.Description, nullable(item.Challenge),
		nullable(item.Solution), nullable(item.Role), nullable(item.Duration),
		nullable(item.LiveURL), nullable(item.NextProject), nullable(item.Thumbnail),
		nullable(item.HeroImage), tagsJSON, galleryJSON,
		item.Featured, item.Order, item.Published,
	)
	if err != nil {
		return fmt.Errorf("inserting portfolio item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting portfolio item id: %w", err)
	}
	item.ID = id
	return nil
}

// Update rewrites every mutable column of an existing item.
func (r *repository) Update(ctx context.Context, item *Item) error {
	tagsJSON, galleryJSON, err := marshalLists(item)
	if err != nil {
		return err
	}

	query := `UPDATE portfolio_items SET
	          slug = ?, title = ?, client = ?, category = ?, year = ?, tagline = ?,
	          description = ?, challenge = ?, solution = ?, role = ?, duration = ?,
	          live_url = ?, next_project = ?, thumbnail = ?, hero_image = ?,
	          tags = ?, gallery = ?, featured = ?, sort_order = ?, published = ?
	          WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		item.Slug, item.Title, item.Client, item.Category, item.Year,
		nullable(item.Tagline), item.Description, nullable(item.Challenge),
		nullable(item.Solution), nullable(item.Role), nullable(item.Duration),
		nullable(item.LiveURL), nullable(item.NextProject), nullable(item.Thumbnail),
		nullable(item.HeroImage), tagsJSON, galleryJSON,
		item.Featured, item.Order, item.Published,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating portfolio item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		// RowsAffected is also 0 for a no-op update, so confirm absence.
		if _, findErr := r.FindByID(ctx, item.ID); findErr != nil {
			return findErr
		}
	}
	return nil
}

// Delete removes a portfolio item by id.
func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM portfolio_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting portfolio item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return apperror.NewNotFound("portfolio item not found")
	}
	return nil
}

// FindByID retrieves an item by its auto-increment id.
func (r *repository) FindByID(ctx context.Context, id int64) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM portfolio_items WHERE id = ?`
	return scanItem(r.db.QueryRowContext(ctx, query, id))
}

// FindBySlug retrieves an item by slug. Unpublished items are invisible
// unless includeUnpublished is set (admin reads).
func (r *repository) FindBySlug(ctx context.Context, slug string, includeUnpublished bool) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM portfolio_items WHERE slug = ?`
	if !includeUnpublished {
		query += ` AND published = 1`
	}
	return scanItem(r.db.QueryRowContext(ctx, query, slug))
}

// List returns items ordered by sort_order then recency.
func (r *repository) List(ctx context.Context, opts ListOptions) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM portfolio_items`
	var conds []string
	var args []any

	if !opts.IncludeUnpublished {
		conds = append(conds, "published = 1")
	}
	if opts.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, opts.Category)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY sort_order ASC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing portfolio items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating portfolio items: %w", err)
	}
	return items, nil
}

// SlugExists reports whether another item already owns the slug.
// excludeID skips the item being updated.
func (r *repository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM portfolio_items WHERE slug = ? AND id != ?`,
		slug, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking slug existence: %w", err)
	}
	return count > 0, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanItem.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem reads one portfolio row in itemColumns order.
func scanItem(row rowScanner) (*Item, error) {
	var (
		item        Item
		tagline     sql.NullString
		challenge   sql.NullString
		solution    sql.NullString
		role        sql.NullString
		duration    sql.NullString
		liveURL     sql.NullString
		nextProject sql.NullString
		thumbnail   sql.NullString
		heroImage   sql.NullString
		tagsRaw     []byte
		galleryRaw  []byte
	)

	err := row.Scan(
		&item.ID, &item.Slug, &item.Title, &item.Client, &item.Category,
		&item.Year, &tagline, &item.Description, &challenge, &solution,
		&role, &duration, &liveURL, &nextProject, &thumbnail, &heroImage,
		&tagsRaw, &galleryRaw, &item.Featured, &item.Order, &item.Published,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("portfolio item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning portfolio item: %w", err)
	}

	item.Tagline = tagline.String
	item.Challenge = challenge.String
	item.Solution = solution.String
	item.Role = role.String
	item.Duration = duration.String
	item.LiveURL = liveURL.String
	item.NextProject = nextProject.String
	item.Thumbnail = thumbnail.String
	item.HeroImage = heroImage.String

	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &item.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling portfolio tags: %w", err)
		}
	}
	if len(galleryRaw) > 0 {
		if err := json.Unmarshal(galleryRaw, &item.Gallery); err != nil {
			return nil, fmt.Errorf("unmarshaling portfolio gallery: %w", err)
		}
	}
	return &item, nil
}

// marshalLists serializes the JSON columns.
func marshalLists(item *Item) ([]byte, []byte, error) {
	tagsJSON, err := json.Marshal(item.Tags)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling tags: %w", err)
	}
	galleryJSON, err := json.Marshal(item.Gallery)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling gallery: %w", err)
	}
	return tagsJSON, galleryJSON, nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
