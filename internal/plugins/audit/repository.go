package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// ErrSchemaMissing marks a write that failed because the audit_logs table
// does not exist. The emitter latches off permanently when it sees this;
// retrying cannot succeed until an operator runs migrations.
var ErrSchemaMissing = errors.New("audit: table does not exist")

// Repository defines the data access contract for the audit log. All SQL
// lives in the concrete implementation.
type Repository interface {
	// Insert appends one entry. Returns ErrSchemaMissing (possibly
	// wrapped) when the table is absent.
	Insert(ctx context.Context, entry *Entry) error

	// ListRecent returns entries most recent first plus the total count.
	ListRecent(ctx context.Context, limit, offset int) ([]Entry, int, error)
}

// repository implements Repository with MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// mysqlErrNoSuchTable is the MySQL/MariaDB error number for a missing
// table ("Table 'x.y' doesn't exist").
const mysqlErrNoSuchTable = 1146

// Insert appends one audit entry. The details map is serialized to JSON;
// nil details are stored as SQL NULL.
func (r *repository) Insert(ctx context.Context, entry *Entry) error {
	query := `INSERT INTO audit_logs (action, resource_id, details, user_agent, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	var detailsJSON []byte
	if entry.Details != nil {
		var err error
		detailsJSON, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshaling audit details: %w", err)
		}
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, query,
		entry.Action, nullable(entry.ResourceID), detailsJSON,
		nullable(entry.UserAgent), entry.CreatedAt,
	)
	if err != nil {
		if isSchemaMissing(err) {
			return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
		}
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// ListRecent returns audit entries ordered newest first.
func (r *repository) ListRecent(ctx context.Context, limit, offset int) ([]Entry, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting audit entries: %w", err)
	}

	query := `SELECT id, action, resource_id, details, user_agent, created_at
	          FROM audit_logs
	          ORDER BY created_at DESC, id DESC
	          LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			resourceID  sql.NullString
			detailsJSON []byte
			userAgent   sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Action, &resourceID, &detailsJSON, &userAgent, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.ResourceID = resourceID.String
		e.UserAgent = userAgent.String
		if len(detailsJSON) > 0 {
			// Unreadable details are dropped, not fatal.
			_ = json.Unmarshal(detailsJSON, &e.Details)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating audit entries: %w", err)
	}

	return entries, total, nil
}

// isSchemaMissing reports whether err is the driver's missing-table error.
func isSchemaMissing(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrNoSuchTable
	}
	return strings.Contains(err.Error(), "doesn't exist")
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
