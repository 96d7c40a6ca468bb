package contact

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sigstudio/sigsite/internal/apperror"
)

// Repository defines the data access contract for contact messages.
type Repository interface {
	Create(ctx context.Context, msg *Message) error
	List(ctx context.Context, status string, limit, offset int) ([]Message, int, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// repository implements Repository with MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a contact repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new contact message with status "new".
func (r *repository) Create(ctx context.Context, msg *Message) error {
	servicesJSON, err := json.Marshal(msg.Services)
	if err != nil {
		return fmt.Errorf("marshaling services: %w", err)
	}

	query := `INSERT INTO contact_messages (name, company, email, phone, message, services, budget, status)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		msg.Name, nullable(msg.Company), msg.Email, nullable(msg.Phone),
		msg.Message, servicesJSON, nullable(msg.Budget), StatusNew,
	)
	if err != nil {
		return fmt.Errorf("inserting contact message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting contact message id: %w", err)
	}
	msg.ID = id
	msg.Status = StatusNew
	return nil
}

// List returns messages newest first, optionally filtered by status, plus
// the total count for the filter.
func (r *repository) List(ctx context.Context, status string, limit, offset int) ([]Message, int, error) {
	countQuery := `SELECT COUNT(*) FROM contact_messages`
	query := `SELECT id, name, company, email, phone, message, services, budget, status, created_at
	          FROM contact_messages`
	var countArgs, args []any

	if status != "" {
		countQuery += ` WHERE status = ?`
		query += ` WHERE status = ?`
		countArgs = append(countArgs, status)
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting contact messages: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing contact messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var (
			m           Message
			company     sql.NullString
			phone       sql.NullString
			servicesRaw []byte
			budget      sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Name, &company, &m.Email, &phone,
			&m.Message, &servicesRaw, &budget, &m.Status, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning contact message: %w", err)
		}
		m.Company = company.String
		m.Phone = phone.String
		m.Budget = budget.String
		if len(servicesRaw) > 0 {
			_ = json.Unmarshal(servicesRaw, &m.Services)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating contact messages: %w", err)
	}

	return messages, total, nil
}

// UpdateStatus moves a message between triage states.
func (r *repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contact_messages SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating contact message status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return r.confirmExists(ctx, id)
	}
	return nil
}

// confirmExists distinguishes a no-op update from a missing row.
func (r *repository) confirmExists(ctx context.Context, id int64) error {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contact_messages WHERE id = ?`, id).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking contact message: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("contact message not found")
	}
	return nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
