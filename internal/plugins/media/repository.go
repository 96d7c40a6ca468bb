package media

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sigstudio/sigsite/internal/apperror"
)

// StorageStats holds aggregate storage statistics for the admin dashboard.
type StorageStats struct {
	TotalFiles int   `json:"totalFiles"`
	TotalBytes int64 `json:"totalBytes"`
}

// Repository defines the data access contract for media file records.
type Repository interface {
	Create(ctx context.Context, file *File) error
	FindByID(ctx context.Context, id string) (*File, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]File, int, error)
	GetStorageStats(ctx context.Context) (*StorageStats, error)
}

// repository implements Repository with MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a media repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new media file record.
func (r *repository) Create(ctx context.Context, file *File) error {
	thumbJSON, err := json.Marshal(file.ThumbnailPaths)
	if err != nil {
		return fmt.Errorf("marshaling thumbnail paths: %w", err)
	}

	query := `INSERT INTO media_files (id, filename, original_name, mime_type, file_size, thumbnail_paths, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		file.ID, file.Filename, file.OriginalName, file.MimeType,
		file.FileSize, string(thumbJSON), file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting media file: %w", err)
	}
	return nil
}

// FindByID retrieves a media file by its UUID.
func (r *repository) FindByID(ctx context.Context, id string) (*File, error) {
	query := `SELECT id, filename, original_name, mime_type, file_size, thumbnail_paths, created_at
	          FROM media_files WHERE id = ?`

	file := &File{}
	var thumbJSON string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&file.ID, &file.Filename, &file.OriginalName,
		&file.MimeType, &file.FileSize, &thumbJSON, &file.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("media file not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying media file by id: %w", err)
	}

	file.ThumbnailPaths = make(map[string]string)
	if thumbJSON != "" && thumbJSON != "{}" {
		if err := json.Unmarshal([]byte(thumbJSON), &file.ThumbnailPaths); err != nil {
			return nil, fmt.Errorf("unmarshaling thumbnail paths: %w", err)
		}
	}
	return file, nil
}

// Delete removes a media file record.
func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM media_files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting media file: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NewNotFound("media file not found")
	}
	return nil
}

// List returns media files with pagination, most recent first.
func (r *repository) List(ctx context.Context, limit, offset int) ([]File, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_files`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting media files: %w", err)
	}

	query := `SELECT id, filename, original_name, mime_type, file_size, thumbnail_paths, created_at
	          FROM media_files ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing media files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		var thumbJSON string
		if err := rows.Scan(&f.ID, &f.Filename, &f.OriginalName,
			&f.MimeType, &f.FileSize, &thumbJSON, &f.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning media file row: %w", err)
		}
		f.ThumbnailPaths = make(map[string]string)
		if thumbJSON != "" && thumbJSON != "{}" {
			if err := json.Unmarshal([]byte(thumbJSON), &f.ThumbnailPaths); err != nil {
				return nil, 0, fmt.Errorf("unmarshaling thumbnail paths: %w", err)
			}
		}
		files = append(files, f)
	}
	return files, total, rows.Err()
}

// GetStorageStats returns aggregate storage statistics across all media files.
func (r *repository) GetStorageStats(ctx context.Context) (*StorageStats, error) {
	stats := &StorageStats{}
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(file_size), 0) FROM media_files`,
	).Scan(&stats.TotalFiles, &stats.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("querying storage totals: %w", err)
	}
	return stats, nil
}
