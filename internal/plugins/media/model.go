// Package media manages portfolio image uploads, storage, and serving.
// Supports image uploads with automatic thumbnail generation at multiple
// sizes. Files are stored on the local filesystem in a date-based
// directory structure; portfolio items reference them by path.
package media

import (
	"path/filepath"
	"time"
)

// File represents an uploaded image stored on disk.
type File struct {
	ID             string            `json:"id"`
	Filename       string            `json:"filename"`     // UUID-based filename on disk.
	OriginalName   string            `json:"originalName"` // Admin's original filename.
	MimeType       string            `json:"mimeType"`
	FileSize       int64             `json:"fileSize"`
	ThumbnailPaths map[string]string `json:"thumbnailPaths"` // size -> filename (e.g., "300" -> "uuid_300.jpg").
	CreatedAt      time.Time         `json:"createdAt"`
}

// UploadInput holds the validated input for storing an image.
type UploadInput struct {
	OriginalName string
	MimeType     string
	FileSize     int64
	FileBytes    []byte
}

// UploadResponse is the JSON response returned after a successful upload.
type UploadResponse struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	MimeType     string `json:"mimeType"`
	FileSize     int64  `json:"fileSize"`
}

// --- MIME Type Validation ---

// AllowedMimeTypes defines which MIME types are accepted for upload.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// MimeToExtension maps MIME types to file extensions.
var MimeToExtension = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Extension returns the file extension for this media file.
func (f *File) Extension() string {
	if ext, ok := MimeToExtension[f.MimeType]; ok {
		return ext
	}
	return filepath.Ext(f.OriginalName)
}
