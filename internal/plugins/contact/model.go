// Package contact accepts inquiry submissions from the public site.
// Submissions are validated and sanitized before storage; admins read and
// triage them through the admin API.
package contact

import (
	"time"

	"github.com/sigstudio/sigsite/internal/validate"
)

// Message statuses for admin triage.
const (
	StatusNew      = "new"
	StatusRead     = "read"
	StatusArchived = "archived"
)

// Message is one stored contact submission.
type Message struct {
	validate.ContactMessage

	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
