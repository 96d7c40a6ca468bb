// Package audit records security-relevant events (logins, portfolio
// mutations, image changes) to an append-only store. Recording is
// best-effort and fire-and-forget: it never blocks the caller's path and
// never surfaces an error to it. A circuit breaker stops hammering the
// store when it is down, and a permanent latch disables the emitter for
// the rest of the process once the schema is known to be absent.
package audit

import "time"

// --- Action Constants ---
// Action strings follow "resource.verb" for consistent filtering.

const (
	// ActionLoginSuccess is logged when the admin authenticates.
	ActionLoginSuccess = "admin.login.success"

	// ActionLoginFailure is logged on a failed admin login attempt.
	ActionLoginFailure = "admin.login.failure"

	// ActionLogout is logged when the admin session is cleared.
	ActionLogout = "admin.logout"

	// ActionPortfolioCreate is logged when a portfolio item is created.
	ActionPortfolioCreate = "portfolio.create"

	// ActionPortfolioUpdate is logged when a portfolio item is updated.
	ActionPortfolioUpdate = "portfolio.update"

	// ActionPortfolioDelete is logged when a portfolio item is deleted.
	ActionPortfolioDelete = "portfolio.delete"

	// ActionImageUpload is logged when a portfolio image is uploaded.
	ActionImageUpload = "image.upload"

	// ActionImageDelete is logged when a portfolio image is deleted.
	ActionImageDelete = "image.delete"
)

// maxUserAgentLen caps the stored user-agent string.
const maxUserAgentLen = 200

// Entry is one audit log record.
type Entry struct {
	ID         int64          `json:"id"`
	Action     string         `json:"action"`
	ResourceID string         `json:"resource_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
