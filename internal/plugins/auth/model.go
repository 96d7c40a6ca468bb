// Package auth implements the single-admin authentication flow: password
// login gated by the per-scope rate limiter, session issuance, CSRF token
// rotation, and logout. The site has exactly one admin identity, so there
// is no user table; the credential is an argon2id hash from configuration.
package auth

// LoginRequest is the JSON body of POST /api/admin/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse is returned on successful login. The SPA stores the CSRF
// token in memory and echoes it in the X-CSRF-Token header on mutations.
type LoginResponse struct {
	CSRFToken string `json:"csrfToken"`
	// ExpiresIn is the session lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

// SessionStatus is returned by GET /api/admin/session so the SPA can
// restore its auth state after a reload.
type SessionStatus struct {
	Authenticated bool   `json:"authenticated"`
	CSRFToken     string `json:"csrfToken,omitempty"`
}
