package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/sigstudio/sigsite/internal/apperror"
	"github.com/sigstudio/sigsite/internal/config"
	"github.com/sigstudio/sigsite/internal/plugins/audit"
	"github.com/sigstudio/sigsite/internal/security"
	"github.com/sigstudio/sigsite/internal/security/session"
	"github.com/sigstudio/sigsite/internal/validate"
)

// AuthService defines the business logic contract for admin authentication.
// Handlers call these methods -- they never touch the security managers
// directly.
type AuthService interface {
	Login(ctx context.Context, scope security.Scope, password, userAgent string) (*LoginResponse, error)
	Logout(ctx context.Context, scope security.Scope, userAgent string) error
	Status(ctx context.Context, scope security.Scope) SessionStatus
}

// authService implements AuthService against the per-scope security
// managers. The rate limiter is consulted before the password is checked
// so a locked scope never reaches the argon2 work.
type authService struct {
	cfg     config.AdminConfig
	devMode bool
	audit   *audit.Emitter
}

// NewAuthService creates a new auth service. devMode permits the plaintext
// dev password when no hash is configured; config.Load rejects that
// combination in production.
func NewAuthService(cfg config.AdminConfig, devMode bool, emitter *audit.Emitter) AuthService {
	return &authService{cfg: cfg, devMode: devMode, audit: emitter}
}

// Login checks the rate limiter, verifies the password, and on success
// issues a session, resets the limiter, and rotates the CSRF token. Every
// outcome is audited.
func (s *authService) Login(ctx context.Context, scope security.Scope, password, userAgent string) (*LoginResponse, error) {
	// Shape check before any limiter or argon2 work: a missing or
	// oversized password is a malformed request, not a failed attempt.
	if result := validate.ValidateLogin(&validate.Login{Password: password}); !result.Valid {
		return nil, apperror.NewValidationFields(result.Errors)
	}

	status := scope.Limiter.Status(ctx)
	if status.Limited {
		s.audit.Log(audit.Event{
			Action:    audit.ActionLoginFailure,
			UserAgent: userAgent,
			Details:   map[string]any{"reason": "locked_out"},
		})
		return nil, apperror.NewTooManyRequests(lockedMessage(status.Remaining))
	}

	if !s.verify(password) {
		attempt := scope.Limiter.RecordAttempt(ctx)
		s.audit.Log(audit.Event{
			Action:    audit.ActionLoginFailure,
			UserAgent: userAgent,
			Details: map[string]any{
				"reason":            "bad_password",
				"remainingAttempts": attempt.RemainingAttempts,
			},
		})

		if !attempt.LockedUntil.IsZero() {
			return nil, apperror.NewTooManyRequests(lockedMessage(time.Until(attempt.LockedUntil)))
		}
		return nil, apperror.NewUnauthorized(fmt.Sprintf(
			"Invalid password. %d attempts remaining.", attempt.RemainingAttempts))
	}

	if err := scope.Sessions.Create(ctx); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating session: %w", err))
	}
	scope.Limiter.Reset(ctx)

	token, err := scope.CSRF.Rotate(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("rotating csrf token: %w", err))
	}

	s.audit.Log(audit.Event{
		Action:    audit.ActionLoginSuccess,
		UserAgent: userAgent,
	})
	slog.Info("admin logged in")

	return &LoginResponse{
		CSRFToken: token,
		ExpiresIn: int64(session.TTL.Seconds()),
	}, nil
}

// Logout tears down the session and rotates the CSRF token so the old one
// is useless to anything that captured it.
func (s *authService) Logout(ctx context.Context, scope security.Scope, userAgent string) error {
	if err := scope.Sessions.Clear(ctx); err != nil {
		return apperror.NewInternal(fmt.Errorf("clearing session: %w", err))
	}
	if _, err := scope.CSRF.Rotate(ctx); err != nil {
		return apperror.NewInternal(fmt.Errorf("rotating csrf token: %w", err))
	}

	s.audit.Log(audit.Event{
		Action:    audit.ActionLogout,
		UserAgent: userAgent,
	})
	return nil
}

// Status reports whether the scope holds a live session. A CSRF token is
// initialized either way so the SPA always has one to submit.
func (s *authService) Status(ctx context.Context, scope security.Scope) SessionStatus {
	authenticated := scope.Sessions.Load(ctx)

	token, err := scope.CSRF.Init(ctx)
	if err != nil {
		slog.Warn("csrf token init failed", slog.Any("error", err))
	}

	return SessionStatus{Authenticated: authenticated, CSRFToken: token}
}

// verify checks the submitted password against the configured credential.
func (s *authService) verify(password string) bool {
	if s.cfg.PasswordHash != "" {
		return VerifyPassword(password, s.cfg.PasswordHash)
	}
	if s.devMode && s.cfg.DevPassword != "" {
		return subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.DevPassword)) == 1
	}
	return false
}

// lockedMessage formats the lockout error shown to the client.
func lockedMessage(remaining time.Duration) string {
	minutes := int(remaining.Round(time.Minute).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", minutes)
}
