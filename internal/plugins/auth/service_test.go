package auth

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sigstudio/sigsite/internal/apperror"
	"github.com/sigstudio/sigsite/internal/config"
	"github.com/sigstudio/sigsite/internal/plugins/audit"
	"github.com/sigstudio/sigsite/internal/security"
	"github.com/sigstudio/sigsite/internal/security/ratelimit"
	"github.com/sigstudio/sigsite/internal/security/session"
	"github.com/sigstudio/sigsite/internal/store"
)

var hexTokenRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// auditSink records inserted audit entries so tests can assert on them.
type auditSink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *auditSink) Insert(_ context.Context, entry *audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, *entry)
	return nil
}

func (a *auditSink) ListRecent(context.Context, int, int) ([]audit.Entry, int, error) {
	return nil, 0, nil
}

func (a *auditSink) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

func newTestService(t *testing.T, cfg config.AdminConfig) (AuthService, security.Scope, *auditSink) {
	t.Helper()
	sink := &auditSink{}
	emitter := audit.NewEmitter(sink)
	t.Cleanup(emitter.Close)

	kv := store.NewMemory()
	scope := security.ForScope(kv, kv, "test-scope", session.StaticSignals{
		Values: session.Signals{
			UserAgent: "test-agent",
			Language:  "en-US",
		},
	})
	return NewAuthService(cfg, true, emitter), scope, sink
}

func devConfig() config.AdminConfig {
	return config.AdminConfig{DevPassword: "hunter2"}
}

func TestLogin_Success(t *testing.T) {
	svc, scope, _ := newTestService(t, devConfig())
	ctx := context.Background()

	resp, err := svc.Login(ctx, scope, "hunter2", "test-agent")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !hexTokenRe.MatchString(resp.CSRFToken) {
		t.Errorf("csrf token %q is not 64 hex chars", resp.CSRFToken)
	}
	if resp.ExpiresIn != int64(session.TTL.Seconds()) {
		t.Errorf("expiresIn = %d, want %d", resp.ExpiresIn, int64(session.TTL.Seconds()))
	}
	if !scope.Sessions.Load(ctx) {
		t.Error("no live session after successful login")
	}
}

func TestLogin_MalformedPassword(t *testing.T) {
	svc, scope, _ := newTestService(t, devConfig())
	ctx := context.Background()

	// Empty and oversized passwords are rejected as validation errors
	// before they reach the limiter or the hash.
	for name, password := range map[string]string{
		"empty":     "",
		"oversized": strings.Repeat("a", 201),
	} {
		_, err := svc.Login(ctx, scope, password, "test-agent")
		appErr, ok := err.(*apperror.AppError)
		if !ok {
			t.Fatalf("%s: expected AppError, got %T", name, err)
		}
		if appErr.Code != 422 {
			t.Errorf("%s: status = %d, want 422", name, appErr.Code)
		}
		if _, ok := appErr.Fields["password"]; !ok {
			t.Errorf("%s: expected a password field error, got %v", name, appErr.Fields)
		}
	}

	// Malformed submissions must not consume login attempts.
	if status := scope.Limiter.Status(ctx); status.RemainingAttempts != ratelimit.MaxAttempts {
		t.Errorf("remaining attempts = %d, want %d", status.RemainingAttempts, ratelimit.MaxAttempts)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, scope, _ := newTestService(t, devConfig())
	ctx := context.Background()

	_, err := svc.Login(ctx, scope, "wrong", "test-agent")
	if err == nil {
		t.Fatal("expected error for wrong password")
	}
	appErr, ok := err.(*apperror.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != 401 {
		t.Errorf("status = %d, want 401", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "4 attempts remaining") {
		t.Errorf("message = %q, want remaining attempts mention", appErr.Message)
	}
	if scope.Sessions.Load(ctx) {
		t.Error("session exists after failed login")
	}
}

func TestLogin_FailureResetAfterSuccess(t *testing.T) {
	svc, scope, _ := newTestService(t, devConfig())
	ctx := context.Background()

	_, _ = svc.Login(ctx, scope, "wrong", "test-agent")
	_, _ = svc.Login(ctx, scope, "wrong", "test-agent")

	if _, err := svc.Login(ctx, scope, "hunter2", "test-agent"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// Counter was reset: a fresh failure reports a full window again.
	_, err := svc.Login(ctx, scope, "wrong", "test-agent")
	if err == nil || !strings.Contains(err.Error(), "4 attempts remaining") {
		t.Errorf("expected fresh attempt count after reset, got %v", err)
	}
}

func TestLogin_LockoutAfterMaxFailures(t *testing.T) {
	svc, scope, _ := newTestService(t, devConfig())
	ctx := context.Background()

	var last error
	for i := 0; i < ratelimit.MaxAttempts; i++ {
		_, last = svc.Login(ctx, scope, "wrong", "test-agent")
	}

	appErr, ok := last.(*apperror.AppError)
	if !ok || appErr.Code != 429 {
		t.Fatalf("expected 429 on attempt %d, got %v", ratelimit.MaxAttempts, last)
	}

	// Even the correct password is rejected while locked.
	_, err := svc.Login(ctx, scope, "hunter2", "test-agent")
	appErr, ok = err.(*apperror.AppError)
	if !ok || appErr.Code != 429 {
		t.Fatalf("expected 429 for correct password during lockout, got %v", err)
	}
	if !strings.Contains(appErr.Message, "Try again in") {
		t.Errorf("message = %q, want lockout wording", appErr.Message)
	}
}

func TestLogin_ArgonHashCredential(t *testing.T) {
	hash, err := HashPassword("s3cret-pw")
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}

	svc, scope, _ := newTestService(t, config.AdminConfig{PasswordHash: hash})
	ctx := context.Background()

	if _, err := svc.Login(ctx, scope, "s3cret-pw", "test-agent"); err != nil {
		t.Fatalf("login with correct password failed: %v", err)
	}
	scope.Sessions.Clear(ctx)

	if _, err := svc.Login(ctx, scope, "not-it", "test-agent"); err == nil {
		t.Error("login with wrong password succeeded")
	}
}

func TestLogout(t *testing.T) {
	svc, scope, _ := newTestService(t, devConfig())
	ctx := context.Background()

	resp, err := svc.Login(ctx, scope, "hunter2", "test-agent")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(ctx, scope, "test-agent"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if scope.Sessions.Load(ctx) {
		t.Error("session survived logout")
	}
	// The pre-logout CSRF token no longer verifies.
	if scope.CSRF.Verify(ctx, resp.CSRFToken) {
		t.Error("old csrf token still valid after logout")
	}
}

func TestStatus(t *testing.T) {
	svc, scope, _ := newTestService(t, devConfig())
	ctx := context.Background()

	status := svc.Status(ctx, scope)
	if status.Authenticated {
		t.Error("authenticated before login")
	}
	if !hexTokenRe.MatchString(status.CSRFToken) {
		t.Errorf("csrf token %q is not 64 hex chars", status.CSRFToken)
	}

	if _, err := svc.Login(ctx, scope, "hunter2", "test-agent"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !svc.Status(ctx, scope).Authenticated {
		t.Error("not authenticated after login")
	}
}

func TestLogin_AuditTrail(t *testing.T) {
	svc, scope, sink := newTestService(t, devConfig())
	ctx := context.Background()

	_, _ = svc.Login(ctx, scope, "wrong", "test-agent")
	if _, err := svc.Login(ctx, scope, "hunter2", "test-agent"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(ctx, scope, "test-agent"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	// Emitter delivery is asynchronous; poll until the entries land.
	want := []string{audit.ActionLoginFailure, audit.ActionLoginSuccess, audit.ActionLogout}
	deadline := time.Now().Add(2 * time.Second)
	for len(sink.actions()) < len(want) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	got := sink.actions()
	if len(got) != len(want) {
		t.Fatalf("audit actions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("audit action[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
