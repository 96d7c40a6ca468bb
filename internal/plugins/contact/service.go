package contact

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sigstudio/sigsite/internal/apperror"
	"github.com/sigstudio/sigsite/internal/sanitize"
	"github.com/sigstudio/sigsite/internal/validate"
)

// Service handles business logic for contact submissions.
type Service interface {
	Submit(ctx context.Context, input validate.ContactMessage) (*Message, error)
	List(ctx context.Context, status string, limit, offset int) ([]Message, int, error)
	SetStatus(ctx context.Context, id int64, status string) error
}

// service implements Service.
type service struct {
	repo Repository
}

// NewService creates a contact service over the given repository.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Submit validates, sanitizes, and stores one public submission.
func (s *service) Submit(ctx context.Context, input validate.ContactMessage) (*Message, error) {
	if result := validate.ValidateContactMessage(&input); !result.Valid {
		return nil, apperror.NewValidationFields(result.Errors)
	}

	// Validation already rejects markup characters in name/company; the
	// free-form message still gets stripped to plain text.
	input.Message = sanitize.Text(input.Message)
	for i, svc := range input.Services {
		input.Services[i] = sanitize.Text(svc)
	}

	msg := &Message{ContactMessage: input}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("storing contact message: %w", err))
	}

	slog.Info("contact message received", slog.Int64("id", msg.ID))
	return msg, nil
}

// List returns messages for the admin inbox.
func (s *service) List(ctx context.Context, status string, limit, offset int) ([]Message, int, error) {
	if status != "" && !validStatus(status) {
		return nil, 0, apperror.NewBadRequest("invalid status filter")
	}

	messages, total, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, apperror.NewInternal(err)
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages, total, nil
}

// SetStatus moves a message between triage states.
func (s *service) SetStatus(ctx context.Context, id int64, status string) error {
	if !validStatus(status) {
		return apperror.NewBadRequest("invalid status")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// validStatus reports whether status is a known triage state.
func validStatus(status string) bool {
	return status == StatusNew || status == StatusRead || status == StatusArchived
}
