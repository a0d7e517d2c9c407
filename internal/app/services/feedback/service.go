// Package feedback persists free-text questions from the contact form.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethanscookies/storefront/internal/app/domain/feedback"
	"github.com/ethanscookies/storefront/internal/app/storage"
	"github.com/ethanscookies/storefront/pkg/logger"
)

// ErrInvalidArgument marks a submission with no question.
var ErrInvalidArgument = errors.New("invalid argument")

// Service stores submitted feedback.
type Service struct {
	store storage.FeedbackStore
	log   *logger.Logger
}

// New constructs a feedback service.
func New(store storage.FeedbackStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("feedback")
	}
	return &Service{store: store, log: log}
}

// Submit persists a question. Username is optional; when absent it is stored
// as an explicit NULL, not an empty string.
func (s *Service) Submit(ctx context.Context, question, username string) (feedback.Entry, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return feedback.Entry{}, fmt.Errorf("%w: question is required", ErrInvalidArgument)
	}

	entry, err := s.store.CreateFeedback(ctx, feedback.Entry{
		Question: question,
		Username: strings.TrimSpace(username),
	})
	if err != nil {
		return feedback.Entry{}, fmt.Errorf("create feedback: %w", err)
	}

	s.log.WithField("feedback_id", entry.ID).Info("feedback received")
	return entry, nil
}
