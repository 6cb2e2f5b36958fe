// Package contact validates contact form submissions and forwards them to
// the site owner by email.
package contact

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/thaivisachecklist/server/internal/email"
)

// ErrDelivery wraps any failure after validation succeeded.
var ErrDelivery = errors.New("contact message delivery failed")

// Mailer delivers a validated message.
type Mailer interface {
	SendContactMessage(ctx context.Context, msg email.ContactMessage) error
}

// Receipt identifies an accepted submission.
type Receipt struct {
	ID string
}

type Service struct {
	mailer    Mailer
	validator *Validator
	logger    zerolog.Logger
	now       func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewService(mailer Mailer, logger zerolog.Logger) *Service {
	return &Service{
		mailer:    mailer,
		validator: NewValidator(),
		logger:    logger.With().Str("component", "contact").Logger(),
		now:       time.Now,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// Validator exposes the validator used by Submit for callers that decode
// payloads themselves.
func (s *Service) Validator() *Validator {
	return s.validator
}

// SubmitJSON decodes, validates and delivers a JSON payload.
func (s *Service) SubmitJSON(ctx context.Context, body []byte) (Receipt, error) {
	sub, err := s.validator.DecodeJSON(body)
	if err != nil {
		return Receipt{}, err
	}
	return s.Submit(ctx, sub)
}

// Submit delivers an already validated submission exactly once.
func (s *Service) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	received := s.now()
	id, err := s.newID(received)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: generate id: %v", ErrDelivery, err)
	}

	msg := email.ContactMessage{
		ID:         id,
		Name:       sub.Name,
		Email:      sub.Email,
		Message:    sub.Message,
		ReceivedAt: received,
	}

	if err := s.mailer.SendContactMessage(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("submission_id", id).Msg("contact message delivery failed")
		return Receipt{}, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	s.logger.Info().Str("submission_id", id).Msg("contact message accepted")
	return Receipt{ID: id}, nil
}

func (s *Service) newID(at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(at), s.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
