// Package advice asks a language model for short art-practice tips for parents.
// Failures never reach the caller; a fixed fallback sentence is returned instead.
package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/metrics"
)

const (
	// EmptyFallback is returned when the model answers with no text.
	EmptyFallback = "Unable to generate advice at the moment."
	// ErrorFallback is returned when the model cannot be reached.
	ErrorFallback = "Our AI art assistant is currently taking a creative break. Please try again later."

	// DefaultChildAge is used when the caller does not know the child's age.
	DefaultChildAge = 10
)

// ErrDisabled is reported by a generator that has no credentials.
var ErrDisabled = errors.New("advice generation disabled")

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service wraps a Generator with the studio prompt and fallbacks.
type Service struct {
	gen     Generator
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a service. A nil gen behaves as a generator that always fails.
func New(gen Generator, timeout time.Duration, log zerolog.Logger) *Service {
	return &Service{gen: gen, timeout: timeout, log: log.With().Str("component", "advice").Logger()}
}

// Prompt builds the instruction sent to the model.
func Prompt(topic string, childAge int) string {
	return fmt.Sprintf(`You are a friendly, encouraging art teacher at KashArtsStudio.
A parent asks about the topic: %q for their %d-year-old child.

Provide a short, helpful response (max 80 words) covering:
1. Why this skill is important.
2. A simple fun activity they can do at home to practice.

Keep the tone warm and professional.`, topic, childAge)
}

// Advice returns advice text for topic. It always returns a displayable string.
func (s *Service) Advice(ctx context.Context, topic string, childAge int) string {
	if childAge <= 0 {
		childAge = DefaultChildAge
	}
	if s.gen == nil {
		metrics.AdviceRequests.WithLabelValues("disabled").Inc()
		return ErrorFallback
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.gen.Generate(ctx, Prompt(topic, childAge))
	switch {
	case errors.Is(err, ErrDisabled):
		metrics.AdviceRequests.WithLabelValues("disabled").Inc()
		return ErrorFallback
	case err != nil:
		metrics.AdviceRequests.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("topic", topic).Msg("advice generation failed")
		return ErrorFallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.AdviceRequests.WithLabelValues("empty").Inc()
		return EmptyFallback
	}
	metrics.AdviceRequests.WithLabelValues("ok").Inc()
	return text
}
