// Package sampler draws sentences from a model until one comes back.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"convosim/internal/chain"
	"convosim/internal/domain"
	"convosim/internal/metrics"
)

// DefaultMaxRetries caps how many times Sample asks the model.
const DefaultMaxRetries = 1000

var ErrGenerationExhausted = errors.New("sentence generation exhausted")

// ExhaustedError reports a sample that never produced a sentence.
type ExhaustedError struct {
	Seed     string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	if e.Seed != "" {
		return fmt.Sprintf("%s: no sentence after %d attempts (seed %q)", ErrGenerationExhausted, e.Attempts, e.Seed)
	}
	return fmt.Sprintf("%s: no sentence after %d attempts", ErrGenerationExhausted, e.Attempts)
}

func (e *ExhaustedError) Unwrap() error { return ErrGenerationExhausted }

type Sampler struct {
	maxRetries int
	logger     *slog.Logger
}

// New creates a sampler. maxRetries <= 0 retries forever.
func New(maxRetries int, logger *slog.Logger) *Sampler {
	return &Sampler{maxRetries: maxRetries, logger: logger}
}

// Sample asks model for a sentence until it returns one. A non-empty seed
// becomes the start state (Begin, seed). Model errors are returned as-is
// since retrying cannot fix them. ctx is checked before every attempt.
func (s *Sampler) Sample(ctx context.Context, model domain.SentenceModel, seed string) (string, error) {
	var init []string
	if seed != "" {
		init = []string{chain.Begin, seed}
	}

	for attempt := 1; s.maxRetries <= 0 || attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		metrics.AttemptsTotal.Inc()
		sent, ok, err := model.MakeSentence(init)
		if err != nil {
			return "", err
		}
		if ok && sent != "" {
			metrics.AttemptsPerSentence.Observe(float64(attempt))
			if attempt > 1 {
				s.logger.Debug("sentence after retries", "attempts", attempt, "seed", seed)
			}
			return sent, nil
		}
	}

	metrics.ExhaustedTotal.Inc()
	return "", &ExhaustedError{Seed: seed, Attempts: s.maxRetries}
}
