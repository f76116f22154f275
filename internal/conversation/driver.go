// Package conversation interleaves the generated sentences of two
// participants into a fake chat log.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"convosim/internal/chain"
	"convosim/internal/domain"
	"convosim/internal/metrics"
	"convosim/internal/sampler"
)

type Mode string

const (
	// ModeIndependent samples every line unseeded.
	ModeIndependent Mode = "independent"
	// ModeCrossSeeded seeds each reply with the subject of the line before it.
	ModeCrossSeeded Mode = "cross-seeded"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeIndependent, ModeCrossSeeded:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown conversation mode %q", s)
}

// Speaker is one side of the conversation.
type Speaker struct {
	Label string
	Model domain.SentenceModel
}

// Sampler produces one sentence from a model, optionally seeded.
type Sampler interface {
	Sample(ctx context.Context, model domain.SentenceModel, seed string) (string, error)
}

// SubjectFinder picks the topic word of a sentence.
type SubjectFinder interface {
	Extract(sentence string) (string, bool, error)
}

type Driver struct {
	sampler  Sampler
	subjects SubjectFinder
	out      io.Writer
	logger   *slog.Logger
}

// NewDriver creates a driver printing to out. subjects may be nil when only
// ModeIndependent is used.
func NewDriver(s Sampler, subjects SubjectFinder, out io.Writer, logger *slog.Logger) *Driver {
	return &Driver{sampler: s, subjects: subjects, out: out, logger: logger}
}

// Run prints rounds pairs of lines, a first then b. The context is checked
// between lines and between sampling attempts.
func (d *Driver) Run(ctx context.Context, a, b Speaker, rounds int, mode Mode) error {
	switch mode {
	case ModeIndependent:
		return d.runIndependent(ctx, a, b, rounds)
	case ModeCrossSeeded:
		if d.subjects == nil {
			return errors.New("cross-seeded mode needs a subject extractor")
		}
		return d.runCrossSeeded(ctx, a, b, rounds)
	default:
		return fmt.Errorf("unknown conversation mode %q", mode)
	}
}

func (d *Driver) runIndependent(ctx context.Context, a, b Speaker, rounds int) error {
	for i := 0; i < rounds; i++ {
		for _, sp := range []Speaker{a, b} {
			if err := ctx.Err(); err != nil {
				return err
			}
			sent, err := d.sampler.Sample(ctx, sp.Model, "")
			if err != nil {
				return fmt.Errorf("%s: %w", sp.Label, err)
			}
			if err := d.emit(sp, sent); err != nil {
				return err
			}
		}
	}
	return nil
}

// runCrossSeeded opens with an unseeded line from a; every later line is
// seeded by the subject of the previous one.
func (d *Driver) runCrossSeeded(ctx context.Context, a, b Speaker, rounds int) error {
	prev := ""
	for i := 0; i < rounds; i++ {
		for _, sp := range []Speaker{a, b} {
			if err := ctx.Err(); err != nil {
				return err
			}
			seed := ""
			if prev != "" {
				seed = d.subjectOf(prev)
			}
			sent, err := d.reply(ctx, sp, seed)
			if err != nil {
				return fmt.Errorf("%s: %w", sp.Label, err)
			}
			if err := d.emit(sp, sent); err != nil {
				return err
			}
			prev = sent
		}
	}
	return nil
}

func (d *Driver) subjectOf(sentence string) string {
	word, ok, err := d.subjects.Extract(sentence)
	if err != nil {
		d.logger.Warn("subject extraction failed", "err", err)
		return ""
	}
	if !ok {
		d.logger.Debug("no subject in sentence", "sentence", sentence)
		return ""
	}
	return word
}

// reply samples a seeded line, falling back to an unseeded one when the
// model does not know the seed or cannot build an acceptable sentence from it.
func (d *Driver) reply(ctx context.Context, sp Speaker, seed string) (string, error) {
	if seed == "" {
		return d.sampler.Sample(ctx, sp.Model, "")
	}
	sent, err := d.sampler.Sample(ctx, sp.Model, seed)
	if err == nil {
		return sent, nil
	}
	if errors.Is(err, chain.ErrUnknownState) || errors.Is(err, sampler.ErrGenerationExhausted) {
		d.logger.Debug("seed unusable, sampling unseeded", "speaker", sp.Label, "seed", seed, "err", err)
		metrics.SeedFallbacks.Inc()
		return d.sampler.Sample(ctx, sp.Model, "")
	}
	return "", err
}

func (d *Driver) emit(sp Speaker, sentence string) error {
	metrics.SentencesTotal.Inc()
	if _, err := fmt.Fprintf(d.out, "%s: %s\n", sp.Label, sentence); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	return nil
}
