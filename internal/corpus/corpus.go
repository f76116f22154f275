// Package corpus turns raw message records into the newline-delimited
// training text of one sender.
package corpus

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"convosim/internal/domain"
	"convosim/internal/metrics"
	"convosim/internal/textclean"
)

// Corpus is the training text of one sender: the cleaned sentences in input
// order (duplicates kept) followed by every distinct word once.
type Corpus struct {
	Sender    string
	Sentences []string
	Words     []string
}

// Entries returns the corpus lines in file order.
func (c *Corpus) Entries() []string {
	out := make([]string, 0, len(c.Sentences)+len(c.Words))
	out = append(out, c.Sentences...)
	return append(out, c.Words...)
}

// Len is the number of lines the corpus occupies on disk.
func (c *Corpus) Len() int {
	return len(c.Sentences) + len(c.Words)
}

// Build extracts the corpus of sender from msgs. Records from other senders
// and records without content are skipped.
func Build(sender string, msgs []domain.MessageRecord) *Corpus {
	c := &Corpus{Sender: sender}
	seen := make(map[string]struct{})

	for _, m := range msgs {
		if m.SenderName != sender || !m.HasContent() {
			continue
		}
		sent := textclean.CleanSentence(*m.Content)
		if sent == "" {
			continue
		}
		c.Sentences = append(c.Sentences, sent)
		for _, w := range strings.Split(sent, " ") {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			c.Words = append(c.Words, w)
		}
	}
	return c
}

// WriteFile writes one entry per line, creating or truncating path.
func (c *Corpus) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create corpus %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, e := range c.Entries() {
		w.WriteString(e)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("cannot write corpus %s: %w", path, err)
	}
	return f.Close()
}

// ReadFile reads a corpus file back as its ordered entries.
func ReadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read corpus %s: %w", path, err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// Builder builds and writes the corpus of each participant from a shared
// message source.
type Builder struct {
	logger *slog.Logger
}

func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{logger: logger}
}

// BuildAndWrite builds the corpus of sender and writes it to path.
func (b *Builder) BuildAndWrite(sender, path string, msgs []domain.MessageRecord) (*Corpus, error) {
	c := Build(sender, msgs)
	if err := c.WriteFile(path); err != nil {
		return nil, err
	}
	metrics.CorpusEntries(sender).Set(int64(c.Len()))
	if len(c.Sentences) == 0 {
		b.logger.Warn("empty corpus", "sender", sender, "path", path)
	} else {
		b.logger.Info("corpus written", "sender", sender, "path", path,
			"sentences", len(c.Sentences), "words", len(c.Words))
	}
	return c, nil
}
