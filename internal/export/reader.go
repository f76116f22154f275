// Package export reads message_*.json chat exports from disk.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"convosim/internal/domain"
)

// DefaultPattern matches the per-thread files of a chat export.
const DefaultPattern = "message_*.json"

// GlobSource implements domain.MessageSource over every export file matching
// Pattern inside Dir.
type GlobSource struct {
	Dir     string
	Pattern string
	Logger  *slog.Logger
}

// NewGlobSource creates a source reading files matching pattern in dir.
// Empty values fall back to the current directory and DefaultPattern.
func NewGlobSource(dir, pattern string, logger *slog.Logger) *GlobSource {
	if dir == "" {
		dir = "."
	}
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &GlobSource{Dir: dir, Pattern: pattern, Logger: logger}
}

// Files returns the matching export files in lexical order.
func (s *GlobSource) Files() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, s.Pattern))
	if err != nil {
		return nil, fmt.Errorf("bad export pattern %q: %w", s.Pattern, err)
	}
	return matches, nil
}

// LoadMessages reads every matching file. Finding no file is not an error;
// a file that cannot be read or parsed aborts the whole load.
func (s *GlobSource) LoadMessages(ctx context.Context) ([]domain.MessageRecord, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.Logger.Warn("no export files found", "dir", s.Dir, "pattern", s.Pattern)
		return nil, nil
	}

	var all []domain.MessageRecord
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		exp, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		s.Logger.Debug("loaded export", "path", path, "messages", len(exp.Messages))
		all = append(all, exp.Messages...)
	}
	return all, nil
}

// ReadFile parses a single export file.
func ReadFile(path string) (*domain.ExportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read export %s: %w", path, err)
	}
	var exp domain.ExportFile
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("cannot parse export %s: %w", path, err)
	}
	return &exp, nil
}

// SenderCount is the number of messages one sender has in a source.
type SenderCount struct {
	Name     string
	Messages int
	Text     int // messages with a content body
}

// CountSenders tallies records per sender, in first-seen order.
func CountSenders(msgs []domain.MessageRecord) []SenderCount {
	idx := make(map[string]int)
	var out []SenderCount
	for _, m := range msgs {
		i, ok := idx[m.SenderName]
		if !ok {
			i = len(out)
			idx[m.SenderName] = i
			out = append(out, SenderCount{Name: m.SenderName})
		}
		out[i].Messages++
		if m.HasContent() {
			out[i].Text++
		}
	}
	return out
}
