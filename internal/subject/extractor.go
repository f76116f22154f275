// Package subject picks a topic word out of a generated sentence so the
// other participant can answer "about" it.
package subject

import (
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"convosim/internal/domain"
)

// nounTags are the Penn Treebank tags of common nouns. Proper nouns are left
// out since they rarely start a reply.
var nounTags = map[string]bool{"NN": true, "NNS": true}

// Extractor owns the tagger handle. The tagger is loaded on first use.
type Extractor struct {
	load   func() (domain.Tagger, error)
	once   sync.Once
	tagger domain.Tagger
	err    error

	rng    *rand.Rand
	logger *slog.Logger
}

// New creates an extractor that loads its tagger with load on first use.
// A nil rng uses the global source.
func New(load func() (domain.Tagger, error), rng *rand.Rand, logger *slog.Logger) *Extractor {
	return &Extractor{load: load, rng: rng, logger: logger}
}

// WithTagger creates an extractor around an already loaded tagger.
func WithTagger(t domain.Tagger, rng *rand.Rand, logger *slog.Logger) *Extractor {
	return New(func() (domain.Tagger, error) { return t, nil }, rng, logger)
}

func (e *Extractor) taggerHandle() (domain.Tagger, error) {
	e.once.Do(func() {
		e.tagger, e.err = e.load()
		if e.err == nil {
			e.logger.Debug("tagger loaded")
		}
	})
	return e.tagger, e.err
}

// Extract drops stop words from sentence, tags what is left and returns a
// common noun chosen uniformly at random. ok is false when there is none.
func (e *Extractor) Extract(sentence string) (word string, ok bool, err error) {
	tagger, err := e.taggerHandle()
	if err != nil {
		return "", false, err
	}

	var kept []string
	for _, w := range strings.Fields(sentence) {
		w = strings.ToLower(w)
		if !tagger.IsStopWord(w) {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return "", false, nil
	}

	tagged, err := tagger.Tag(strings.Join(kept, " "))
	if err != nil {
		return "", false, err
	}
	var nouns []string
	for _, tok := range tagged {
		if nounTags[tok.Tag] {
			nouns = append(nouns, tok.Text)
		}
	}
	if len(nouns) == 0 {
		return "", false, nil
	}
	return nouns[e.intN(len(nouns))], true, nil
}

func (e *Extractor) intN(n int) int {
	if e.rng != nil {
		return e.rng.IntN(n)
	}
	return rand.IntN(n)
}
