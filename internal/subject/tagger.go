package subject

import (
	"fmt"

	"convosim/internal/domain"

	"github.com/jdkato/prose/v2"
)

// ProseTagger implements domain.Tagger with prose's averaged perceptron
// part-of-speech tagger and the embedded stop-word list.
type ProseTagger struct{}

// NewProseTagger checks that the tagger model loads and returns it.
func NewProseTagger() (domain.Tagger, error) {
	t := &ProseTagger{}
	if _, err := t.Tag("warm up"); err != nil {
		return nil, fmt.Errorf("load pos tagger: %w", err)
	}
	return t, nil
}

func (t *ProseTagger) IsStopWord(word string) bool {
	return stopWords[word]
}

// Tag tokenizes text and returns Penn Treebank tags. Sentence segmentation
// and entity extraction are skipped.
func (t *ProseTagger) Tag(text string) ([]domain.TaggedToken, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}
	toks := doc.Tokens()
	out := make([]domain.TaggedToken, len(toks))
	for i, tok := range toks {
		out[i] = domain.TaggedToken{Text: tok.Text, Tag: tok.Tag}
	}
	return out, nil
}
