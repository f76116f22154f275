package conversation

import (
	"fmt"

	"convosim/internal/chain"
	"convosim/internal/corpus"
	"convosim/internal/domain"
)

// Participant is one imitated person: whose messages to learn from, how to
// label their lines, and where their corpus file goes.
type Participant struct {
	Name       string
	Label      string
	CorpusPath string
}

// Prepare builds and writes the participant's corpus, then compiles a model
// from the written file.
func Prepare(p Participant, msgs []domain.MessageRecord, b *corpus.Builder, opts chain.Options) (Speaker, error) {
	if _, err := b.BuildAndWrite(p.Name, p.CorpusPath, msgs); err != nil {
		return Speaker{}, err
	}
	model, err := chain.CompileFile(p.CorpusPath, opts)
	if err != nil {
		return Speaker{}, fmt.Errorf("model for %s: %w", p.Name, err)
	}
	return Speaker{Label: p.Label, Model: model}, nil
}
