package chain

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
)

// Options tune sentence generation. The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	StateSize int
	// Tries is the number of walks MakeSentence attempts per call.
	Tries int
	// TestOutput enables the originality test on generated sentences.
	TestOutput      bool
	MaxOverlapRatio float64
	MaxOverlapTotal int
	// MinWords and MaxWords bound sentence length; 0 disables a bound.
	MinWords int
	MaxWords int
}

func DefaultOptions() Options {
	return Options{
		StateSize:       DefaultStateSize,
		Tries:           10,
		TestOutput:      true,
		MaxOverlapRatio: 0.7,
		MaxOverlapTotal: 15,
	}
}

// Model is a compiled chain plus the training text it was built from.
// It implements domain.SentenceModel.
type Model struct {
	chain    *Chain
	rejoined string
	opts     Options
}

// rejectInput matches sentences whose quotes or brackets would leave the
// chain emitting unbalanced punctuation.
var rejectInput = regexp.MustCompile(`(^')|('$)|\s'|'\s|["(\(\)\[\])]`)

// New builds a model from newline-delimited training text.
func New(text string, opts Options) (*Model, error) {
	if opts.StateSize == 0 {
		opts.StateSize = DefaultStateSize
	}
	if opts.Tries < 1 {
		opts.Tries = 1
	}

	var runs [][]string
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if !usableInput(line) {
			continue
		}
		words := strings.Fields(line)
		runs = append(runs, words)
		lines = append(lines, strings.Join(words, " "))
	}
	if len(runs) == 0 {
		return nil, ErrEmptyCorpus
	}

	c, err := NewChain(runs, opts.StateSize)
	if err != nil {
		return nil, err
	}
	return &Model{
		chain:    c,
		rejoined: strings.Join(lines, " "),
		opts:     opts,
	}, nil
}

// CompileFile builds a model from a corpus file.
func CompileFile(path string, opts Options) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read corpus %s: %w", path, err)
	}
	m, err := New(string(data), opts)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}
	return m, nil
}

func usableInput(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	return !rejectInput.MatchString(line)
}

// MakeSentence walks the chain up to Tries times and returns the first
// sentence that satisfies the length bounds and the originality test.
//
// initState may be shorter than the state size; it is then left-padded with
// Begin markers. Leading Begin markers are dropped and the remaining words
// start the sentence.
func (m *Model) MakeSentence(initState []string) (string, bool, error) {
	var state, prefix []string
	if initState != nil {
		if len(initState) > m.chain.StateSize() {
			return "", false, fmt.Errorf("start state has %d words, chain expects %d", len(initState), m.chain.StateSize())
		}
		state = m.chain.BeginState()
		copy(state[len(state)-len(initState):], initState)
		prefix = state
		for len(prefix) > 0 && prefix[0] == Begin {
			prefix = prefix[1:]
		}
		if !m.chain.Has(state) {
			return "", false, fmt.Errorf("%w: %q", ErrUnknownState, state)
		}
	}

	for i := 0; i < m.opts.Tries; i++ {
		walked, err := m.chain.Walk(state)
		if err != nil {
			return "", false, err
		}
		words := make([]string, 0, len(prefix)+len(walked))
		words = append(words, prefix...)
		words = append(words, walked...)

		if m.opts.MaxWords > 0 && len(words) > m.opts.MaxWords {
			continue
		}
		if m.opts.MinWords > 0 && len(words) < m.opts.MinWords {
			continue
		}
		if m.opts.TestOutput && !m.original(words) {
			continue
		}
		return strings.Join(words, " "), true, nil
	}
	return "", false, nil
}

// original reports whether no run of overlapMax+1 consecutive words appears
// verbatim in the training text. Training lines are joined with spaces, so a
// run may span two of them.
func (m *Model) original(words []string) bool {
	overlapRatio := int(math.RoundToEven(m.opts.MaxOverlapRatio * float64(len(words))))
	overlapMax := min(m.opts.MaxOverlapTotal, overlapRatio)
	overlapOver := overlapMax + 1
	gramCount := max(len(words)-overlapMax, 1)

	for i := 0; i < gramCount; i++ {
		end := min(i+overlapOver, len(words))
		if strings.Contains(m.rejoined, strings.Join(words[i:end], " ")) {
			return false
		}
	}
	return true
}
