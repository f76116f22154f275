// Package chain is the Markov sentence generator behind each participant.
//
// A Chain maps a state (the last StateSize words) to the weighted words
// observed after it. Sentences are padded with Begin markers on the left and
// closed with End, so the all-Begin state holds every sentence opener.
package chain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmcvetta/randutil"
)

const (
	Begin = "___BEGIN__"
	End   = "___END__"

	DefaultStateSize = 2
)

var (
	ErrEmptyCorpus  = errors.New("corpus has no usable sentences")
	ErrUnknownState = errors.New("start state not present in chain")
)

// stateSep cannot occur inside a word because words come from a whitespace split.
const stateSep = "\x00"

type Chain struct {
	stateSize int
	next      map[string][]randutil.Choice
}

// NewChain counts the transitions of every run of words. Runs must be
// non-empty.
func NewChain(runs [][]string, stateSize int) (*Chain, error) {
	if stateSize < 1 {
		return nil, fmt.Errorf("state size must be >= 1, got %d", stateSize)
	}
	if len(runs) == 0 {
		return nil, ErrEmptyCorpus
	}

	// Weighted choices are kept in first-seen order so a chain built from the
	// same corpus always has the same layout.
	index := make(map[string]map[string]int)
	next := make(map[string][]randutil.Choice)

	for _, run := range runs {
		items := make([]string, 0, stateSize+len(run)+1)
		for i := 0; i < stateSize; i++ {
			items = append(items, Begin)
		}
		items = append(items, run...)
		items = append(items, End)

		for i := 0; i < len(run)+1; i++ {
			key := stateKey(items[i : i+stateSize])
			follow := items[i+stateSize]

			pos, ok := index[key]
			if !ok {
				pos = make(map[string]int)
				index[key] = pos
			}
			if p, ok := pos[follow]; ok {
				next[key][p].Weight++
				continue
			}
			pos[follow] = len(next[key])
			next[key] = append(next[key], randutil.Choice{Weight: 1, Item: follow})
		}
	}
	return &Chain{stateSize: stateSize, next: next}, nil
}

func (c *Chain) StateSize() int { return c.stateSize }

// BeginState is the state every sentence starts from.
func (c *Chain) BeginState() []string {
	s := make([]string, c.stateSize)
	for i := range s {
		s[i] = Begin
	}
	return s
}

// Has reports whether the chain has seen state.
func (c *Chain) Has(state []string) bool {
	_, ok := c.next[stateKey(state)]
	return ok
}

// Move picks the word following state, weighted by observed counts.
func (c *Chain) Move(state []string) (string, error) {
	choices, ok := c.next[stateKey(state)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownState, state)
	}
	choice, err := randutil.WeightedChoice(choices)
	if err != nil {
		return "", err
	}
	return choice.Item.(string), nil
}

// Walk generates words from init (the begin state when nil) until End is
// drawn. The words of init itself are not part of the result.
func (c *Chain) Walk(init []string) ([]string, error) {
	state := c.BeginState()
	if init != nil {
		if len(init) != c.stateSize {
			return nil, fmt.Errorf("start state has %d words, chain expects %d", len(init), c.stateSize)
		}
		copy(state, init)
	}

	var words []string
	for {
		w, err := c.Move(state)
		if err != nil {
			return nil, err
		}
		if w == End {
			return words, nil
		}
		words = append(words, w)
		state = append(state[1:], w)
	}
}

func stateKey(state []string) string {
	return strings.Join(state, stateSep)
}
