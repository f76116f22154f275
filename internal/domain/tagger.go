package domain

// TaggedToken is one token with its Penn Treebank part-of-speech tag.
type TaggedToken struct {
	Text string
	Tag  string
}

// Tagger is the natural-language engine behind subject extraction.
type Tagger interface {
	IsStopWord(word string) bool
	Tag(text string) ([]TaggedToken, error)
}
