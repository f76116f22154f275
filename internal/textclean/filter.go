// Package textclean decides which words of a message may enter a corpus.
//
// The policy is all-or-nothing: a word carrying any punctuation or digit is
// dropped whole, never stripped.
package textclean

import (
	"strings"
	"unicode"
)

// softHyphen shows up in exported text as an invisible break hint.
const softHyphen = '\u00ad'

// punctuation is the ASCII punctuation set plus the soft hyphen.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" + string(softHyphen)

const digits = "0123456789"

// CleanWord returns the lowercase form of word and true when the word is
// admissible, or "" and false when it must be dropped. Segments that still
// hold whitespace or control characters, such as the line breaks of a
// multi-line message, are dropped the same way.
func CleanWord(word string) (string, bool) {
	if word == "" {
		return "", false
	}
	if strings.ContainsAny(word, punctuation) || strings.ContainsAny(word, digits) {
		return "", false
	}
	if strings.ContainsFunc(word, blank) {
		return "", false
	}
	return strings.ToLower(word), true
}

func blank(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r)
}

// SplitMessage splits a message body on single spaces and discards the
// final segment. Exports terminate every message with a delimiter, so the
// last segment is the artifact after it. A body without that trailing
// delimiter loses its last word.
func SplitMessage(content string) []string {
	parts := strings.Split(content, " ")
	return parts[:len(parts)-1]
}

// CleanSentence turns one message body into a cleaned sentence. The result
// is "" when every word was rejected.
func CleanSentence(content string) string {
	words := SplitMessage(content)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if cw, ok := CleanWord(w); ok {
			kept = append(kept, cw)
		}
	}
	return strings.Join(kept, " ")
}
