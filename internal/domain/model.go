package domain

// SentenceModel is a compiled chain model able to produce random sentences.
//
// MakeSentence returns ok=false when no candidate passed the model's own
// output checks; callers are expected to retry. A non-nil error means the
// request can never succeed as given (for example an unknown start state).
type SentenceModel interface {
	MakeSentence(initState []string) (sentence string, ok bool, err error)
}
