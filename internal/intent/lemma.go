package intent

import (
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Lemmatizer maps an inflected word to its dictionary form. Words it does
// not know come back unchanged.
type Lemmatizer interface {
	Lemma(word string) string
}

// LemmatizerFunc adapts a function to the Lemmatizer interface.
type LemmatizerFunc func(word string) string

// Lemma calls f(word).
func (f LemmatizerFunc) Lemma(word string) string { return f(word) }

// Identity is a Lemmatizer that leaves every word as it is.
var Identity = LemmatizerFunc(func(word string) string { return word })

var loadEnglish = sync.OnceValues(func() (*golem.Lemmatizer, error) {
	return golem.New(en.New())
})

// English returns the shared dictionary lemmatizer for English. The
// dictionary is loaded on first use.
func English() (Lemmatizer, error) {
	l, err := loadEnglish()
	if err != nil {
		return nil, err
	}
	return englishLemmatizer{l}, nil
}

type englishLemmatizer struct {
	l *golem.Lemmatizer
}

func (e englishLemmatizer) Lemma(word string) string {
	return e.l.Lemma(word)
}
