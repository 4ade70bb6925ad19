package intent

import "strings"

// Signal explains a classification. Action is the matched lemma and Word the
// form it appeared in; Topic is the matched phrase.
type Signal struct {
	Detected bool
	Action   string
	Word     string
	Topic    string
}

// Classifier matches text against an action set and a topic set. It holds
// no mutable state and is safe for concurrent use.
type Classifier struct {
	actions    ConceptSet
	topics     ConceptSet
	lemmatizer Lemmatizer
	lemmas     map[string]bool
	phrases    [][]string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLemmatizer sets the lemmatizer used to map words onto action terms.
// The default is English.
func WithLemmatizer(l Lemmatizer) Option {
	return func(c *Classifier) {
		c.lemmatizer = l
	}
}

// NewClassifier builds a Classifier from the given concept sets. It panics
// if the built-in English dictionary cannot be loaded and no lemmatizer was
// given.
func NewClassifier(actions, topics ConceptSet, opts ...Option) *Classifier {
	c := &Classifier{
		actions: actions,
		topics:  topics,
		lemmas:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.lemmatizer == nil {
		en, err := English()
		if err != nil {
			panic("intent: loading English dictionary: " + err.Error())
		}
		c.lemmatizer = en
	}

	for _, term := range actions.Terms {
		if lemma := normalize(strings.TrimSpace(term)); lemma != "" {
			c.lemmas[lemma] = true
			c.lemmas[c.lemmatizer.Lemma(lemma)] = true
		}
	}
	for _, term := range topics.Terms {
		var phrase []string
		for _, tk := range tokenize(normalize(term)) {
			if tk.kind == kindWord {
				phrase = append(phrase, tk.text)
			}
		}
		if len(phrase) > 0 {
			c.phrases = append(c.phrases, phrase)
		}
	}
	return c
}

// Default returns a Classifier for English office-hours cancellations.
func Default() *Classifier {
	return NewClassifier(DefaultActions, DefaultTopics)
}

// Actions returns the action concept set.
func (c *Classifier) Actions() ConceptSet { return c.actions }

// Topics returns the topic concept set.
func (c *Classifier) Topics() ConceptSet { return c.topics }

// Lemma returns the action lemma for word, or "" when word is not an
// action form.
func (c *Classifier) Lemma(word string) string {
	return c.action(normalize(word))
}

// action returns the action term word is a form of, or "".
func (c *Classifier) action(word string) string {
	if c.lemmas[word] {
		return word
	}
	if lemma := c.lemmatizer.Lemma(word); c.lemmas[lemma] {
		return lemma
	}
	return ""
}

// Classify reports whether text announces a cancellation.
func (c *Classifier) Classify(text string) bool {
	return c.Detect(text).Detected
}

// Detect classifies text and reports the first action and topic found.
func (c *Classifier) Detect(text string) Signal {
	toks := tokenize(normalize(text))
	var sig Signal

	for _, tk := range toks {
		if tk.kind != kindWord {
			continue
		}
		if lemma := c.action(tk.text); lemma != "" {
			sig.Action, sig.Word = lemma, tk.text
			break
		}
	}

	for _, chunk := range c.chunks(toks) {
		if phrase := c.matchTopic(chunk); phrase != "" {
			sig.Topic = phrase
			break
		}
	}

	sig.Detected = sig.Action != "" && sig.Topic != ""
	return sig
}

// chunks groups tokens into noun-phrase chunks. A chunk ends at
// punctuation, function words, action verbs and interjections. Line breaks
// do not end a chunk since OCR wraps long phrases.
func (c *Classifier) chunks(toks []token) [][]string {
	var (
		out [][]string
		cur []string
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
			cur = nil
		}
	}
	for i, tk := range toks {
		switch {
		case tk.kind == kindBreak:
		case tk.kind != kindWord:
			flush()
		case functionWords[tk.text]:
			flush()
		case c.action(tk.text) != "":
			flush()
		case tk.text == "oh" && interjection(toks, i):
			flush()
		default:
			cur = append(cur, tk.text)
		}
	}
	flush()
	return out
}

// interjection reports whether the "oh" at i opens a clause as an
// exclamation ("Oh no", "Oh, ...") rather than naming office hours.
func interjection(toks []token, i int) bool {
	if !clauseStart(toks, i) || i+1 >= len(toks) {
		return false
	}
	next := toks[i+1]
	if next.kind == kindPunct {
		return true
	}
	return next.kind == kindWord && interjectionFollowers[next.text]
}

func (c *Classifier) matchTopic(chunk []string) string {
	for _, phrase := range c.phrases {
		if containsRun(chunk, phrase) {
			return strings.Join(phrase, " ")
		}
	}
	return ""
}

func containsRun(chunk, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(chunk); i++ {
		match := true
		for j := range phrase {
			if chunk[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
