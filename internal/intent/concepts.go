package intent

// ConceptSet is a named list of terms. Action terms are verb lemmas;
// topic terms are noun phrases of one or more words.
type ConceptSet struct {
	Name  string
	Terms []string
}

// DefaultActions are verbs that take a slot off the schedule.
var DefaultActions = ConceptSet{
	Name:  "cancellation",
	Terms: []string{"cancel", "skip", "drop", "remove", "postpone"},
}

// DefaultTopics are the ways a TA office-hours slot is referred to in chat.
// The bare word "hours" is deliberately absent.
var DefaultTopics = ConceptSet{
	Name: "office-hours",
	Terms: []string{
		"office hours", "office hour", "office hrs",
		"ta hours", "ta hour",
		"oh", "ohs",
		"ta shift", "ta shifts",
		"lab hours", "tutoring hours",
	},
}

// functionWords end a noun-phrase chunk. They are the closed-class words
// that separate noun phrases in short chat messages.
var functionWords = toSet(
	// prepositions
	"at", "in", "on", "for", "from", "to", "of", "with", "by", "about",
	"until", "till", "during", "after", "before", "instead",
	// conjunctions
	"and", "or", "but", "so", "because", "if", "then",
	// auxiliaries and common verbs
	"is", "are", "was", "were", "be", "been", "being", "am", "will", "would",
	"can", "could", "should", "shall", "must", "might", "may", "have", "has",
	"had", "do", "does", "did", "going", "gonna", "need", "needs", "got",
	"get", "want", "wanna", "let", "please",
	// pronouns
	"i", "we", "you", "he", "she", "they", "it", "me", "us", "them",
	"i'm", "we're", "i'll", "we'll", "i've", "can't", "won't", "don't",
	// determiners
	"the", "a", "an", "my", "our", "your", "his", "her", "their", "this",
	"that", "these", "those", "'s", "any", "all", "some",
	// time words
	"today", "tomorrow", "tonight", "now", "pm", "noon",
	// negation
	"no", "not",
)

// interjectionFollowers mark a sentence-initial "oh" as an exclamation.
var interjectionFollowers = toSet(
	"no", "yes", "yeah", "well", "wow", "my", "god", "man", "dear", "i",
	"ok", "okay", "boy", "hey", "nice", "great", "sorry", "wait", "shoot",
	"dang", "oops", "right", "cool", "thanks", "really",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
