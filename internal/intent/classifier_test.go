package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	c := Default()

	tests := []struct {
		name   string
		text   string
		want   bool
		action string
		topic  string
	}{
		{"plain", "Cancelling office hours today 2 to 4", true, "cancel", "office hours"},
		{"abbreviation", "I'm going to skip my OH tomorrow", true, "skip", "oh"},
		{"passive", "Office hours are postponed", true, "postpone", "office hours"},
		{"doubled consonant", "TA hours dropped 3-5", true, "drop", "ta hours"},
		{"possessive", "removing today's office hrs", true, "remove", "office hrs"},
		{"american spelling", "Office hours canceled", true, "cancel", "office hours"},
		{"shouting", "OFFICE HOURS CANCELLED!!", true, "cancel", "office hours"},
		{"curly apostrophe", "I’m cancelling my office hour", true, "cancel", "office hour"},
		{"hyphenated topic", "office-hours skipped", true, "skip", "office hours"},
		{"wrapped line", "cancel office\nhours 2-4", true, "cancel", "office hours"},
		{"no OH", "no OH today, cancelled", true, "cancel", "oh"},
		{"topic only", "Office hours are at 2 to 4", false, "", "office hours"},
		{"action only", "Cancel my dentist appointment", false, "cancel", ""},
		{"bare hours", "I worked 5 hours and want to cancel", false, "cancel", ""},
		{"interjection", "Oh no, I have to cancel dinner", false, "cancel", ""},
		{"interjection with comma", "Oh, cancelling my plans", false, "cancel", ""},
		{"interjection mid clause", "Cancelling lunch, oh well", false, "cancel", ""},
		{"split by punctuation", "office. hours cancelled", false, "cancel", ""},
		{"empty", "", false, "", ""},
		{"garbage", "!!!@@@ ### 12:: --", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := c.Detect(tt.text)
			assert.Equal(t, tt.want, sig.Detected)
			assert.Equal(t, tt.want, c.Classify(tt.text))
			assert.Equal(t, tt.action, sig.Action)
			assert.Equal(t, tt.topic, sig.Topic)
		})
	}
}

func TestClassifyReportsWordForm(t *testing.T) {
	sig := Default().Detect("Skipping OH")
	assert.Equal(t, "skipping", sig.Word)
	assert.Equal(t, "skip", sig.Action)
}

func TestCustomConceptSets(t *testing.T) {
	c := NewClassifier(
		ConceptSet{Name: "es-actions", Terms: []string{"cancelar", "suspender"}},
		ConceptSet{Name: "es-topics", Terms: []string{"horas de oficina", "tutoría"}},
	)

	assert.True(t, c.Classify("Hoy suspender las horas de oficina"))
	assert.True(t, c.Classify("TUTORÍA: cancelar"))
	assert.False(t, c.Classify("Cancelling office hours"))
	assert.Equal(t, "es-topics", c.Topics().Name)
	assert.Equal(t, "es-actions", c.Actions().Name)
}

func TestLemma(t *testing.T) {
	c := Default()

	tests := map[string]string{
		"cancel":       "cancel",
		"cancels":      "cancel",
		"cancelled":    "cancel",
		"canceled":     "cancel",
		"cancelling":   "cancel",
		"canceling":    "cancel",
		"skipped":      "skip",
		"skipping":     "skip",
		"drops":        "drop",
		"removed":      "remove",
		"removing":     "remove",
		"postpones":    "postpone",
		"Postponing":   "postpone",
		"hours":        "",
		"cancellation": "",
	}

	for word, want := range tests {
		t.Run(word, func(t *testing.T) {
			assert.Equal(t, want, c.Lemma(word))
		})
	}
}

func TestWithLemmatizer(t *testing.T) {
	spanish := LemmatizerFunc(func(word string) string {
		switch word {
		case "cancelo", "cancelamos", "cancelada":
			return "cancelar"
		}
		return word
	})
	c := NewClassifier(
		ConceptSet{Name: "es-actions", Terms: []string{"cancelar"}},
		ConceptSet{Name: "es-topics", Terms: []string{"horas de oficina"}},
		WithLemmatizer(spanish),
	)

	sig := c.Detect("Hoy cancelamos las horas de oficina")
	assert.True(t, sig.Detected)
	assert.Equal(t, "cancelar", sig.Action)
	assert.Equal(t, "cancelamos", sig.Word)
	assert.Equal(t, "", c.Lemma("cancelled"))
}

func TestIdentityLemmatizer(t *testing.T) {
	c := NewClassifier(DefaultActions, DefaultTopics, WithLemmatizer(Identity))

	assert.True(t, c.Classify("cancel office hours 2 to 4"))
	assert.False(t, c.Classify("cancelled office hours 2 to 4"))
}

func TestEnglish(t *testing.T) {
	en, err := English()
	require.NoError(t, err)

	assert.Equal(t, "cancel", en.Lemma("cancelled"))
	assert.Equal(t, "skip", en.Lemma("skipping"))
	assert.Equal(t, "hour", en.Lemma("hours"))
	assert.Equal(t, "shiftclaim", en.Lemma("shiftclaim"))
}
