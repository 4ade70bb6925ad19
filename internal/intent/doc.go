// Package intent decides whether a piece of chat text announces that a
// shift, such as a TA's office hours, is being cancelled.
//
// A message is a cancellation only when it contains both an action (a
// verb whose lemma is in the action ConceptSet, e.g. "cancelled" or
// "skipping") and a topic (a noun phrase from the topic ConceptSet, e.g.
// "office hours" or "OH"). Topics are matched inside noun-phrase chunks
// rather than as loose tokens, so "oh no" or "hours" on their own never
// count.
//
// Both concept sets are plain data and can be replaced, for example to
// support another language.
package intent
