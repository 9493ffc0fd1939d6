package domain

import (
	"strings"
	"time"
)

// StampLayout formats the "Updated:" and "Error At:" lines.
const StampLayout = "Mon Jan 2 2006 3:04 PM MST"

// Delimiters separate user text from machine text in titles and
// descriptions. None of them may be empty.
type Delimiters struct {
	Title            string
	Description      string
	ErrorTitle       string
	ErrorDescription string
}

// EventTextState is an event's current text plus the delimiters in force.
// Text before the first delimiter belongs to the user and is preserved.
type EventTextState struct {
	Title       string
	Description string
	Delimiters  Delimiters
}

// UserTitle returns the trimmed title text before any delimiter.
func (s EventTextState) UserTitle() string {
	return strings.TrimSpace(cutAtFirst(s.Title, s.Delimiters.Title, s.Delimiters.ErrorTitle))
}

// UserDescription returns the description text before any delimiter.
func (s EventTextState) UserDescription() string {
	return cutAtFirst(s.Description, s.Delimiters.Description, s.Delimiters.ErrorDescription)
}

// MergeTitle replaces everything from the first delimiter onward with the
// title delimiter and suffix. Merging the same suffix again is a no-op.
func MergeTitle(s EventTextState, suffix string) string {
	return s.UserTitle() + s.Delimiters.Title + suffix
}

// MergeDescription is MergeTitle for the description. The suffix may itself
// contain the delimiter; only the first occurrence marks the cut.
func MergeDescription(s EventTextState, suffix string) string {
	return s.UserDescription() + s.Delimiters.Description + suffix
}

// MergeError writes the error marker into the title and an error block into
// the description, cutting at the same place as the normal merge so
// repeated failures replace each other.
func MergeError(s EventTextState, message string, at time.Time) (title, description string) {
	title = s.UserTitle() + s.Delimiters.ErrorTitle
	description = s.UserDescription() + s.Delimiters.ErrorDescription +
		"\nError At: " + at.Format(StampLayout) + "\n" + message
	return title, description
}

// cutAtFirst returns text before the earliest occurrence of any non-empty
// delimiter, or text unchanged when none occurs.
func cutAtFirst(text string, delims ...string) string {
	cut := len(text)
	for _, d := range delims {
		if d == "" {
			continue
		}
		if i := strings.Index(text, d); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}
