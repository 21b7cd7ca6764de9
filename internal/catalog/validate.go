package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ReasonInvalidUTF8 marks fields whose text is not valid UTF-8.
const ReasonInvalidUTF8 = "not valid UTF-8 text"

// ValidationError lists the fields that failed validation. An empty Reason
// means they were missing or blank.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid fields (%s): %s", e.Reason, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// InvalidText names every text field of s, comments included, that is not
// valid UTF-8. Such text cannot be stored without being altered.
func InvalidText(s Story) []string {
	var bad []string
	check := func(name, v string) {
		if !utf8.ValidString(v) {
			bad = append(bad, name)
		}
	}
	check("id", s.ID)
	check("title", s.Title)
	check("author", s.Author)
	check("description", s.Description)
	check("category", s.Category)
	check("cover", s.CoverImage)
	check("content", s.Content)
	for i, c := range s.Comments {
		check(fmt.Sprintf("comments[%d].id", i), c.ID)
		check(fmt.Sprintf("comments[%d].user", i), c.User)
		check(fmt.Sprintf("comments[%d].text", i), c.Text)
	}
	return bad
}

// Validate checks the fields a story must carry before it is stored.
func Validate(s Story) error {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	check("id", s.ID)
	check("title", s.Title)
	check("author", s.Author)
	check("description", s.Description)
	check("cover", s.CoverImage)
	check("content", s.Content)
	if s.CreatedAt.IsZero() {
		missing = append(missing, "created_at")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	if bad := InvalidText(s); len(bad) > 0 {
		return &ValidationError{Fields: bad, Reason: ReasonInvalidUTF8}
	}
	if s.Views < 0 || s.Likes < 0 || s.Dislikes < 0 || s.Downloads < 0 {
		return fmt.Errorf("story %s: counters must not be negative", s.ID)
	}
	return nil
}
