package richtext

import (
	"html"
	"regexp"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

var markupPattern = regexp.MustCompile(`<[^>]*>`)

// DetectFormat guesses the format of content by scanning for markup. It is
// only used when a writer did not declare a format, or for rows stored
// before the format was recorded. Plain text containing a literal "<x>"
// is misclassified as rich.
func DetectFormat(content string) models.ContentFormat {
	if markupPattern.MatchString(content) {
		return models.ContentFormatRich
	}
	return models.ContentFormatPlain
}

// FormatOf returns the stored format of e, detecting it for legacy rows.
func FormatOf(e models.JournalEntry) models.ContentFormat {
	if e.ContentFormat.Valid() {
		return e.ContentFormat
	}
	return DetectFormat(e.Content)
}

// PromptBlock returns the editor markup inserted when a user starts an
// entry from a writing prompt.
func PromptBlock(prompt string) string {
	return "<p><strong>Prompt:</strong> " + html.EscapeString(prompt) + "</p><p><br></p>"
}
