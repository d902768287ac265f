package richtext

import (
	"strings"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

// ExcerptLength is the preview length used on entry cards.
const ExcerptLength = 150

// PlainText returns content with markup removed and whitespace collapsed.
// Block boundaries become single spaces.
func PlainText(content string, format models.ContentFormat) string {
	if format != models.ContentFormatRich {
		return strings.TrimSpace(collapseSpace(content))
	}

	var b strings.Builder
	for _, seg := range Tokenize(content) {
		switch seg.Kind {
		case KindText:
			b.WriteString(seg.Text)
		case KindQuote:
			b.WriteString(" " + seg.Text + " ")
		case KindNewline, KindBullet, KindNumber:
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(collapseSpace(b.String()))
}

// Excerpt returns at most max characters of the entry's plain text,
// followed by "..." when it was cut.
func Excerpt(content string, format models.ContentFormat, max int) string {
	text := PlainText(content, format)
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	return strings.TrimRight(string(runes[:max]), " ") + "..."
}
