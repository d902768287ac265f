package pdfexport

import (
	"strings"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

// SanitizeTitle lower-cases title and replaces every character outside
// [a-z0-9] with an underscore.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// EntryFilename names the document for a single entry.
func EntryFilename(e models.JournalEntry, loc *time.Location) string {
	return "journal_entry_" + e.CreatedAt.In(loc).Format("2006-01-02") + "_" + SanitizeTitle(e.Title) + ".pdf"
}

// CollectionFilename names a multi-entry document generated at now.
func CollectionFilename(title string, now time.Time) string {
	return SanitizeTitle(title) + "_" + now.Format("2006-01-02") + ".pdf"
}
