package pdfexport

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AnshRaj112/serenify-journal/internal/analytics"
	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/richtext"
)

// ErrGenerate wraps every failure while building a document.
var ErrGenerate = errors.New("failed to generate PDF")

// DefaultCollectionTitle is used when a multi-entry export has no title.
const DefaultCollectionTitle = "Journal Entries"

const (
	headerDateLayout = "January 2, 2006"
	footerLayout     = "Jan 2, 2006 at 3:04 PM"
)

// File is a finished document ready to be downloaded.
type File struct {
	Name string
	Data []byte
}

// Exporter renders journal entries as A4 documents. Dates are shown in
// Location.
type Exporter struct {
	Location *time.Location
	Now      func() time.Time
}

// NewExporter returns an Exporter for loc, falling back to UTC.
func NewExporter(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{Location: loc, Now: time.Now}
}

func (x *Exporter) now() time.Time {
	if x.Now == nil {
		return time.Now().In(x.Location)
	}
	return x.Now().In(x.Location)
}

func guard(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrGenerate, r)
	}
}

// Entry renders a single entry.
func (x *Exporter) Entry(e models.JournalEntry) (f *File, err error) {
	defer guard(&err)

	c := newCanvas(e.Title)
	c.addPage()
	created := e.CreatedAt.In(x.Location)

	c.font(richtext.StyleNormal, 12)
	c.gray(100)
	c.text(pageMargin, "My Journal")
	c.textRight(created.Format(headerDateLayout))
	c.y += 15

	c.lines(WrapText(e.Title, richtext.StyleBold, c.measurer(24), c.contentWidth()), 24, 10, 0)
	c.y += 5

	if e.HasMood() {
		c.font(richtext.StyleNormal, 12)
		c.gray(80)
		c.text(pageMargin, "Mood: "+models.MoodLabel(e.Mood))
		c.y += 8
	}
	c.font(richtext.StyleNormal, 10)
	c.gray(120)
	if e.IsPrivate {
		c.text(pageMargin, "Private Entry")
	} else {
		c.text(pageMargin, "Public Entry")
	}
	c.y += 10
	c.rule()
	c.y += 10

	x.body(c, e, 11, 6)

	c.y = c.height - footerOffset
	c.font(richtext.StyleNormal, 9)
	c.gray(150)
	c.text(pageMargin, "Created: "+created.Format(footerLayout))
	if e.WasEdited() {
		c.textRight("Updated: " + e.UpdatedAt.In(x.Location).Format(footerLayout))
	}

	data, err := c.bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	return &File{Name: EntryFilename(e, x.Location), Data: data}, nil
}

// Entries renders a collection: a title page, an analytics page when there
// is anything to analyze, then every entry in the order given.
func (x *Exporter) Entries(entries []models.JournalEntry, title string) (f *File, err error) {
	defer guard(&err)

	if title == "" {
		title = DefaultCollectionTitle
	}
	c := newCanvas(title)

	x.titlePage(c, entries, title)
	if len(entries) > 0 {
		x.analyticsPage(c, entries)

		c.addPage()
		for i, e := range entries {
			if i > 0 {
				c.y += 5
				c.ensure(10)
				c.rule()
				c.y += 10
			}
			c.lines(WrapText(e.Title, richtext.StyleBold, c.measurer(18), c.contentWidth()), 18, 8, 0)

			meta := e.CreatedAt.In(x.Location).Format(headerDateLayout)
			if e.HasMood() {
				meta += " • " + models.MoodLabel(e.Mood)
			}
			c.ensure(8)
			c.font(richtext.StyleNormal, 10)
			c.gray(100)
			c.text(pageMargin, meta)
			c.y += 8

			x.body(c, e, 10, 5)
		}
	}

	data, err := c.bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	return &File{Name: CollectionFilename(title, x.now()), Data: data}, nil
}

func (x *Exporter) body(c *canvas, e models.JournalEntry, size, lineHeight float64) {
	segs := richtext.Segments(e.Content, richtext.FormatOf(e))
	c.lines(Wrap(segs, c.measurer(size), c.contentWidth(), quoteIndent), size, lineHeight, 0)
}

func (x *Exporter) titlePage(c *canvas, entries []models.JournalEntry, title string) {
	c.addPage()
	mid := c.height / 2

	c.y = mid - 20
	c.font(richtext.StyleBold, 28)
	c.gray(0)
	c.textCenter(title)

	c.y = mid
	c.font(richtext.StyleNormal, 16)
	c.gray(80)
	c.textCenter(entryCount(len(entries)))

	c.y = mid + 15
	c.font(richtext.StyleNormal, 12)
	c.gray(120)
	if len(entries) == 0 {
		c.textCenter("No entries")
		return
	}
	c.textCenter(dateRange(entries, x.Location))
}

// dateRange spans the earliest to the latest creation date. A single entry
// shows just its own date.
func dateRange(entries []models.JournalEntry, loc *time.Location) string {
	if len(entries) == 0 {
		return ""
	}
	first, last := entries[0].CreatedAt, entries[0].CreatedAt
	if len(entries) == 1 {
		return first.In(loc).Format(headerDateLayout)
	}
	for _, e := range entries[1:] {
		if e.CreatedAt.Before(first) {
			first = e.CreatedAt
		}
		if e.CreatedAt.After(last) {
			last = e.CreatedAt
		}
	}
	return first.In(loc).Format(headerDateLayout) + " - " + last.In(loc).Format(headerDateLayout)
}

func (x *Exporter) analyticsPage(c *canvas, entries []models.JournalEntry) {
	r := analytics.Analyze(entries, analytics.Options{Location: x.Location})

	c.addPage()
	heading := func(s string, size float64) {
		c.ensure(size / 2)
		c.font(richtext.StyleBold, size)
		c.gray(0)
		c.text(pageMargin, s)
		c.y += size / 2
	}
	row := func(s string) {
		c.ensure(7)
		c.font(richtext.StyleNormal, 11)
		c.gray(40)
		c.text(pageMargin, s)
		c.y += 7
	}

	heading("Mood Analytics", 20)
	c.y += 2

	heading("Emotional Balance", 14)
	b := r.Balance
	row(fmt.Sprintf("Positive: %d%% (%d)", b.PositivePercent, b.Positive))
	row(fmt.Sprintf("Challenging: %d%% (%d)", b.ChallengingPercent, b.Challenging))
	row(fmt.Sprintf("Neutral: %d%% (%d)", b.NeutralPercent, b.Neutral))
	c.y += 5

	heading("Top Moods", 14)
	for i, mc := range r.TopMoods {
		row(fmt.Sprintf("%d. %s - %s (%d%%)", i+1, mc.Label, entryCount(mc.Count), mc.Percent))
	}
	c.y += 5

	heading("Insights", 14)
	for _, in := range r.Insights {
		segs := []richtext.Segment{
			{Kind: richtext.KindBullet, Text: richtext.Bullet},
			{Kind: richtext.KindText, Text: in},
		}
		c.lines(Wrap(segs, c.measurer(11), c.contentWidth(), quoteIndent), 11, 6, 40)
		c.y += 1
	}
}

func entryCount(n int) string {
	if n == 1 {
		return "1 Entry"
	}
	return strconv.Itoa(n) + " Entries"
}
