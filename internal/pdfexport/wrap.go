package pdfexport

import (
	"strings"
	"unicode"

	"github.com/AnshRaj112/serenify-journal/internal/richtext"
)

// Measurer reports the rendered width of text in a style at the current
// font size.
type Measurer interface {
	Width(text string, style richtext.Style) float64
}

// Run is a piece of a line drawn in one style.
type Run struct {
	Text  string
	Style richtext.Style
}

// Line is one laid-out output line. Indent is measured from the left margin
// and Width is the measured width of the runs.
type Line struct {
	Runs   []Run
	Indent float64
	Width  float64
	Quote  bool
}

// Blank reports whether the line draws nothing.
func (l Line) Blank() bool {
	return len(l.Runs) == 0
}

// Text returns the concatenated run text.
func (l Line) Text() string {
	var b strings.Builder
	for _, r := range l.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

const (
	openQuote  = "“"
	closeQuote = "”"
)

// Wrap lays segments out into lines no wider than maxWidth. Words are packed
// greedily; a word wider than a whole line is split between characters.
// Newline segments force a break, and list markers and quotes always start
// a new line. Quote lines are indented by quoteIndent.
func Wrap(segments []richtext.Segment, m Measurer, maxWidth, quoteIndent float64) []Line {
	w := &wrapper{m: m, maxWidth: maxWidth}
	for _, seg := range segments {
		switch seg.Kind {
		case richtext.KindText:
			w.text(seg.Text, seg.Style)
		case richtext.KindNewline:
			w.breakLine()
		case richtext.KindBullet, richtext.KindNumber:
			w.flush()
			w.hang = 0
			w.cur = Line{}
			w.word(seg.Text, seg.Style, false)
			w.hang = w.cur.Width
			w.pendingSpace = false
		case richtext.KindQuote:
			w.flush()
			w.hang = 0
			w.cur = Line{Indent: quoteIndent, Quote: true}
			w.pendingSpace = false
			w.text(openQuote+seg.Text+closeQuote, richtext.StyleItalic)
			w.flush()
			w.cur = Line{}
		}
	}
	w.flush()
	return w.lines
}

// WrapText wraps a single run of text.
func WrapText(text string, style richtext.Style, m Measurer, maxWidth float64) []Line {
	return Wrap([]richtext.Segment{{Kind: richtext.KindText, Text: text, Style: style}}, m, maxWidth, 0)
}

type wrapper struct {
	m        Measurer
	maxWidth float64

	lines []Line
	cur   Line
	// hang is the indent of continuation lines inside a list item.
	hang         float64
	pendingSpace bool
}

func (w *wrapper) available() float64 {
	return w.maxWidth - w.cur.Indent
}

// breakLine ends the current line. A break on an empty line produces a
// blank line, but never two blank lines in a row.
func (w *wrapper) breakLine() {
	if !w.cur.Blank() {
		w.flush()
	} else if len(w.lines) > 0 && !w.lines[len(w.lines)-1].Blank() {
		w.lines = append(w.lines, Line{})
	}
	w.hang = 0
	w.cur = Line{}
	w.pendingSpace = false
}

func (w *wrapper) flush() {
	if w.cur.Blank() {
		return
	}
	w.lines = append(w.lines, w.cur)
	w.cur = Line{Indent: w.cur.Indent, Quote: w.cur.Quote}
	if !w.cur.Quote {
		w.cur.Indent = w.hang
	}
	w.pendingSpace = false
}

func (w *wrapper) text(text string, style richtext.Style) {
	if text == "" {
		return
	}
	lead := unicode.IsSpace(firstRune(text))
	words := strings.Fields(text)
	for i, word := range words {
		space := w.pendingSpace || lead || i > 0
		w.word(word, style, space)
	}
	w.pendingSpace = unicode.IsSpace(lastRune(text)) || (len(words) == 0 && (w.pendingSpace || lead))
}

// word places one word, preceded by a space when space is true and the line
// is not empty.
func (w *wrapper) word(word string, style richtext.Style, space bool) {
	if w.cur.Blank() {
		space = false
	}
	piece := word
	if space {
		piece = " " + word
	}
	width := w.m.Width(piece, style)
	if w.cur.Width+width <= w.available() {
		w.appendRun(piece, style, width)
		return
	}

	if !w.cur.Blank() {
		w.flush()
	}
	width = w.m.Width(word, style)
	if width <= w.available() {
		w.appendRun(word, style, width)
		return
	}
	w.split(word, style)
}

// split breaks a word that is wider than a whole line between characters.
// Every line receives at least one character.
func (w *wrapper) split(word string, style richtext.Style) {
	runes := []rune(word)
	for len(runes) > 0 {
		n := 1
		for n < len(runes) && w.m.Width(string(runes[:n+1]), style) <= w.available() {
			n++
		}
		chunk := string(runes[:n])
		w.appendRun(chunk, style, w.m.Width(chunk, style))
		runes = runes[n:]
		if len(runes) > 0 {
			w.flush()
		}
	}
}

func (w *wrapper) appendRun(text string, style richtext.Style, width float64) {
	if n := len(w.cur.Runs); n > 0 && w.cur.Runs[n-1].Style == style {
		w.cur.Runs[n-1].Text += text
	} else {
		w.cur.Runs = append(w.cur.Runs, Run{Text: text, Style: style})
	}
	w.cur.Width += width
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	r := []rune(s)
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1]
}
