// Package richtext interprets journal entry content. Rich content is an HTML
// fragment produced by the editor; Tokenize flattens it into styled segments
// for layout engines that do not understand HTML.
package richtext

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/AnshRaj112/serenify-journal/internal/models"
)

// Style is the font style of a text run.
type Style int

const (
	StyleNormal Style = iota
	StyleBold
	StyleItalic
	StyleBoldItalic
)

func (s Style) String() string {
	switch s {
	case StyleBold:
		return "bold"
	case StyleItalic:
		return "italic"
	case StyleBoldItalic:
		return "bold-italic"
	default:
		return "normal"
	}
}

// Bold reports whether the style has a bold weight.
func (s Style) Bold() bool { return s == StyleBold || s == StyleBoldItalic }

// Italic reports whether the style is slanted.
func (s Style) Italic() bool { return s == StyleItalic || s == StyleBoldItalic }

func (s Style) withBold() Style {
	if s.Italic() {
		return StyleBoldItalic
	}
	return StyleBold
}

func (s Style) withItalic() Style {
	if s.Bold() {
		return StyleBoldItalic
	}
	return StyleItalic
}

// Kind identifies a segment type.
type Kind int

const (
	KindText Kind = iota
	KindNewline
	KindBullet
	KindNumber
	KindQuote
)

// Bullet is the marker text emitted for unordered list items.
const Bullet = "• "

// Segment is one token of flattened rich text. Text runs carry a style;
// bullet and number segments carry their marker text; quote segments carry
// the quoted text without quotation marks.
type Segment struct {
	Kind  Kind
	Text  string
	Style Style
}

// String renders the segment as kind:"text", e.g. bold:"Hello" or newline.
func (s Segment) String() string {
	switch s.Kind {
	case KindNewline:
		return "newline"
	case KindBullet:
		return fmt.Sprintf("bullet:%q", s.Text)
	case KindNumber:
		return fmt.Sprintf("number:%q", s.Text)
	case KindQuote:
		return fmt.Sprintf("quote:%q", s.Text)
	default:
		return fmt.Sprintf("%s:%q", s.Style, s.Text)
	}
}

var fragmentContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// Tokenize parses an HTML fragment and flattens it into segments. It never
// fails: malformed markup is repaired by the parser and unknown elements
// contribute their children only.
func Tokenize(fragment string) []Segment {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), fragmentContext)
	if err != nil {
		// only reader errors surface here; fall back to the raw text
		return textRun(fragment)
	}

	t := &tokenizer{}
	for _, n := range nodes {
		t.node(n, StyleNormal, true)
	}
	return t.segments
}

// Segments returns the segments for content in the given format. Plain
// content is taken literally; its line breaks become newline segments.
func Segments(content string, format models.ContentFormat) []Segment {
	if format == models.ContentFormatRich {
		return Tokenize(content)
	}
	return plainLines(content)
}

func plainLines(content string) []Segment {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	out := make([]Segment, 0, 2*len(lines))
	for i, line := range lines {
		if i > 0 {
			out = append(out, Segment{Kind: KindNewline})
		}
		out = append(out, textRun(line)...)
	}
	return out
}

func textRun(content string) []Segment {
	if content == "" {
		return nil
	}
	return []Segment{{Kind: KindText, Text: content, Style: StyleNormal}}
}

type tokenizer struct {
	segments []Segment
}

func (t *tokenizer) emit(s Segment) {
	t.segments = append(t.segments, s)
}

func (t *tokenizer) newline() {
	t.emit(Segment{Kind: KindNewline})
}

// node processes n. container is true when n sits directly in the fragment
// root or a list, where whitespace-only text is layout noise.
func (t *tokenizer) node(n *html.Node, style Style, container bool) {
	switch n.Type {
	case html.TextNode:
		text := collapseSpace(n.Data)
		if text == "" || (container && strings.TrimSpace(text) == "") {
			return
		}
		t.emit(Segment{Kind: KindText, Text: text, Style: style})
	case html.ElementNode:
		t.element(n, style)
	}
}

func (t *tokenizer) children(n *html.Node, style Style) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t.node(c, style, false)
	}
}

func (t *tokenizer) element(n *html.Node, style Style) {
	switch n.DataAtom {
	case atom.Strong, atom.B:
		t.children(n, style.withBold())
	case atom.Em, atom.I:
		t.children(n, style.withItalic())
	case atom.P, atom.Div:
		t.children(n, style)
		t.newline()
	case atom.Br:
		t.newline()
	case atom.Ul:
		t.list(n, style, false)
	case atom.Ol:
		t.list(n, style, true)
	case atom.Li:
		// stray item outside a list
		t.item(n, style, Segment{Kind: KindBullet, Text: Bullet})
	case atom.Blockquote:
		if text := strings.TrimSpace(collapseSpace(textContent(n))); text != "" {
			t.emit(Segment{Kind: KindQuote, Text: text, Style: StyleItalic})
		}
	default:
		t.children(n, style)
	}
}

func (t *tokenizer) list(n *html.Node, style Style, ordered bool) {
	counter := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			t.node(c, style, true)
			continue
		}
		marker := Segment{Kind: KindBullet, Text: Bullet}
		if ordered {
			counter++
			marker = Segment{Kind: KindNumber, Text: strconv.Itoa(counter) + ". "}
		}
		t.item(c, style, marker)
	}
}

func (t *tokenizer) item(n *html.Node, style Style, marker Segment) {
	t.emit(marker)
	t.children(n, style)
	t.newline()
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// collapseSpace folds every run of whitespace, including non-breaking
// spaces, into a single space. Leading and trailing spaces are kept.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\u00a0':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}
