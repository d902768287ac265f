package richtext

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips rich content down to the markup the editor produces.
// Scripts, styles, attributes and event handlers are removed. Safe for
// concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// No attribute survives the policy, so quotes can only occur in text nodes,
// where the editor leaves them literal.
var quoteEntities = strings.NewReplacer("&#39;", "'", "&#34;", `"`)

// NewSanitizer builds the allow-list policy for entry content.
func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "div",
		"strong", "b", "em", "i", "u",
		"ul", "ol", "li",
		"blockquote",
	)
	return &Sanitizer{policy: p}
}

// Sanitize returns a safe version of the fragment. The same input always
// yields the same output. Text is serialized the way the editor does it:
// only &, < and > are escaped.
func (s *Sanitizer) Sanitize(fragment string) string {
	if fragment == "" {
		return ""
	}
	return quoteEntities.Replace(s.policy.Sanitize(fragment))
}
