// Package aozora removes Aozora Bunko ruby and editorial annotations.
package aozora

import (
	"regexp"

	"github.com/custodia-labs/aobun/internal/core/ports/driven"
)

// Ensure Stripper implements the interface.
var _ driven.Stripper = (*Stripper)(nil)

// Rule is a single substitution: every match of Pattern is deleted.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Rule names.
const (
	RuleRuby          = "ruby"
	RuleRubyMarker    = "ruby-marker"
	RuleEditorialNote = "editorial-note"
)

// defaultRules are applied in order. Spans are matched lazily and
// never cross a line break, so an unclosed bracket only survives
// on its own line.
var defaultRules = []Rule{
	{Name: RuleRuby, Pattern: regexp.MustCompile(`《.*?》`)},
	{Name: RuleRubyMarker, Pattern: regexp.MustCompile(`｜`)},
	{Name: RuleEditorialNote, Pattern: regexp.MustCompile(`［.*?］`)},
}

// Stripper removes ruby readings, ruby start markers and editorial notes.
type Stripper struct {
	rules []Rule
}

// New creates a stripper with the Aozora Bunko rule set.
func New() *Stripper {
	return &Stripper{rules: defaultRules}
}

// Strip returns text with every rule applied in sequence.
func (s *Stripper) Strip(text string) string {
	for _, r := range s.rules {
		text = r.Pattern.ReplaceAllLiteralString(text, "")
	}
	return text
}

// Rules returns rule names in application order.
func (s *Stripper) Rules() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.Name
	}
	return names
}
