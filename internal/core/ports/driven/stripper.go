package driven

// Stripper removes annotation markup from decoded text.
// Implementations must be safe for concurrent use.
type Stripper interface {
	// Strip returns text with every recognised annotation removed.
	// Unbalanced delimiters are left in place.
	Strip(text string) string

	// Rules returns the names of the substitution rules, in application order.
	Rules() []string
}
