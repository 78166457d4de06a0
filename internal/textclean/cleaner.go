package textclean

// Filter is a named pure text transformation. Filters are applied in a fixed
// order; the order matters because earlier filters change which lines later
// filters see (caption removal runs before tabular suppression, for example).
type Filter struct {
	Name  string
	Apply func(string) string
}

// Filters returns the noise filter sequence in application order.
func Filters() []Filter {
	return []Filter{
		{Name: "citations", Apply: RemoveCitations},
		{Name: "links", Apply: RemoveLinks},
		{Name: "captions", Apply: RemoveCaptions},
		{Name: "numeric-blocks", Apply: RemoveNumericBlocks},
		{Name: "tabular-blocks", Apply: RemoveTabularBlocks},
		{Name: "headers-footers", Apply: RemoveHeadersFooters},
		{Name: "duplicate-lines", Apply: CollapseDuplicateLines},
		{Name: "whitespace", Apply: NormalizeWhitespace},
	}
}

// Cleaner composes boilerplate pruning with the noise filter sequence.
type Cleaner struct {
	filters []Filter
}

// NewCleaner creates a cleaner with the full filter sequence.
func NewCleaner() *Cleaner {
	return &Cleaner{filters: Filters()}
}

// Clean prunes boilerplate around the main content and applies every noise
// filter in order. The result has no leading or trailing whitespace, no run
// of three or more blank lines, and no run of repeated horizontal whitespace.
func (c *Cleaner) Clean(text string) string {
	text = FindMainStart(text)
	text = TruncateTrailingSections(text)

	return c.ApplyFilters(text)
}

// ApplyFilters runs the noise filter sequence without boilerplate pruning.
func (c *Cleaner) ApplyFilters(text string) string {
	for _, filter := range c.filters {
		text = filter.Apply(text)
	}

	return text
}
