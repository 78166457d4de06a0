package textclean_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/book-expert/pdf-clean-service/internal/textclean"
)

func TestNewCleaner(t *testing.T) {
	t.Parallel()

	cleaner := textclean.NewCleaner()

	require.NotNil(t, cleaner)
}

func TestFilters_Order(t *testing.T) {
	t.Parallel()

	names := make([]string, 0)
	for _, filter := range textclean.Filters() {
		names = append(names, filter.Name)
	}

	require.Equal(t, []string{
		"citations",
		"links",
		"captions",
		"numeric-blocks",
		"tabular-blocks",
		"headers-footers",
		"duplicate-lines",
		"whitespace",
	}, names)
}

func TestClean_EndToEnd(t *testing.T) {
	t.Parallel()

	raw := "Journal of Examples\n" +
		"Abstract\n" +
		"We study the effect (Smith et al., 2020) of cleaning.\n" +
		"We study the effect (Smith et al., 2020) of cleaning.\n" +
		"12.3 45.6\n" +
		"12.4 45.7\n" +
		"12.5 45.8\n" +
		"col1   col2\n" +
		"Figure 1 The trend over time\n" +
		"See https://example.com for data.\n" +
		"Page 2 of 2\n" +
		"References\n" +
		"[1] Smith 2020\n"

	expected := "Abstract\n" +
		"We study the effect () of cleaning.\n" +
		"\n" +
		"See for data."

	cleaner := textclean.NewCleaner()

	require.Equal(t, expected, cleaner.Clean(raw))
}

func TestClean_CaptionRunsBeforeDeduplication(t *testing.T) {
	t.Parallel()

	// Both caption lines are emptied by caption removal; the resulting
	// adjacent blank lines then collapse in the duplicate pass.
	raw := "Abstract\n" +
		"body line one\n" +
		"Figure 1 caption\n" +
		"Figure 1 caption\n" +
		"body line two\n"

	expected := "Abstract\n" +
		"body line one\n" +
		"\n" +
		"body line two"

	cleaner := textclean.NewCleaner()

	require.Equal(t, expected, cleaner.Clean(raw))
}

func TestApplyFilters_Idempotent(t *testing.T) {
	t.Parallel()

	messy := "We study the effect (Smith et al., 2020) of cleaning.\n" +
		"1.1 2.2\n" +
		"3.3 4.4\n" +
		"5.5 6.6\n" +
		"See https://example.com   for    data.\n" +
		"duplicate line\n" +
		"duplicate line\n"

	cleaner := textclean.NewCleaner()

	once := cleaner.ApplyFilters(messy)
	twice := cleaner.ApplyFilters(once)

	require.Equal(t, once, twice)
}
