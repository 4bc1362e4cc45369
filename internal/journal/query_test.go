package journal

import (
	"testing"
	"time"

	"github.com/fxjournal/journal-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func sampleTrades() []types.Trade {
	return []types.Trade{
		{TradeID: "a", Date: day(0), Session: "London", Pair: "EUR-USD", TradeType: "Long 🟢", Result: "TP ✅", RR: "2:1"},
		{TradeID: "b", Date: day(1), Session: "New York", Pair: "GBP-USD", TradeType: "Short 🔴", Result: "SL ❌", RR: "1:2"},
		{TradeID: "c", Date: day(2), Session: "London", Pair: "GBP-USD", TradeType: "Long 🟢", Result: "SL ❌", RR: "1:0"},
		{TradeID: "d", Date: day(3), Session: "London", Pair: "EUR-USD", TradeType: "Short 🔴", Result: "TP ✅", RR: ""},
	}
}

func ids(trades []types.Trade) []string {
	out := make([]string, len(trades))
	for i, t := range trades {
		out[i] = t.TradeID
	}
	return out
}

func TestParseRR(t *testing.T) {
	tests := []struct {
		rr   string
		want float64
		ok   bool
	}{
		{"2:1", 2.0, true},
		{"1:2", 0.5, true},
		{" 3 : 2 ", 1.5, true},
		{"1:0", 0, false}, // zero denominator
		{"3-2", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.rr, func(t *testing.T) {
			got, ok := ParseRR(tc.rr)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}

func TestFilterUnsetMatchesEverything(t *testing.T) {
	trades := sampleTrades()
	assert.Equal(t, trades, Filter{}.Apply(trades))
}

func TestFilterIsSubsetAndIdempotent(t *testing.T) {
	trades := sampleTrades()
	f := Filter{Session: "London"}

	once := f.Apply(trades)
	require.NotEmpty(t, once)
	assert.Less(t, len(once), len(trades))
	for _, tr := range once {
		assert.Equal(t, "London", tr.Session)
	}

	twice := f.Apply(once)
	assert.Equal(t, once, twice)
}

func TestFilterDateRangeInclusive(t *testing.T) {
	trades := sampleTrades()
	from, to := day(1), day(2)
	got := Filter{From: &from, To: &to}.Apply(trades)
	assert.Equal(t, []string{"b", "c"}, ids(got))
}

func TestFilterCombined(t *testing.T) {
	trades := sampleTrades()
	got := Filter{Session: "London", Result: "TP ✅"}.Apply(trades)
	assert.Equal(t, []string{"a", "d"}, ids(got))
}

func TestSortDate(t *testing.T) {
	trades := sampleTrades()

	assert.Equal(t, []string{"d", "c", "b", "a"}, ids(Sort(trades, SortDateDesc)))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(Sort(trades, SortDateAsc)))
	// unknown key falls back to date descending
	assert.Equal(t, []string{"d", "c", "b", "a"}, ids(Sort(trades, SortKey("bogus"))))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	trades := sampleTrades()
	Sort(trades, SortDateAsc)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(trades))
}

func TestSortRRUnparsableSortsWorstBothDirections(t *testing.T) {
	trades := sampleTrades() // c ("1:0") and d ("") are unparsable

	desc := ids(Sort(trades, SortRRDesc))
	assert.Equal(t, "a", desc[0]) // 2.0 first
	assert.Equal(t, "b", desc[1]) // 0.5 next
	assert.ElementsMatch(t, []string{"c", "d"}, desc[2:])

	asc := ids(Sort(trades, SortRRAsc))
	assert.Equal(t, "b", asc[0])
	assert.Equal(t, "a", asc[1])
	assert.ElementsMatch(t, []string{"c", "d"}, asc[2:])
}

func TestSortResultWinsFirstTiesByDateDesc(t *testing.T) {
	trades := sampleTrades()
	got := ids(Sort(trades, SortResult))
	// wins d (day 3) then a (day 0); losses c (day 2) then b (day 1)
	assert.Equal(t, []string{"d", "a", "c", "b"}, got)
}
