package journal

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/fxjournal/journal-api/internal/types"
)

// SortKey selects the ordering of a trade collection.
type SortKey string

const (
	SortDateDesc SortKey = "dateDesc" // default
	SortDateAsc  SortKey = "dateAsc"
	SortRRDesc   SortKey = "rrDesc"
	SortRRAsc    SortKey = "rrAsc"
	SortResult   SortKey = "result" // wins first, ties by date descending
)

// Filter narrows a trade collection by exact-match and date-range predicates.
// A zero-valued field matches everything.
type Filter struct {
	Session   string
	Pair      string
	TradeType string
	Result    string
	From      *time.Time // inclusive
	To        *time.Time // inclusive
}

// Matches reports whether a single trade passes every set predicate.
func (f Filter) Matches(t types.Trade) bool {
	if f.Session != "" && t.Session != f.Session {
		return false
	}
	if f.Pair != "" && t.Pair != f.Pair {
		return false
	}
	if f.TradeType != "" && t.TradeType != f.TradeType {
		return false
	}
	if f.Result != "" && t.Result != f.Result {
		return false
	}
	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && t.Date.After(*f.To) {
		return false
	}
	return true
}

// Apply returns the subset of trades passing the filter. The input slice is
// never mutated.
func (f Filter) Apply(trades []types.Trade) []types.Trade {
	out := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

var rrPattern = regexp.MustCompile(`^\s*(\d+)\s*:\s*(\d+)\s*$`)

// ParseRR parses a free-text "A:B" risk:reward ratio into the numeric ratio
// A/B. The second return is false for missing, malformed, or
// zero-denominator values.
func ParseRR(rr string) (float64, bool) {
	m := rrPattern.FindStringSubmatch(rr)
	if m == nil {
		return 0, false
	}
	a, _ := strconv.ParseFloat(m[1], 64)
	b, _ := strconv.ParseFloat(m[2], 64)
	if b == 0 {
		return 0, false
	}
	return a / b, true
}

// rrOrWorst maps a trade's ratio onto the sort axis, pushing unparsable
// values to the worst end of the requested direction.
func rrOrWorst(rr string, worst float64) float64 {
	if v, ok := ParseRR(rr); ok {
		return v
	}
	return worst
}

// Sort returns a reordered copy of trades. Unknown keys fall back to the
// default date-descending order.
func Sort(trades []types.Trade, key SortKey) []types.Trade {
	out := make([]types.Trade, len(trades))
	copy(out, trades)

	switch key {
	case SortDateAsc:
		sort.Slice(out, func(i, j int) bool {
			return out[i].Date.Before(out[j].Date)
		})
	case SortRRDesc:
		sort.Slice(out, func(i, j int) bool {
			return rrOrWorst(out[i].RR, math.Inf(-1)) > rrOrWorst(out[j].RR, math.Inf(-1))
		})
	case SortRRAsc:
		sort.Slice(out, func(i, j int) bool {
			return rrOrWorst(out[i].RR, math.Inf(1)) < rrOrWorst(out[j].RR, math.Inf(1))
		})
	case SortResult:
		sort.Slice(out, func(i, j int) bool {
			ri, rj := resultRank(out[i]), resultRank(out[j])
			if ri != rj {
				return ri < rj
			}
			return out[i].Date.After(out[j].Date)
		})
	default:
		sort.Slice(out, func(i, j int) bool {
			return out[i].Date.After(out[j].Date)
		})
	}
	return out
}

func resultRank(t types.Trade) int {
	if types.IsWin(t.Result) {
		return 0
	}
	return 1
}
