// Package stats derives the aggregate win/loss figures for a collection of
// trade records. Everything here is a pure function of its input.
package stats

import (
	"math"

	"github.com/fxjournal/journal-api/internal/types"
)

// Stats holds the derived aggregates for a set of trades.
type Stats struct {
	Wins    int
	Losses  int
	Total   int
	WinRate int // rounded percentage, 0 when Total is 0
}

// Compute counts wins and losses by result classification. A record whose
// result matches neither marker counts toward the total only.
func Compute(trades []types.Trade) Stats {
	s := Stats{Total: len(trades)}
	for _, t := range trades {
		switch {
		case types.IsWin(t.Result):
			s.Wins++
		case types.IsLoss(t.Result):
			s.Losses++
		}
	}
	if s.Total > 0 {
		s.WinRate = int(math.Round(float64(s.Wins) / float64(s.Total) * 100))
	}
	return s
}

// Response converts the aggregates into the wire shape.
func (s Stats) Response() types.StatsResponse {
	return types.StatsResponse{
		Wins:    s.Wins,
		Losses:  s.Losses,
		Total:   s.Total,
		WinRate: s.WinRate,
	}
}
