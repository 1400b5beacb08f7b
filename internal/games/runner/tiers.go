package runner

import (
	"sort"

	"github.com/vovakirdan/candle-run/internal/config"
	"github.com/vovakirdan/candle-run/internal/core"
)

// Tier is one resolved row of a world or speed table.
type Tier struct {
	Threshold  int
	Multiplier float64
	Label      string
	Color      core.Color
}

// TierTable is sorted by Threshold, starting at 0.
type TierTable []Tier

// NewTierTable converts config rows. Callers validate the rows first
// (config.ValidateTiers); an empty input yields a single neutral tier.
func NewTierTable(rows []config.Tier) TierTable {
	if len(rows) == 0 {
		return TierTable{{Threshold: 0, Multiplier: 1}}
	}
	t := make(TierTable, len(rows))
	for i, r := range rows {
		t[i] = Tier{
			Threshold:  r.Threshold,
			Multiplier: r.Multiplier,
			Label:      r.Label,
			Color:      core.ParseColor(r.Color),
		}
	}
	return t
}

// Index returns the position of the last tier whose threshold is <= score.
// The zero-threshold sentinel guarantees a match for any non-negative score.
func (t TierTable) Index(score int) int {
	i := sort.Search(len(t), func(i int) bool { return t[i].Threshold > score })
	return max(i-1, 0)
}

// At returns the active tier for score.
func (t TierTable) At(score int) Tier {
	return t[t.Index(score)]
}
