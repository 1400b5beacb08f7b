package runner

// Slot is one candle inside a pattern, relative to the pattern start.
type Slot struct {
	Offset   float64
	Kind     CandleKind
	SizeMult float64
}

// Pattern is a hand-authored candle layout.
type Pattern []Slot

// MaxClearableSize is the largest size multiplier a single jump can clear.
const MaxClearableSize = 1.3

// MaxHazardSpan bounds the distance from the first hazard's left edge to the
// last hazard's right edge at the default candle width. Longer hazard runs
// cannot be cleared in one jump at top speed.
const MaxHazardSpan = 130.0

func hz(offset, size float64) Slot { return Slot{Offset: offset, Kind: Hazard, SizeMult: size} }
func rw(offset, size float64) Slot { return Slot{Offset: offset, Kind: Reward, SizeMult: size} }

// patternTiers is indexed by complexity. Tier 0 holds single candles only.
var patternTiers = [][]Pattern{
	{
		{hz(0, 1.0)},
		{hz(0, 0.8)},
		{hz(0, 1.2)},
		{rw(0, 1.0)},
		{hz(0, 0.7)},
	},
	{
		{hz(0, 1.0), hz(40, 0.9)},
		{hz(0, 1.0), rw(90, 1.0)},
		{rw(0, 1.0), hz(80, 1.0)},
		{hz(0, 0.8), hz(50, 1.1)},
		{rw(0, 0.9), rw(50, 0.9)},
	},
	{
		{hz(0, 0.8), hz(30, 1.0), hz(60, 1.2)},
		{hz(0, 1.0), rw(40, 0.8), hz(80, 1.0)},
		{rw(0, 1.0), rw(45, 1.0), rw(90, 1.0)},
		{hz(0, 1.1), hz(34, 1.1), rw(120, 1.0)},
	},
	{
		{hz(0, 0.9), hz(28, 0.9), hz(56, 0.9), hz(84, 0.9)},
		{hz(0, 0.8), hz(30, 1.1), hz(60, 1.3), hz(90, 0.9)},
		{hz(0, 1.0), rw(40, 0.9), hz(80, 1.0), rw(170, 1.0)},
		{rw(0, 1.0), hz(60, 1.2), hz(90, 1.2), rw(170, 1.0)},
	},
}

// Patterns returns the layouts available at a complexity tier.
// Out-of-range tiers are clamped.
func Patterns(complexity int) []Pattern {
	complexity = max(0, min(complexity, len(patternTiers)-1))
	return patternTiers[complexity]
}

// Extent returns the right edge of the pattern for a base candle width.
func (p Pattern) Extent(baseWidth float64) float64 {
	var right float64
	for _, s := range p {
		right = max(right, s.Offset+baseWidth*s.SizeMult)
	}
	return right
}

// HazardSpan returns the horizontal run covered by hazards, or 0 if there are none.
func (p Pattern) HazardSpan(baseWidth float64) float64 {
	first, last := -1.0, -1.0
	for _, s := range p {
		if s.Kind != Hazard {
			continue
		}
		if first < 0 || s.Offset < first {
			first = s.Offset
		}
		last = max(last, s.Offset+baseWidth*s.SizeMult)
	}
	if first < 0 {
		return 0
	}
	return last - first
}
