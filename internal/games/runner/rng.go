package runner

import "math/rand"

// Source supplies uniform random values in [0, 1).
// Tests inject fixed sequences; play uses a seeded generator.
type Source interface {
	Next() float64
}

// randSource adapts math/rand to Source.
type randSource struct {
	r *rand.Rand
}

// NewSource returns a deterministic Source for the given seed.
func NewSource(seed int64) Source {
	return &randSource{r: rand.New(rand.NewSource(seed))}
}

func (s *randSource) Next() float64 {
	return s.r.Float64()
}

// fxSeedSalt derives the cosmetic stream from the gameplay seed so particles
// never consume values from the spawn sequence.
const fxSeedSalt = 0x5eed_cafe

// Pick returns an index in [0, n) from a draw in [0, 1).
func Pick(r float64, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(r * float64(n))
	return max(0, min(i, n-1))
}
