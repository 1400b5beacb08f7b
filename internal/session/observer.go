package session

import "github.com/vovakirdan/candle-run/internal/games/runner"

// Observer receives throttled score updates.
type Observer interface {
	OnScore(view runner.ScoreView)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(view runner.ScoreView)

// OnScore calls f.
func (f ObserverFunc) OnScore(view runner.ScoreView) {
	f(view)
}

// throttle gates observer callbacks on simulated time.
type throttle struct {
	interval float64
	next     float64
}

// due reports whether a callback is allowed at elapsed and, if so, arms the next one.
func (t *throttle) due(elapsed float64) bool {
	if elapsed < t.next {
		return false
	}
	t.next = elapsed + t.interval
	return true
}

func (t *throttle) reset() {
	t.next = 0
}
