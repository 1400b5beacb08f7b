// Package tui hosts a candle run session in a Bubble Tea program, locally
// or over SSH.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/candle-run/internal/config"
	"github.com/vovakirdan/candle-run/internal/session"
)

// TickMsg is a frame callback. Token ties it to the scheduler generation
// that requested it; callbacks from an older generation are dropped.
type TickMsg struct {
	Token uint64
	Time  time.Time
}

// noticeMsg carries a side-channel notice into the update loop.
type noticeMsg session.Notice

// reloadMsg carries a reloaded config into the update loop.
type reloadMsg config.RunnerConfig

// frameCmd requests the next frame callback for token.
func frameCmd(tickRate int, token uint64) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Token: token, Time: t}
	})
}

// waitNotice blocks until the session produces a notice.
func waitNotice(ch <-chan session.Notice) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

// waitReload blocks until the config watcher delivers a new config.
func waitReload(ch <-chan config.RunnerConfig) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return reloadMsg(cfg)
	}
}
