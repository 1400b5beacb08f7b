package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/candle-run/internal/config"
	"github.com/vovakirdan/candle-run/internal/core"
	"github.com/vovakirdan/candle-run/internal/lifecycle"
	"github.com/vovakirdan/candle-run/internal/session"
)

// noticeTTL is how long a notice stays on screen.
const noticeTTL = 4 * time.Second

// Model is the Bubble Tea model for a candle run session.
type Model struct {
	sess     *session.Session
	screen   *core.Screen
	tickRate int
	reloads  <-chan config.RunnerConfig
	keys     KeyMap
	help     help.Model

	notice   session.Notice
	noticeAt time.Time
	quitting bool
}

// NewModel creates a model for sess. The screen is sized from cfg; the
// bottom row is reserved for the help bar. reloads may be nil.
func NewModel(sess *session.Session, cfg core.RuntimeConfig, reloads <-chan config.RunnerConfig) Model {
	h := help.New()
	h.ShowAll = false

	return Model{
		sess:     sess,
		screen:   core.NewScreen(cfg.ScreenW, max(cfg.ScreenH-1, 1)),
		tickRate: cfg.TickRate,
		reloads:  reloads,
		keys:     DefaultKeyMap(),
		help:     h,
	}
}

// Init loads the best score and starts listening for side-channel messages.
func (m Model) Init() tea.Cmd {
	m.sess.LoadBest()
	return tea.Batch(waitNotice(m.sess.Notices()), waitReload(m.reloads))
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, max(msg.Height-1, 1))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick(msg)

	case noticeMsg:
		n := session.Notice(msg)
		m.sess.Apply(n)
		if n.Text != "" {
			m.notice = n
			m.noticeAt = time.Now()
		}
		return m, waitNotice(m.sess.Notices())

	case reloadMsg:
		m.sess.SetPendingConfig(config.RunnerConfig(msg))
		m.notice = session.Notice{Text: "Config reloaded, applies next run"}
		m.noticeAt = time.Now()
		return m, waitReload(m.reloads)
	}

	return m, nil
}

// handleKey maps keys to lifecycle intents.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Screenshot) {
		m.saveScreenshot()
		return m, nil
	}

	action := m.keys.Action(msg)
	if action == core.ActionQuit {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.sess.State() {
	case lifecycle.Menu:
		if (action == core.ActionStart || action == core.ActionJump) && m.sess.Start() {
			return m, m.nextFrame()
		}

	case lifecycle.Playing:
		switch action {
		case core.ActionJump:
			m.sess.Jump()
		case core.ActionPause:
			m.sess.Pause()
		}

	case lifecycle.Paused:
		if (action == core.ActionPause || action == core.ActionStart) && m.sess.Resume() {
			return m, m.nextFrame()
		}

	case lifecycle.GameOver:
		if (action == core.ActionRestart || action == core.ActionStart) && m.sess.Restart() {
			m.notice = session.Notice{}
			return m, m.nextFrame()
		}
	}

	return m, nil
}

// handleTick runs one frame callback. Stale callbacks end their chain.
func (m Model) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	if !m.sess.Frame(msg.Token, msg.Time) {
		return m, nil
	}
	if !m.sess.Ticking() {
		return m, nil
	}
	return m, m.nextFrame()
}

func (m Model) nextFrame() tea.Cmd {
	return frameCmd(m.tickRate, m.sess.Token())
}

// saveScreenshot writes the current frame as plain text.
func (m *Model) saveScreenshot() {
	m.draw(time.Now())

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".candlerun", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	filename := fmt.Sprintf("candlerun_%s.txt", time.Now().Format("20060102_150405"))
	//nolint:errcheck // Best-effort save, the run continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// draw renders the frame and the overlay for the current state.
func (m Model) draw(now time.Time) {
	m.sess.Render(m.screen)

	var notice session.Notice
	if m.notice.Text != "" && now.Sub(m.noticeAt) < noticeTTL {
		notice = m.notice
	}

	switch m.sess.State() {
	case lifecycle.Menu:
		drawOverlay(m.screen, menuLines(m.sess.Title(), m.sess.Player(), m.sess.Best()), core.ColorBrightYellow)
	case lifecycle.Paused:
		drawOverlay(m.screen, []string{"PAUSED", "", "p to resume"}, core.ColorBrightCyan)
	case lifecycle.GameOver:
		stats, _ := m.sess.Stats()
		drawOverlay(m.screen, gameOverLines(stats, m.sess.Best(), notice), core.ColorBrightRed)
		return
	}

	if notice.Text != "" {
		drawNotice(m.screen, notice)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.draw(time.Now())
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// Run starts a local Bubble Tea program for sess and blocks until it exits.
func Run(sess *session.Session, cfg core.RuntimeConfig, reloads <-chan config.RunnerConfig) error {
	model := NewModel(sess, cfg, reloads)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
