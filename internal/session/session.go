// Package session hosts one player's runs: it gates the engine behind the
// lifecycle machine, drives it from the frame scheduler, throttles score
// observers and runs persistence and reward submission off the update loop.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/candle-run/internal/config"
	"github.com/vovakirdan/candle-run/internal/core"
	"github.com/vovakirdan/candle-run/internal/games/runner"
	"github.com/vovakirdan/candle-run/internal/lifecycle"
	"github.com/vovakirdan/candle-run/internal/scheduler"
)

// BestScores persists a best score per player identity.
type BestScores interface {
	BestScore(ctx context.Context, player string) (int, error)
	SetBestIfGreater(ctx context.Context, player string, score int) (bool, error)
}

// RunRecorder stores finished runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, player string, stats runner.TerminalStats) error
}

// Rewards submits a terminal score and returns the claim id.
type Rewards interface {
	Submit(ctx context.Context, player string, score int) (string, error)
}

// Options configures a Session. Collaborators may be nil.
type Options struct {
	Config   config.RunnerConfig
	Runtime  core.RuntimeConfig // Seed 0 picks a fresh time-based seed per run
	Player   string
	Best     BestScores
	Runs     RunRecorder
	Rewards  Rewards
	Observer Observer
	Logger   *log.Logger
}

// Change is delivered to listeners after every lifecycle transition.
type Change struct {
	lifecycle.Transition
	Stats runner.TerminalStats // Set when To is GameOver
}

// Listener receives lifecycle changes on the update loop.
type Listener func(Change)

// noticeBuffer bounds pending side-channel messages.
const noticeBuffer = 16

// Session is driven from a single goroutine (the UI update loop). Only
// side-channel work runs elsewhere, and it reports back through Notices.
type Session struct {
	opts      Options
	game      *runner.Game
	machine   *lifecycle.Machine
	sched     *scheduler.Scheduler
	logger    *log.Logger
	listeners []Listener
	notices   chan Notice
	wg        sync.WaitGroup

	mu     sync.Mutex // Guards closed and wg.Add against Close
	closed bool

	cfg      config.RunnerConfig
	pending  *config.RunnerConfig // Applied on the next Start or Restart
	jump     bool
	best     int
	throttle throttle
}

// New creates a session in the Menu state.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Session{
		opts:    opts,
		game:    runner.NewWithConfig(opts.Config),
		machine: lifecycle.New(),
		sched: scheduler.FromTickRate(opts.Runtime.TickRate,
			seconds(opts.Config.Session.MaxFrameDelta)),
		logger:   logger.WithPrefix("session"),
		notices:  make(chan Notice, noticeBuffer),
		cfg:      opts.Config,
		throttle: throttle{interval: opts.Config.Session.ObserverInterval},
	}
	s.game.Reset(opts.Runtime)
	s.machine.Subscribe(s.onTransition)
	return s
}

// seconds converts a config duration; non-positive values yield 0.
func seconds(v float64) time.Duration {
	if v <= 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}

// Subscribe registers a lifecycle listener.
func (s *Session) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// State returns the lifecycle state.
func (s *Session) State() lifecycle.State {
	return s.machine.State()
}

// Player returns the player identity.
func (s *Session) Player() string {
	return s.opts.Player
}

// Title returns the game title.
func (s *Session) Title() string {
	return s.game.Title()
}

// Notices delivers side-channel messages. The host feeds them back with Apply.
func (s *Session) Notices() <-chan Notice {
	return s.notices
}

// Apply folds a notice into session state on the update loop.
func (s *Session) Apply(n Notice) {
	s.best = max(s.best, n.Best)
}

// Best returns the best score known to this session.
func (s *Session) Best() int {
	return s.best
}

// Token returns the scheduler token current frame callbacks must carry.
func (s *Session) Token() uint64 {
	return s.sched.Token()
}

// Ticking reports whether frame callbacks should keep being scheduled.
func (s *Session) Ticking() bool {
	return s.sched.Running()
}

// SetPendingConfig queues cfg for the next run. It never changes a run in progress.
func (s *Session) SetPendingConfig(cfg config.RunnerConfig) {
	s.pending = &cfg
}

// Start leaves the menu and begins the first run.
func (s *Session) Start() bool {
	return s.machine.Fire(lifecycle.Start)
}

// Restart begins a new run after game over.
func (s *Session) Restart() bool {
	return s.machine.Fire(lifecycle.Restart)
}

// Pause freezes a run in progress.
func (s *Session) Pause() bool {
	return s.machine.Fire(lifecycle.Pause)
}

// Resume continues a paused run.
func (s *Session) Resume() bool {
	return s.machine.Fire(lifecycle.Resume)
}

// Jump queues a jump for the next simulation step. Ignored unless playing.
func (s *Session) Jump() {
	if s.machine.State() == lifecycle.Playing {
		s.jump = true
	}
}

// Frame handles one frame callback tagged with token. It runs the fixed
// steps owed since the previous callback and reports whether the callback
// was current. Stale callbacks are ignored.
func (s *Session) Frame(token uint64, now time.Time) bool {
	if !s.sched.Accept(token) {
		return false
	}

	steps := s.sched.Advance(now)
	for i := 0; i < steps; i++ {
		in := core.NewInputFrame()
		if s.jump {
			in.Set(core.ActionJump)
			s.jump = false
		}
		if res := s.game.Step(in); res.Died {
			s.machine.Fire(lifecycle.Die)
			return true
		}
	}

	s.observe(false)
	return true
}

// Snapshot returns the current frame state.
func (s *Session) Snapshot() runner.Snapshot {
	return s.game.Engine().Snapshot()
}

// Render draws the current frame.
func (s *Session) Render(dst *core.Screen) {
	runner.Render(s.Snapshot(), dst)
}

// Stats returns the terminal statistics of the last finished run.
func (s *Session) Stats() (runner.TerminalStats, bool) {
	return s.game.Engine().Stats()
}

// LoadBest fetches the stored best score in the background.
func (s *Session) LoadBest() {
	if s.opts.Best == nil || s.opts.Player == "" {
		return
	}
	player := s.opts.Player
	timeout := s.timeout()

	s.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		best, err := s.opts.Best.BestScore(ctx, player)
		if err != nil {
			s.logger.Error("load best score", "player", player, "err", err)
			s.notify(Notice{Level: NoticeError, Text: "Could not load best score"})
			return
		}
		s.notify(Notice{Level: NoticeInfo, Best: best})
	})
}

// Wait blocks until all side-channel work has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close waits for side-channel work and closes Notices. It may be called
// from any goroutine and more than once. Runs that end after Close are not
// persisted.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
	close(s.notices)
}

// spawn runs fn in the background unless the session is closed.
func (s *Session) spawn(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}

func (s *Session) onTransition(tr lifecycle.Transition) {
	change := Change{Transition: tr}

	switch tr.Event {
	case lifecycle.Start, lifecycle.Restart:
		s.newRun()
		s.sched.Start()
	case lifecycle.Resume:
		s.sched.Start()
	case lifecycle.Pause:
		s.sched.Stop()
		s.jump = false
	case lifecycle.Die:
		s.sched.Stop()
		stats, _ := s.Stats()
		change.Stats = stats
		s.observe(true)
		s.finish(stats)
	}

	for _, l := range s.listeners {
		l(change)
	}
}

// newRun rebuilds the engine, applying any queued config.
func (s *Session) newRun() {
	if s.pending != nil {
		s.cfg = *s.pending
		s.pending = nil
		s.game.SetConfig(s.cfg)
		s.throttle.interval = s.cfg.Session.ObserverInterval
		s.sched.MaxDelta = scheduler.DefaultMaxDelta
		if d := seconds(s.cfg.Session.MaxFrameDelta); d > 0 {
			s.sched.MaxDelta = d
		}
		s.logger.Info("config reloaded")
	}

	rt := s.opts.Runtime
	if rt.Seed == 0 {
		rt.Seed = time.Now().UnixNano()
	}
	s.game.Reset(rt)
	s.jump = false
	s.throttle.reset()
	s.logger.Debug("run started", "seed", rt.Seed)
}

func (s *Session) observe(force bool) {
	if s.opts.Observer == nil {
		return
	}
	e := s.game.Engine()
	if s.throttle.due(e.Elapsed()) || force {
		s.opts.Observer.OnScore(e.View())
	}
}

func (s *Session) timeout() time.Duration {
	if d := seconds(s.cfg.Session.SideChannelTimeout); d > 0 {
		return d
	}
	return 5 * time.Second
}

// finish records the run and submits the score off the update loop.
// Failures surface only as notices.
func (s *Session) finish(stats runner.TerminalStats) {
	s.best = max(s.best, stats.Score)
	s.logger.Info("run over", "player", s.opts.Player, "score", stats.Score,
		"time", fmt.Sprintf("%.1fs", stats.SurvivalTime), "world", stats.World)

	if s.opts.Runs == nil && s.opts.Best == nil && s.opts.Rewards == nil {
		return
	}
	player := s.opts.Player
	timeout := s.timeout()

	ok := s.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		s.persist(ctx, player, stats)
		s.submit(ctx, player, stats.Score)
	})
	if !ok {
		s.logger.Warn("session closed, run not saved", "player", player, "score", stats.Score)
	}
}

func (s *Session) persist(ctx context.Context, player string, stats runner.TerminalStats) {
	if s.opts.Runs != nil {
		if err := s.opts.Runs.RecordRun(ctx, player, stats); err != nil {
			s.logger.Error("record run", "player", player, "err", err)
			s.notify(Notice{Level: NoticeError, Text: "Could not save run"})
		}
	}

	if s.opts.Best == nil || player == "" {
		return
	}
	changed, err := s.opts.Best.SetBestIfGreater(ctx, player, stats.Score)
	if err != nil {
		s.logger.Error("save best score", "player", player, "err", err)
		s.notify(Notice{Level: NoticeError, Text: "Could not save best score"})
		return
	}
	if changed {
		s.notify(Notice{Level: NoticeInfo, Text: fmt.Sprintf("New best: %d", stats.Score), Best: stats.Score})
	}
}

func (s *Session) submit(ctx context.Context, player string, score int) {
	if s.opts.Rewards == nil || score <= 0 {
		return
	}
	claim, err := s.opts.Rewards.Submit(ctx, player, score)
	if err != nil {
		s.logger.Error("submit reward", "player", player, "score", score, "err", err)
		s.notify(Notice{Level: NoticeError, Text: "Reward submission failed: " + err.Error()})
		return
	}
	if len(claim) > 8 {
		claim = claim[:8]
	}
	s.notify(Notice{Level: NoticeInfo, Text: "Reward claimed #" + claim})
}

// notify never blocks; a full buffer drops the notice.
func (s *Session) notify(n Notice) {
	select {
	case s.notices <- n:
	default:
		s.logger.Warn("notice dropped", "text", n.Text)
	}
}
