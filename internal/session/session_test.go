package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/candle-run/internal/config"
	"github.com/vovakirdan/candle-run/internal/core"
	"github.com/vovakirdan/candle-run/internal/games/runner"
	"github.com/vovakirdan/candle-run/internal/lifecycle"
)

type fakeBest struct {
	mu      sync.Mutex
	best    int
	loadErr error
	saveErr error
	saved   []int
}

func (f *fakeBest) BestScore(ctx context.Context, player string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.best, f.loadErr
}

func (f *fakeBest) SetBestIfGreater(ctx context.Context, player string, score int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return false, f.saveErr
	}
	f.saved = append(f.saved, score)
	if score > f.best {
		f.best = score
		return true, nil
	}
	return false, nil
}

type fakeRuns struct {
	mu   sync.Mutex
	runs []runner.TerminalStats
}

func (f *fakeRuns) RecordRun(ctx context.Context, player string, stats runner.TerminalStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, stats)
	return nil
}

type fakeRewards struct {
	mu     sync.Mutex
	err    error
	scores []int
}

func (f *fakeRewards) Submit(ctx context.Context, player string, score int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores = append(f.scores, score)
	if f.err != nil {
		return "", f.err
	}
	return "0123456789abcdef", nil
}

var epoch = time.Unix(1700000000, 0)

func newTestSession(opts Options) *Session {
	if opts.Config.Physics.BaseSpeed == 0 {
		opts.Config = config.DefaultRunnerConfig()
	}
	if opts.Runtime.TickRate == 0 {
		opts.Runtime = core.RuntimeConfig{TickRate: 60, Seed: 1}
	}
	if opts.Player == "" {
		opts.Player = "alice"
	}
	opts.Logger = log.New(io.Discard)
	return New(opts)
}

// deadlyConfig spawns ground candles right in front of the player.
func deadlyConfig() config.RunnerConfig {
	cfg := config.DefaultRunnerConfig()
	cfg.Field.Width = 200
	cfg.Spawn.FirstSpawn = 0
	return cfg
}

// runUntilOver feeds frames 250ms apart until the run ends.
func runUntilOver(t *testing.T, s *Session, now time.Time) time.Time {
	t.Helper()
	for i := 0; i < 400; i++ {
		s.Frame(s.Token(), now)
		if s.State() == lifecycle.GameOver {
			return now
		}
		now = now.Add(250 * time.Millisecond)
	}
	t.Fatal("run did not end")
	return now
}

func drain(s *Session) []Notice {
	var out []Notice
	for {
		select {
		case n := <-s.Notices():
			out = append(out, n)
		default:
			return out
		}
	}
}

func TestSessionStartsInMenu(t *testing.T) {
	s := newTestSession(Options{})

	if s.State() != lifecycle.Menu {
		t.Fatalf("State() = %v, expected Menu", s.State())
	}
	if s.Ticking() {
		t.Error("scheduler should be stopped in the menu")
	}
	if s.Pause() || s.Resume() || s.Restart() {
		t.Error("illegal transitions from Menu should be rejected")
	}
	if s.Frame(s.Token(), epoch) {
		t.Error("frames should be rejected before Start")
	}
	snap := s.Snapshot()
	if !snap.Alive || snap.Score != 0 {
		t.Errorf("menu snapshot = alive %v score %d", snap.Alive, snap.Score)
	}
}

func TestSessionFrameSteps(t *testing.T) {
	s := newTestSession(Options{})
	if !s.Start() {
		t.Fatal("Start() rejected")
	}
	tok := s.Token()

	if !s.Frame(tok, epoch) {
		t.Fatal("current token rejected")
	}
	if e := s.Snapshot().Elapsed; e != 0 {
		t.Errorf("first frame should not step, elapsed = %f", e)
	}

	s.Frame(tok, epoch.Add(100*time.Millisecond))
	if e := s.Snapshot().Elapsed; e < 0.099 || e > 0.101 {
		t.Errorf("elapsed after 100ms = %f, expected 0.1", e)
	}

	// A long stall only credits the catch-up clamp.
	s.Frame(tok, epoch.Add(10*time.Second))
	if e := s.Snapshot().Elapsed; e < 0.349 || e > 0.351 {
		t.Errorf("elapsed after stall = %f, expected 0.35", e)
	}
}

func TestSessionPauseInvalidatesToken(t *testing.T) {
	s := newTestSession(Options{})
	s.Start()
	old := s.Token()
	s.Frame(old, epoch)
	s.Frame(old, epoch.Add(50*time.Millisecond))
	before := s.Snapshot().Elapsed

	if !s.Pause() {
		t.Fatal("Pause() rejected while playing")
	}
	if s.Ticking() {
		t.Error("scheduler should stop on pause")
	}
	if s.Frame(old, epoch.Add(time.Second)) {
		t.Error("stale frame accepted while paused")
	}
	s.Jump()
	if s.jump {
		t.Error("jump should be ignored while paused")
	}

	if !s.Resume() {
		t.Fatal("Resume() rejected")
	}
	tok := s.Token()
	if tok == old {
		t.Fatal("Resume should issue a new token")
	}
	if s.Frame(old, epoch.Add(2*time.Second)) {
		t.Error("token from before the pause accepted after resume")
	}

	// The first frame after resume does not credit paused time.
	s.Frame(tok, epoch.Add(5*time.Second))
	if got := s.Snapshot().Elapsed; got != before {
		t.Errorf("elapsed after resume = %f, expected %f", got, before)
	}
}

func TestSessionJump(t *testing.T) {
	s := newTestSession(Options{})
	s.Start()
	tok := s.Token()
	s.Frame(tok, epoch)

	s.Jump()
	s.Frame(tok, epoch.Add(20*time.Millisecond))

	p := s.Snapshot().Player
	if p.VY >= 0 || p.OnGround {
		t.Errorf("player should be rising after a jump, vy = %f grounded = %v", p.VY, p.OnGround)
	}
	if s.jump {
		t.Error("jump latch should be consumed by the step")
	}
}

func TestSessionGameOver(t *testing.T) {
	best := &fakeBest{}
	runs := &fakeRuns{}
	s := newTestSession(Options{Config: deadlyConfig(), Best: best, Runs: runs})

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	s.Start()
	now := runUntilOver(t, s, epoch)

	if s.Ticking() {
		t.Error("scheduler should stop at game over")
	}
	if s.Frame(s.Token(), now.Add(time.Second)) {
		t.Error("frames should be rejected after game over")
	}
	if len(changes) != 2 {
		t.Fatalf("expected Start and Die changes, got %d", len(changes))
	}
	over := changes[1]
	if over.To != lifecycle.GameOver || over.Event != lifecycle.Die {
		t.Errorf("last change = %+v", over.Transition)
	}
	stats, ok := s.Stats()
	if !ok {
		t.Fatal("Stats() should be final after game over")
	}
	if over.Stats != stats {
		t.Errorf("change stats = %+v, expected %+v", over.Stats, stats)
	}
	if s.Best() != stats.Score {
		t.Errorf("Best() = %d, expected %d", s.Best(), stats.Score)
	}

	s.Wait()
	if len(runs.runs) != 1 || runs.runs[0] != stats {
		t.Errorf("recorded runs = %+v", runs.runs)
	}
	if len(best.saved) != 1 || best.saved[0] != stats.Score {
		t.Errorf("saved best = %v, expected [%d]", best.saved, stats.Score)
	}
	for _, n := range drain(s) {
		if n.IsError() {
			t.Errorf("unexpected error notice %q", n.Text)
		}
	}
}

func TestSessionRestart(t *testing.T) {
	s := newTestSession(Options{Config: deadlyConfig()})
	s.Start()
	first := s.Token()
	now := runUntilOver(t, s, epoch)

	if s.Start() {
		t.Error("Start should be rejected after game over")
	}
	if !s.Restart() {
		t.Fatal("Restart() rejected")
	}
	if s.Token() == first {
		t.Error("restart should issue a new token")
	}
	snap := s.Snapshot()
	if !snap.Alive || snap.Score != 0 || snap.Elapsed != 0 || len(snap.Candles) != 0 {
		t.Errorf("restart should begin a fresh run, got alive %v score %d elapsed %f candles %d",
			snap.Alive, snap.Score, snap.Elapsed, len(snap.Candles))
	}
	if _, ok := s.Stats(); ok {
		t.Error("stats should not be final during a new run")
	}
	if s.Frame(first, now) {
		t.Error("token from the previous run accepted")
	}
}

func TestSessionPendingConfig(t *testing.T) {
	s := newTestSession(Options{Config: deadlyConfig()})

	early := deadlyConfig()
	early.Scoring.PassScore = 11
	s.SetPendingConfig(early)
	s.Start()
	if got := s.game.Config().Scoring.PassScore; got != 11 {
		t.Fatalf("config queued before Start not applied, pass score = %d", got)
	}

	late := deadlyConfig()
	late.Scoring.PassScore = 99
	late.Session.MaxFrameDelta = 0.1
	s.SetPendingConfig(late)
	if got := s.game.Config().Scoring.PassScore; got != 11 {
		t.Errorf("config changed mid-run, pass score = %d", got)
	}

	runUntilOver(t, s, epoch)
	if got := s.game.Config().Scoring.PassScore; got != 11 {
		t.Errorf("config changed before restart, pass score = %d", got)
	}

	s.Restart()
	if got := s.game.Config().Scoring.PassScore; got != 99 {
		t.Errorf("config not applied on restart, pass score = %d", got)
	}
	if s.sched.MaxDelta != 100*time.Millisecond {
		t.Errorf("MaxDelta = %v after restart, expected 100ms", s.sched.MaxDelta)
	}
	if s.pending != nil {
		t.Error("pending config should be consumed")
	}
}

func TestSessionObserverThrottle(t *testing.T) {
	var views []runner.ScoreView
	s := newTestSession(Options{
		Observer: ObserverFunc(func(v runner.ScoreView) { views = append(views, v) }),
	})
	s.Start()
	tok := s.Token()

	// One simulated second in 20ms frames.
	for i := 0; i <= 50; i++ {
		s.Frame(tok, epoch.Add(time.Duration(i)*20*time.Millisecond))
	}

	if len(views) < 9 || len(views) > 12 {
		t.Errorf("observer called %d times in 1s at 100ms interval", len(views))
	}
}

func TestSessionObserverFinalCall(t *testing.T) {
	var last runner.ScoreView
	calls := 0
	s := newTestSession(Options{
		Config:   deadlyConfig(),
		Observer: ObserverFunc(func(v runner.ScoreView) { last = v; calls++ }),
	})
	s.Start()
	runUntilOver(t, s, epoch)

	stats, _ := s.Stats()
	if calls == 0 || last.Score != stats.Score {
		t.Errorf("final observer view = %+v, expected score %d", last, stats.Score)
	}
}

func TestThrottle(t *testing.T) {
	th := throttle{interval: 0.1}

	steps := []struct {
		elapsed float64
		due     bool
	}{
		{0, true},
		{0.05, false},
		{0.1, true},
		{0.15, false},
		{0.25, true},
		{0.3, false},
		{0.35, true},
	}

	for _, s := range steps {
		if got := th.due(s.elapsed); got != s.due {
			t.Errorf("due(%v) = %v, expected %v", s.elapsed, got, s.due)
		}
	}

	th.reset()
	if !th.due(0) {
		t.Error("reset should allow an immediate callback")
	}
}

func TestSessionFinishSideChannels(t *testing.T) {
	stats := runner.TerminalStats{Score: 420, World: "Genesis", Speed: "Calm"}

	tests := []struct {
		name       string
		best       *fakeBest
		rewards    *fakeRewards
		wantErrors int
		wantBest   int
	}{
		{
			name:     "new best and reward",
			best:     &fakeBest{best: 100},
			rewards:  &fakeRewards{},
			wantBest: 420,
		},
		{
			name:     "not a new best",
			best:     &fakeBest{best: 1000},
			rewards:  &fakeRewards{},
			wantBest: 0,
		},
		{
			name:       "persistence fails",
			best:       &fakeBest{saveErr: errors.New("disk full")},
			rewards:    &fakeRewards{},
			wantErrors: 1,
		},
		{
			name:       "reward fails",
			best:       &fakeBest{},
			rewards:    &fakeRewards{err: errors.New("relay down")},
			wantErrors: 1,
			wantBest:   420,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(Options{Best: tt.best, Rewards: tt.rewards})
			s.finish(stats)
			s.Wait()

			errs, best := 0, 0
			for _, n := range drain(s) {
				if n.IsError() {
					errs++
				}
				best = max(best, n.Best)
				s.Apply(n)
			}
			if errs != tt.wantErrors {
				t.Errorf("error notices = %d, expected %d", errs, tt.wantErrors)
			}
			if best != tt.wantBest {
				t.Errorf("notice best = %d, expected %d", best, tt.wantBest)
			}
			if len(tt.rewards.scores) != 1 || tt.rewards.scores[0] != 420 {
				t.Errorf("reward submissions = %v", tt.rewards.scores)
			}
			if s.Best() != 420 {
				t.Errorf("Best() = %d, expected 420", s.Best())
			}
		})
	}
}

func TestSessionZeroScoreSkipsReward(t *testing.T) {
	rw := &fakeRewards{}
	s := newTestSession(Options{Rewards: rw})
	s.finish(runner.TerminalStats{})
	s.Wait()

	if len(rw.scores) != 0 {
		t.Errorf("zero score should not be submitted, got %v", rw.scores)
	}
}

func TestSessionLoadBest(t *testing.T) {
	t.Run("loaded", func(t *testing.T) {
		s := newTestSession(Options{Best: &fakeBest{best: 777}})
		s.LoadBest()
		s.Wait()
		for _, n := range drain(s) {
			s.Apply(n)
		}
		if s.Best() != 777 {
			t.Errorf("Best() = %d, expected 777", s.Best())
		}
	})

	t.Run("failure", func(t *testing.T) {
		s := newTestSession(Options{Best: &fakeBest{loadErr: errors.New("locked")}})
		s.LoadBest()
		s.Wait()
		notices := drain(s)
		if len(notices) != 1 || !notices[0].IsError() {
			t.Errorf("notices = %+v, expected one error", notices)
		}
		if s.Best() != 0 {
			t.Errorf("Best() = %d after failed load", s.Best())
		}
	})
}

func TestNotifyNeverBlocks(t *testing.T) {
	s := newTestSession(Options{})
	for i := 0; i < noticeBuffer*2; i++ {
		s.notify(Notice{Text: "x"})
	}
	if got := len(drain(s)); got != noticeBuffer {
		t.Errorf("buffered notices = %d, expected %d", got, noticeBuffer)
	}
}

func TestSessionClose(t *testing.T) {
	s := newTestSession(Options{Best: &fakeBest{best: 5}})
	s.LoadBest()
	s.Close()

	n, ok := <-s.Notices()
	if !ok || n.Best != 5 {
		t.Errorf("pending notice lost on close: %+v %v", n, ok)
	}
	if _, ok := <-s.Notices(); ok {
		t.Error("Notices should be closed")
	}
}

func TestSessionGameOverAfterClose(t *testing.T) {
	best := &fakeBest{}
	runs := &fakeRuns{}
	rewards := &fakeRewards{}
	s := newTestSession(Options{Config: deadlyConfig(), Best: best, Runs: runs, Rewards: rewards})

	s.Start()
	s.Close()
	runUntilOver(t, s, epoch)
	s.LoadBest()
	s.Close()

	if s.State() != lifecycle.GameOver {
		t.Fatalf("State() = %v, expected GameOver", s.State())
	}
	if len(runs.runs) != 0 || len(best.saved) != 0 || len(rewards.scores) != 0 {
		t.Error("a closed session should not start side-channel work")
	}
	if _, ok := <-s.Notices(); ok {
		t.Error("Notices should stay closed")
	}
}
