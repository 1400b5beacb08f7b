package lifecycle

import "testing"

func TestLegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		final  State
	}{
		{"start", []Event{Start}, Playing},
		{"pause", []Event{Start, Pause}, Paused},
		{"resume", []Event{Start, Pause, Resume}, Playing},
		{"die", []Event{Start, Die}, GameOver},
		{"restart", []Event{Start, Die, Restart}, Playing},
		{"second run", []Event{Start, Die, Restart, Pause, Resume, Die}, GameOver},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New()
			for _, ev := range tc.events {
				if !m.Fire(ev) {
					t.Fatalf("Fire(%s) from %s rejected", ev, m.State())
				}
			}
			if m.State() != tc.final {
				t.Errorf("state = %s, expected %s", m.State(), tc.final)
			}
		})
	}
}

func TestIllegalTransitionsAreNoOps(t *testing.T) {
	tests := []struct {
		name  string
		setup []Event
		event Event
	}{
		{"pause in menu", nil, Pause},
		{"resume in menu", nil, Resume},
		{"die in menu", nil, Die},
		{"restart in menu", nil, Restart},
		{"start while playing", []Event{Start}, Start},
		{"resume while playing", []Event{Start}, Resume},
		{"die while paused", []Event{Start, Pause}, Die},
		{"pause while paused", []Event{Start, Pause}, Pause},
		{"pause after game over", []Event{Start, Die}, Pause},
		{"start after game over", []Event{Start, Die}, Start},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New()
			for _, ev := range tc.setup {
				m.Fire(ev)
			}
			before := m.State()
			calls := 0
			m.Subscribe(func(Transition) { calls++ })

			if m.Can(tc.event) {
				t.Errorf("Can(%s) = true in %s", tc.event, before)
			}
			if m.Fire(tc.event) {
				t.Errorf("Fire(%s) accepted in %s", tc.event, before)
			}
			if m.State() != before {
				t.Errorf("state changed from %s to %s", before, m.State())
			}
			if calls != 0 {
				t.Errorf("listener called %d times on an illegal event", calls)
			}
		})
	}
}

func TestListenersReceiveTransition(t *testing.T) {
	m := New()
	var got []Transition
	m.Subscribe(func(tr Transition) { got = append(got, tr) })

	m.Fire(Start)
	m.Fire(Die)

	expected := []Transition{
		{From: Menu, To: Playing, Event: Start},
		{From: Playing, To: GameOver, Event: Die},
	}
	if len(got) != len(expected) {
		t.Fatalf("got %d transitions, expected %d", len(got), len(expected))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("transition %d = %+v, expected %+v", i, got[i], expected[i])
		}
	}
}

func TestListenerSeesNewState(t *testing.T) {
	m := New()
	var seen State
	m.Subscribe(func(Transition) { seen = m.State() })

	m.Fire(Start)

	if seen != Playing {
		t.Errorf("listener saw %s, expected state to be updated first", seen)
	}
}
