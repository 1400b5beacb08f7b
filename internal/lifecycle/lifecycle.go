// Package lifecycle implements the run state machine:
// Menu -> Playing <-> Paused, Playing -> GameOver -> Playing.
package lifecycle

// State is a lifecycle phase.
type State int

const (
	Menu State = iota
	Playing
	Paused
	GameOver
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Menu:
		return "menu"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case GameOver:
		return "gameover"
	default:
		return "unknown"
	}
}

// Event is an intent that may move the machine.
type Event int

const (
	Start Event = iota
	Pause
	Resume
	Die
	Restart
)

// String returns the name of the event.
func (e Event) String() string {
	switch e {
	case Start:
		return "start"
	case Pause:
		return "pause"
	case Resume:
		return "resume"
	case Die:
		return "die"
	case Restart:
		return "restart"
	default:
		return "unknown"
	}
}

// Transition describes a state change that happened.
type Transition struct {
	From  State
	To    State
	Event Event
}

// Listener is called synchronously after every legal transition.
type Listener func(Transition)

type edge struct {
	from  State
	event Event
}

var transitions = map[edge]State{
	{Menu, Start}:       Playing,
	{Playing, Pause}:    Paused,
	{Paused, Resume}:    Playing,
	{Playing, Die}:      GameOver,
	{GameOver, Restart}: Playing,
}

// Machine holds the current state. It is not safe for concurrent use; the
// host drives it from its update loop.
type Machine struct {
	state     State
	listeners []Listener
}

// New returns a machine in Menu.
func New() *Machine {
	return &Machine{state: Menu}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Subscribe registers a listener.
func (m *Machine) Subscribe(l Listener) {
	m.listeners = append(m.listeners, l)
}

// Can reports whether ev is legal in the current state.
func (m *Machine) Can(ev Event) bool {
	_, ok := transitions[edge{m.state, ev}]
	return ok
}

// Fire applies ev. Illegal events change nothing and return false.
func (m *Machine) Fire(ev Event) bool {
	to, ok := transitions[edge{m.state, ev}]
	if !ok {
		return false
	}
	tr := Transition{From: m.state, To: to, Event: ev}
	m.state = to
	for _, l := range m.listeners {
		l(tr)
	}
	return true
}
