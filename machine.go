package undofsm

import (
	"log/slog"
	"sync"
)

// Machine is the runtime FSM instance. It keeps one step of history:
// the state before the last change (for Undo) and the state displaced by
// the last Undo (for Redo).
type Machine struct {
	definition *Definition
	mu         sync.RWMutex

	current     StateID
	previous    slot
	pendingRedo slot

	logger              *slog.Logger
	stateChangeCallback func(from, to StateID)
}

// buildOptions collects MachineOptions for a single Build call
type buildOptions struct {
	logger              *slog.Logger
	validate            bool
	stateChangeCallback func(from, to StateID)
}

// MachineOption is a functional option for configuring a Machine
type MachineOption func(*buildOptions)

// WithLogger sets the logger for the machine
func WithLogger(logger *slog.Logger) MachineOption {
	return func(o *buildOptions) {
		o.logger = logger
	}
}

// WithValidation makes Build reject definitions that fail Validate
func WithValidation() MachineOption {
	return func(o *buildOptions) {
		o.validate = true
	}
}

// WithStateChangeCallback sets a callback invoked after each state change
func WithStateChangeCallback(fn func(from, to StateID)) MachineOption {
	return func(o *buildOptions) {
		o.stateChangeCallback = fn
	}
}

// New builds a machine from def. It fails with ErrConfig if def is nil.
func New(def *Definition, opts ...MachineOption) (*Machine, error) {
	return def.Build(opts...)
}

// OnStateChange sets a callback invoked after each state change made by
// ChangeState, Trigger, Undo, Redo or Reset. It is not called when the
// state stays the same. The callback runs without the machine's lock
// held, so it may call back into the machine.
func (m *Machine) OnStateChange(fn func(from, to StateID)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateChangeCallback = fn
}

// notify runs the state change callback. Callers must not hold m.mu.
func (m *Machine) notify(from, to StateID) {
	m.mu.RLock()
	fn := m.stateChangeCallback
	m.mu.RUnlock()

	if fn != nil && from != to {
		fn(from, to)
	}
}

// CurrentState returns the active state
func (m *Machine) CurrentState() StateID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Initial returns the state the machine starts in and resets to
func (m *Machine) Initial() StateID {
	return m.definition.initial
}

// Definition returns the machine's copy of its definition. Callers must
// not modify it.
func (m *Machine) Definition() *Definition {
	return m.definition
}

// ChangeState moves directly to the given state. The target must be a
// configured state; on error nothing changes.
func (m *Machine) ChangeState(to StateID) error {
	m.mu.Lock()

	if _, ok := m.definition.states[to]; !ok {
		m.logger.Debug("unknown state", "state", to, "current", m.current)
		m.mu.Unlock()
		return &TransitionError{Kind: ErrInvalidState, State: to}
	}

	from := m.commit(to)
	m.mu.Unlock()

	m.notify(from, to)
	return nil
}

// Trigger follows the current state's transition for event. On error
// nothing changes.
func (m *Machine) Trigger(event EventID) error {
	m.mu.Lock()

	state := m.definition.states[m.current]
	if state == nil || !state.HandlesEvent(event) {
		m.logger.Debug("no transition found", "event", event, "state", m.current)
		err := &TransitionError{Kind: ErrInvalidEvent, State: m.current, Event: event}
		m.mu.Unlock()
		return err
	}

	to := state.Transitions[event]
	if _, ok := m.definition.states[to]; !ok {
		m.logger.Debug("transition to unknown state", "event", event, "from", m.current, "to", to)
		m.mu.Unlock()
		return &TransitionError{Kind: ErrInvalidState, State: to, Event: event}
	}

	m.logger.Debug("executing transition", "event", event, "from", m.current, "to", to)
	from := m.commit(to)
	m.mu.Unlock()

	m.notify(from, to)
	return nil
}

// commit records the current state as previous and enters to, returning
// the state it left. The pending redo is left alone.
func (m *Machine) commit(to StateID) StateID {
	from := m.current
	m.logger.Debug("state change", "from", from, "to", to)
	m.previous = some(from)
	m.current = to
	return from
}

// Reset returns to the initial state and forgets the undo step.
// A pending redo survives a reset.
func (m *Machine) Reset() StateID {
	m.mu.Lock()
	from, to := m.current, m.definition.initial
	m.logger.Debug("reset", "from", from, "to", to)
	m.previous = slot{}
	m.current = to
	m.mu.Unlock()

	m.notify(from, to)
	return to
}

// States returns all configured states in declaration order
func (m *Machine) States() []StateID {
	return m.definition.StateIDs()
}

// StatesFor returns the states that have a transition for event, in
// declaration order. An empty event returns all states.
func (m *Machine) StatesFor(event EventID) []StateID {
	if event == "" {
		return m.States()
	}

	states := make([]StateID, 0, len(m.definition.order))
	for _, id := range m.definition.order {
		if m.definition.states[id].HandlesEvent(event) {
			states = append(states, id)
		}
	}
	return states
}

// Undo goes back to the previous state. It returns false if there is
// nothing to undo.
func (m *Machine) Undo() bool {
	m.mu.Lock()

	if !m.previous.ok {
		m.mu.Unlock()
		return false
	}

	from, to := m.current, m.previous.id
	m.logger.Debug("undo", "from", from, "to", to)
	m.pendingRedo = some(from)
	m.current = to
	m.previous = slot{}
	m.mu.Unlock()

	m.notify(from, to)
	return true
}

// Redo re-enters the state left by the last Undo. It returns false if
// there is nothing to redo.
func (m *Machine) Redo() bool {
	m.mu.Lock()

	if !m.pendingRedo.ok {
		m.mu.Unlock()
		return false
	}

	from, to := m.current, m.pendingRedo.id
	m.logger.Debug("redo", "from", from, "to", to)
	m.previous = some(from)
	m.current = to
	m.pendingRedo = slot{}
	m.mu.Unlock()

	m.notify(from, to)
	return true
}

// CanUndo reports whether Undo would succeed
func (m *Machine) CanUndo() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previous.ok
}

// CanRedo reports whether Redo would succeed
func (m *Machine) CanRedo() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pendingRedo.ok
}

// ClearHistory forgets the undo step. A pending redo is kept.
func (m *Machine) ClearHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.previous = slot{}
}
