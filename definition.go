package undofsm

import (
	"fmt"
	"sort"
)

// Definition holds the FSM structure before building a Machine
type Definition struct {
	states  map[StateID]*State
	order   []StateID
	initial StateID
}

// NewDefinition creates a new FSM definition builder
func NewDefinition() *Definition {
	return &Definition{
		states: make(map[StateID]*State),
	}
}

// State adds a state to the definition. Declaring an existing state again
// replaces its transitions but keeps its position.
func (d *Definition) State(id StateID, opts ...StateOption) *Definition {
	s := &State{
		ID:          id,
		Transitions: make(map[EventID]StateID),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, ok := d.states[id]; !ok {
		d.order = append(d.order, id)
	}
	d.states[id] = s
	return d
}

// Transition adds a transition rule, declaring the source state if needed
func (d *Definition) Transition(from StateID, event EventID, to StateID) *Definition {
	s, ok := d.states[from]
	if !ok {
		d.State(from)
		s = d.states[from]
	}
	s.Transitions[event] = to
	return d
}

// Initial sets the initial state
func (d *Definition) Initial(id StateID) *Definition {
	d.initial = id
	return d
}

// InitialState returns the configured initial state
func (d *Definition) InitialState() StateID {
	return d.initial
}

// StateIDs returns the declared states in declaration order
func (d *Definition) StateIDs() []StateID {
	ids := make([]StateID, len(d.order))
	copy(ids, d.order)
	return ids
}

// Lookup returns a copy of the state with the given id
func (d *Definition) Lookup(id StateID) (State, bool) {
	s, ok := d.states[id]
	if !ok {
		return State{}, false
	}
	return *s.clone(), true
}

// Transitions lists every rule, ordered by state declaration and then
// by event name
func (d *Definition) Transitions() []Transition {
	var out []Transition
	for _, id := range d.order {
		s := d.states[id]
		events := make([]EventID, 0, len(s.Transitions))
		for event := range s.Transitions {
			events = append(events, event)
		}
		sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })
		for _, event := range events {
			out = append(out, Transition{From: id, Event: event, To: s.Transitions[event]})
		}
	}
	return out
}

// Validate checks the definition for errors. Build does not call it
// unless WithValidation is given.
func (d *Definition) Validate() error {
	if d == nil {
		return ErrConfig
	}

	if d.initial == "" {
		return fmt.Errorf("%w: no initial state defined", ErrInvalidDefinition)
	}

	if _, ok := d.states[d.initial]; !ok {
		return fmt.Errorf("%w: initial state %q not defined", ErrInvalidDefinition, d.initial)
	}

	// Check all transition targets are valid
	for _, t := range d.Transitions() {
		if _, ok := d.states[t.To]; !ok {
			return fmt.Errorf("%w: transition %q from %q to undefined state %q",
				ErrInvalidDefinition, t.Event, t.From, t.To)
		}
	}

	return nil
}

// Build creates a Machine from the definition. The machine works on a
// copy, so later builder calls do not affect it.
func (d *Definition) Build(opts ...MachineOption) (*Machine, error) {
	if d == nil {
		return nil, ErrConfig
	}

	o := buildOptions{logger: Logger}
	for _, opt := range opts {
		opt(&o)
	}

	def := d.clone()
	if o.validate {
		if err := def.Validate(); err != nil {
			return nil, err
		}
	}

	m := &Machine{
		definition:          def,
		current:             def.initial,
		logger:              o.logger,
		stateChangeCallback: o.stateChangeCallback,
	}
	m.logger.Debug("machine built", "initial", m.current, "states", len(m.definition.order))

	return m, nil
}

func (d *Definition) clone() *Definition {
	c := &Definition{
		states:  make(map[StateID]*State, len(d.states)),
		order:   d.StateIDs(),
		initial: d.initial,
	}
	for id, s := range d.states {
		c.states[id] = s.clone()
	}
	return c
}
