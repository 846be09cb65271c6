package undofsm

// State defines a state and its outgoing transitions
type State struct {
	ID          StateID
	Transitions map[EventID]StateID
}

// StateOption is a functional option for configuring a State
type StateOption func(*State)

// WithTransition maps an event to a target state
func WithTransition(event EventID, to StateID) StateOption {
	return func(s *State) {
		s.Transitions[event] = to
	}
}

// WithTransitions merges a whole event table into the state
func WithTransitions(table map[EventID]StateID) StateOption {
	return func(s *State) {
		for event, to := range table {
			s.Transitions[event] = to
		}
	}
}

// HandlesEvent reports whether the state has a transition for event
func (s *State) HandlesEvent(event EventID) bool {
	_, ok := s.Transitions[event]
	return ok
}

func (s *State) clone() *State {
	c := &State{
		ID:          s.ID,
		Transitions: make(map[EventID]StateID, len(s.Transitions)),
	}
	for event, to := range s.Transitions {
		c.Transitions[event] = to
	}
	return c
}
