package undofsm

// Transition is a single (state, event) -> state rule, as listed by
// Definition.Transitions
type Transition struct {
	From  StateID // Source state
	Event EventID // Triggering event
	To    StateID // Target state
}
