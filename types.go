package undofsm

import "log/slog"

// StateID is a unique identifier for a state
type StateID string

// EventID is a unique identifier for an event type
type EventID string

// Logger is the default logger used when none is provided
var Logger = slog.Default()

// slot holds an optional state. The empty StateID is a valid name,
// so presence is tracked separately.
type slot struct {
	id StateID
	ok bool
}

func some(id StateID) slot { return slot{id: id, ok: true} }
