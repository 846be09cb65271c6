package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/librescoot/undofsm"
)

const usage = `commands:
  state              print the current state
  trigger <event>    follow the current state's transition for event
  change <state>     jump to a state
  undo               go back one step
  redo               re-enter the state left by undo
  reset              return to the initial state
  clear              forget the undo step
  states [event]     list states, or those handling event
  transitions        list all transitions
  help               show this text
  quit               exit`

type shell struct {
	m   *undofsm.Machine
	out io.Writer
}

func newShell(m *undofsm.Machine, out io.Writer) *shell {
	return &shell{m: m, out: out}
}

// run executes commands until EOF or quit. Command errors are printed
// and do not stop the shell.
func (s *shell) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		quit, err := s.exec(scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

func (s *shell) exec(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false, nil
	}

	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "state":
		s.println(s.m.CurrentState())
	case "trigger":
		if len(args) != 1 {
			return false, errors.New("usage: trigger <event>")
		}
		if err := s.m.Trigger(undofsm.EventID(args[0])); err != nil {
			return false, err
		}
		s.println(s.m.CurrentState())
	case "change":
		if len(args) != 1 {
			return false, errors.New("usage: change <state>")
		}
		if err := s.m.ChangeState(undofsm.StateID(args[0])); err != nil {
			return false, err
		}
		s.println(s.m.CurrentState())
	case "undo":
		if !s.m.Undo() {
			s.println("nothing to undo")
			break
		}
		s.println(s.m.CurrentState())
	case "redo":
		if !s.m.Redo() {
			s.println("nothing to redo")
			break
		}
		s.println(s.m.CurrentState())
	case "reset":
		s.println(s.m.Reset())
	case "clear":
		s.m.ClearHistory()
		s.println("history cleared")
	case "states":
		var event undofsm.EventID
		if len(args) > 0 {
			event = undofsm.EventID(args[0])
		}
		for _, id := range s.m.StatesFor(event) {
			s.println(id)
		}
	case "transitions":
		for _, t := range s.m.Definition().Transitions() {
			s.println(fmt.Sprintf("%s --%s--> %s", t.From, t.Event, t.To))
		}
	case "help":
		s.println(usage)
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return false, nil
}

func (s *shell) println(v any) {
	fmt.Fprintln(s.out, v)
}
