// Command fsmctl loads a state machine definition and drives it with
// commands read from stdin, one per line.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/librescoot/undofsm"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	s, err := loadSettings(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := newLogger(s.LogLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	def, err := undofsm.LoadDefinitionFile(s.Definition)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	opts := []undofsm.MachineOption{
		undofsm.WithLogger(logger),
		undofsm.WithStateChangeCallback(func(from, to undofsm.StateID) {
			logger.Info("state changed", "from", from, "to", to)
		}),
	}
	if s.Strict {
		opts = append(opts, undofsm.WithValidation())
	}
	m, err := def.Build(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger.Info("definition loaded", "file", s.Definition, "initial", m.Initial(), "states", len(m.States()))

	if err := newShell(m, stdout).run(stdin); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
