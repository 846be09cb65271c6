package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// settings are read from the environment (and an optional .env file),
// then overridden by flags.
type settings struct {
	Definition string `env:"FSMCTL_DEFINITION"`
	LogLevel   string `env:"FSMCTL_LOG_LEVEL" envDefault:"warn"`
	Strict     bool   `env:"FSMCTL_STRICT"`
}

func loadSettings(args []string, output io.Writer) (settings, error) {
	// The .env file is optional
	_ = godotenv.Load()

	var s settings
	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("parse environment: %w", err)
	}

	fs := flag.NewFlagSet("fsmctl", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&s.Definition, "f", s.Definition, "definition file (YAML or JSON)")
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&s.Strict, "strict", s.Strict, "reject definitions with undefined states")
	if err := fs.Parse(args); err != nil {
		return s, err
	}

	if s.Definition == "" && fs.NArg() > 0 {
		s.Definition = fs.Arg(0)
	}
	if s.Definition == "" {
		return s, errors.New("no definition file given (use -f or FSMCTL_DEFINITION)")
	}

	return s, nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
