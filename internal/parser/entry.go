package parser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDemoNotFound means the demo file does not exist or is not readable.
	ErrDemoNotFound = errors.New("demo file not found")
	// ErrNoArtifact means the parser binary exited zero but produced no output file.
	ErrNoArtifact = errors.New("parser produced no output artifact")
)

// Result is what the entry point reports back after a parse. The call
// adapter returns it to the caller untouched.
type Result struct {
	DemoID     string        `json:"demo_id"`
	MapName    string        `json:"map_name,omitempty"`
	Rounds     int           `json:"rounds,omitempty"`
	OutputFile string        `json:"output_file"`
	OutputSize int64         `json:"output_size"`
	Duration   time.Duration `json:"duration_ns"`
}

// EntryPoint is the external parser boundary. Implementations own all
// parsing semantics; callers must treat a returned error as opaque.
type EntryPoint interface {
	ParseDemo(ctx context.Context, req Request) (*Result, error)
}

// EntryPointFunc adapts a function to the EntryPoint interface.
type EntryPointFunc func(ctx context.Context, req Request) (*Result, error)

func (f EntryPointFunc) ParseDemo(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}
