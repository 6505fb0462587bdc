package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/replaylab/demobridge/internal/artifact"
	"github.com/replaylab/demobridge/internal/logging"
)

// ExecConfig configures a subprocess-backed engine.
type ExecConfig struct {
	// Binary is the parser executable to invoke.
	Binary string
	// ExtraArgs are appended after the request flags, verbatim.
	ExtraArgs []string
	// Timeout bounds a single parse. Zero means no bound beyond ctx.
	Timeout time.Duration
	Logger  logging.Logger
}

// ExecEngine invokes an external parser binary per request. It is the
// production EntryPoint: one subprocess per call, no shared state.
type ExecEngine struct {
	cfg ExecConfig
}

func NewExecEngine(cfg ExecConfig) (*ExecEngine, error) {
	if cfg.Binary == "" {
		return nil, fmt.Errorf("parser binary is required")
	}
	return &ExecEngine{cfg: cfg}, nil
}

// Args renders the request as the binary's flag surface.
func (e *ExecEngine) Args(req Request) []string {
	args := []string{
		"-demo", req.DemoPath,
		"-parserate", strconv.Itoa(req.ParseRate),
		"-tradetime", strconv.FormatInt(req.TradeTime, 10),
		"-buystyle", req.RoundBuyStyle,
		"-demoid", req.DemoID,
		"-out", req.OutPath,
	}
	if req.DamagesRolled {
		args = append(args, "--dmgrolled")
	}
	if req.ParseFrames {
		args = append(args, "--parseframes")
	}
	if req.JSONIndentation {
		args = append(args, "--indent")
	}
	return append(args, e.cfg.ExtraArgs...)
}

func (e *ExecEngine) ParseDemo(ctx context.Context, req Request) (*Result, error) {
	req = req.Normalize()

	if _, err := os.Stat(req.DemoPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDemoNotFound, req.DemoPath)
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.cfg.Binary, e.Args(req)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.cfg.Logger.Debug("invoking parser", "binary", e.cfg.Binary, "demo", req.DemoPath, "demoID", req.DemoID)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("parse %s: %w", req.DemoID, ctx.Err())
		}
		return nil, formatParserError(req.DemoID, err, stderr.String())
	}

	out := req.OutputFile()
	info, err := os.Stat(out)
	if err != nil {
		return nil, fmt.Errorf("%w: expected %s", ErrNoArtifact, out)
	}

	res := &Result{
		DemoID:     req.DemoID,
		OutputFile: out,
		OutputSize: info.Size(),
		Duration:   time.Since(start),
	}
	if summary, err := artifact.Inspect(out); err == nil {
		res.MapName = summary.MapName
		res.Rounds = summary.Rounds
	} else {
		e.cfg.Logger.Info("artifact inspection failed", "file", out, "error", err.Error())
	}

	e.cfg.Logger.Info("parse complete", "demoID", req.DemoID, "map", res.MapName, "rounds", res.Rounds, "bytes", res.OutputSize)
	return res, nil
}

func formatParserError(demoID string, err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return fmt.Errorf("parse %s: %w", demoID, err)
	}
	return fmt.Errorf("parse %s: %w: %s", demoID, err, stderr)
}
