package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/replaylab/demobridge/internal/logging"
	"github.com/replaylab/demobridge/internal/parser"
)

// RunStore is the slice of the repository the recorder needs.
type RunStore interface {
	Insert(ctx context.Context, run *ParseRun) error
	Finish(ctx context.Context, run *ParseRun) error
}

// RunRecorder decorates an entry point with run-history persistence.
// The wrapped entry point's result and error pass through unchanged;
// recording failures are logged, never surfaced, so history can lag
// without breaking parses.
type RunRecorder struct {
	next   parser.EntryPoint
	repo   RunStore
	logger logging.Logger
}

func NewRunRecorder(next parser.EntryPoint, repo RunStore, logger logging.Logger) *RunRecorder {
	return &RunRecorder{next: next, repo: repo, logger: logger}
}

func (r *RunRecorder) ParseDemo(ctx context.Context, req parser.Request) (*parser.Result, error) {
	normalized := req.Normalize()
	run := &ParseRun{
		ID:              uuid.NewString(),
		DemoID:          normalized.DemoID,
		DemoPath:        normalized.DemoPath,
		ParseRate:       normalized.ParseRate,
		ParseFrames:     normalized.ParseFrames,
		TradeTime:       normalized.TradeTime,
		RoundBuyStyle:   normalized.RoundBuyStyle,
		DamagesRolled:   normalized.DamagesRolled,
		JSONIndentation: normalized.JSONIndentation,
		StartedAt:       time.Now().UTC(),
	}
	if err := r.repo.Insert(ctx, run); err != nil {
		r.logger.Error(err, "recording parse run start", "demoID", run.DemoID)
		run = nil
	}

	res, parseErr := r.next.ParseDemo(ctx, req)

	if run != nil {
		now := time.Now().UTC()
		run.FinishedAt = &now
		if parseErr != nil {
			run.Outcome = OutcomeError
			msg := parseErr.Error()
			run.ErrorMessage = &msg
		} else {
			run.Outcome = OutcomeOK
			run.OutputFile = &res.OutputFile
			run.OutputSize = &res.OutputSize
			if res.MapName != "" {
				run.MapName = &res.MapName
			}
			if res.Rounds > 0 {
				run.Rounds = &res.Rounds
			}
		}
		if err := r.repo.Finish(ctx, run); err != nil {
			r.logger.Error(err, "recording parse run outcome", "demoID", run.DemoID)
		}
	}

	return res, parseErr
}
