package history

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"

	"github.com/replaylab/demobridge/internal/logging"
	"github.com/replaylab/demobridge/internal/parser"
)

type memStore struct {
	inserted  *ParseRun
	finished  *ParseRun
	insertErr error
}

func (m *memStore) Insert(ctx context.Context, run *ParseRun) error {
	m.inserted = run
	return m.insertErr
}

func (m *memStore) Finish(ctx context.Context, run *ParseRun) error {
	m.finished = run
	return nil
}

type stubEntry struct {
	result *parser.Result
	err    error
}

func (s *stubEntry) ParseDemo(ctx context.Context, req parser.Request) (*parser.Result, error) {
	return s.result, s.err
}

func testLogger() logging.Logger { return logging.New(logr.Discard()) }

func testRequest() parser.Request {
	return parser.Request{
		DemoPath:      "/demos/match.dem",
		ParseRate:     64,
		TradeTime:     5,
		RoundBuyStyle: parser.BuyStyleHLTV,
		DemoID:        "match",
		OutPath:       "/out",
	}
}

func TestRunRecorder_RecordsSuccess(t *testing.T) {
	store := &memStore{}
	want := &parser.Result{DemoID: "match", MapName: "de_dust2", Rounds: 24, OutputFile: "/out/match.json", OutputSize: 1024}
	rec := NewRunRecorder(&stubEntry{result: want}, store, testLogger())

	got, err := rec.ParseDemo(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("recorder must pass the result through unchanged")
	}

	if store.inserted == nil || store.finished == nil {
		t.Fatalf("expected both start and outcome records")
	}
	run := store.finished
	if run.ID == "" {
		t.Fatalf("run id must be assigned")
	}
	if run.Outcome != OutcomeOK {
		t.Fatalf("expected ok outcome, got %s", run.Outcome)
	}
	if run.MapName == nil || *run.MapName != "de_dust2" {
		t.Fatalf("map name not recorded: %+v", run)
	}
	if run.Rounds == nil || *run.Rounds != 24 {
		t.Fatalf("rounds not recorded: %+v", run)
	}
	if run.FinishedAt == nil {
		t.Fatalf("finished timestamp missing")
	}
}

func TestRunRecorder_RecordsFailure(t *testing.T) {
	store := &memStore{}
	boom := errors.New("demo header corrupt")
	rec := NewRunRecorder(&stubEntry{err: boom}, store, testLogger())

	_, err := rec.ParseDemo(context.Background(), testRequest())
	if err != boom {
		t.Fatalf("recorder must pass the error through unchanged, got %v", err)
	}

	run := store.finished
	if run == nil || run.Outcome != OutcomeError {
		t.Fatalf("expected error outcome recorded: %+v", run)
	}
	if run.ErrorMessage == nil || *run.ErrorMessage != "demo header corrupt" {
		t.Fatalf("error message not recorded: %+v", run)
	}
}

func TestRunRecorder_StoreFailureDoesNotBreakParse(t *testing.T) {
	store := &memStore{insertErr: errors.New("connection refused")}
	want := &parser.Result{DemoID: "match"}
	rec := NewRunRecorder(&stubEntry{result: want}, store, testLogger())

	got, err := rec.ParseDemo(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("store failures must not surface: %v", err)
	}
	if got != want {
		t.Fatalf("result must still pass through")
	}
	if store.finished != nil {
		t.Fatalf("no outcome record expected after failed insert")
	}
}

func TestRunRecorder_NormalizesRecordedOptions(t *testing.T) {
	store := &memStore{}
	rec := NewRunRecorder(&stubEntry{result: &parser.Result{}}, store, testLogger())

	req := parser.Request{DemoPath: "/demos/raw.dem"} // everything zero
	if _, err := rec.ParseDemo(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	run := store.inserted
	if run.ParseRate != parser.DefaultParseRate || run.TradeTime != parser.DefaultTradeTime {
		t.Fatalf("recorded options should be normalized: %+v", run)
	}
	if run.DemoID != "raw" {
		t.Fatalf("recorded demo id should derive from the file stem, got %s", run.DemoID)
	}
}
