package wrapper

import (
	"context"
	"errors"
	"testing"

	"github.com/replaylab/demobridge/internal/parser"
)

// captureEntry records what reaches the entry point and replays a
// canned result or error.
type captureEntry struct {
	calls  int
	got    parser.Request
	result *parser.Result
	err    error
}

func (c *captureEntry) ParseDemo(ctx context.Context, req parser.Request) (*parser.Result, error) {
	c.calls++
	c.got = req
	return c.result, c.err
}

func TestAdapter_ForwardsConvertedArguments(t *testing.T) {
	entry := &captureEntry{result: &parser.Result{DemoID: "demo-001"}}
	adapter := NewAdapter(entry)

	_, err := adapter.Call(context.Background(), wellTypedArgs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.calls != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", entry.calls)
	}
	if entry.got.DemoPath != "/demos/nuke.dem" || entry.got.OutPath != "/out" {
		t.Fatalf("entry point received wrong arguments: %+v", entry.got)
	}
	if entry.got.ParseRate != 128 || entry.got.TradeTime != 5 {
		t.Fatalf("numeric arguments mangled: %+v", entry.got)
	}
}

func TestAdapter_ResultIdentity(t *testing.T) {
	want := &parser.Result{DemoID: "demo-001", Rounds: 30}
	adapter := NewAdapter(&captureEntry{result: want})

	got, err := adapter.Call(context.Background(), wellTypedArgs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("adapter must return the entry point's result object, not a copy")
	}
}

func TestAdapter_ErrorIdentity(t *testing.T) {
	boom := errors.New("demo header corrupt")
	entry := &captureEntry{err: boom}
	adapter := NewAdapter(entry)

	_, err := adapter.Call(context.Background(), wellTypedArgs())
	if err != boom {
		t.Fatalf("parser errors must propagate unwrapped: got %v", err)
	}
}

func TestAdapter_BadArgumentsSkipEntryPoint(t *testing.T) {
	entry := &captureEntry{result: &parser.Result{}}
	adapter := NewAdapter(entry)

	cases := [][]any{
		{"only one"},
		append(wellTypedArgs(), "extra"),
		{1, 128, true, int64(5), "hltv", false, "id", true, "/out"}, // wrong type at 1
	}
	for i, args := range cases {
		_, err := adapter.Call(context.Background(), args)
		var argErr *ArgumentError
		if !errors.As(err, &argErr) {
			t.Fatalf("case %d: expected ArgumentError, got %v", i, err)
		}
	}
	if entry.calls != 0 {
		t.Fatalf("entry point must not run on conversion failure, ran %d times", entry.calls)
	}
}
