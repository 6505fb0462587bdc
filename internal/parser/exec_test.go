package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestExecEngine_Args(t *testing.T) {
	engine, err := NewExecEngine(ExecConfig{Binary: "/usr/local/bin/demoparser"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := Request{
		DemoPath:        "/demos/nuke.dem",
		ParseRate:       64,
		ParseFrames:     true,
		TradeTime:       5,
		RoundBuyStyle:   BuyStyleHLTV,
		DamagesRolled:   true,
		DemoID:          "demo-001",
		JSONIndentation: true,
		OutPath:         "/out",
	}
	got := strings.Join(engine.Args(req), " ")
	want := "-demo /demos/nuke.dem -parserate 64 -tradetime 5 -buystyle hltv -demoid demo-001 -out /out --dmgrolled --parseframes --indent"
	if got != want {
		t.Fatalf("flag rendering mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestExecEngine_ArgsOmitsFlagsWhenOff(t *testing.T) {
	engine, err := NewExecEngine(ExecConfig{Binary: "demoparser"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args := engine.Args(Request{DemoPath: "a.dem", ParseRate: 128, TradeTime: 5, RoundBuyStyle: BuyStyleCSGO, DemoID: "a", OutPath: "."})
	for _, flag := range []string{"--dmgrolled", "--parseframes", "--indent"} {
		for _, a := range args {
			if a == flag {
				t.Fatalf("flag %s must be omitted when its option is off", flag)
			}
		}
	}
}

func TestExecEngine_MissingBinary(t *testing.T) {
	if _, err := NewExecEngine(ExecConfig{}); err == nil {
		t.Fatalf("expected error for empty binary")
	}
}

func TestExecEngine_DemoNotFound(t *testing.T) {
	engine, err := NewExecEngine(ExecConfig{Binary: "demoparser"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = engine.ParseDemo(context.Background(), Request{
		DemoPath: filepath.Join(t.TempDir(), "missing.dem"),
		OutPath:  t.TempDir(),
	})
	if !errors.Is(err, ErrDemoNotFound) {
		t.Fatalf("expected ErrDemoNotFound, got %v", err)
	}
}

// fakeParser writes a shell script that mimics the parser binary:
// it writes a minimal artifact at <out>/<demoid>.json.
func fakeParser(t *testing.T, dir string, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	script := filepath.Join(dir, "demoparser.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub parser: %v", err)
	}
	return script
}

func TestExecEngine_ParseDemo(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()

	demo := filepath.Join(dir, "match.dem")
	if err := os.WriteFile(demo, []byte("DEMO"), 0o644); err != nil {
		t.Fatalf("write demo: %v", err)
	}

	// Finds the value after -out and -demoid and writes the artifact there.
	body := `
out=""
id=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-out" ]; then out="$a"; fi
  if [ "$prev" = "-demoid" ]; then id="$a"; fi
  prev="$a"
done
printf '{"MatchId":"%s","MapName":"de_nuke","TickRate":128,"PlaybackTicks":230000,"ParseRate":64,"GameRounds":[{},{}]}' "$id" > "$out/$id.json"
`
	script := fakeParser(t, dir, body)

	engine, err := NewExecEngine(ExecConfig{Binary: script, Timeout: 30 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := engine.ParseDemo(context.Background(), Request{
		DemoPath:  demo,
		ParseRate: 64,
		TradeTime: 5,
		OutPath:   outDir,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DemoID != "match" {
		t.Fatalf("demo id should derive from the file stem, got %s", res.DemoID)
	}
	if res.OutputFile != filepath.Join(outDir, "match.json") {
		t.Fatalf("unexpected output file %s", res.OutputFile)
	}
	if res.MapName != "de_nuke" || res.Rounds != 2 {
		t.Fatalf("artifact summary not picked up: %+v", res)
	}
	if res.OutputSize == 0 {
		t.Fatalf("expected non-zero artifact size")
	}
}

func TestExecEngine_NoArtifact(t *testing.T) {
	dir := t.TempDir()
	demo := filepath.Join(dir, "match.dem")
	if err := os.WriteFile(demo, []byte("DEMO"), 0o644); err != nil {
		t.Fatalf("write demo: %v", err)
	}
	script := fakeParser(t, dir, "exit 0\n")

	engine, err := NewExecEngine(ExecConfig{Binary: script})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = engine.ParseDemo(context.Background(), Request{DemoPath: demo, OutPath: t.TempDir()})
	if !errors.Is(err, ErrNoArtifact) {
		t.Fatalf("expected ErrNoArtifact, got %v", err)
	}
}

func TestExecEngine_ParserFailure(t *testing.T) {
	dir := t.TempDir()
	demo := filepath.Join(dir, "match.dem")
	if err := os.WriteFile(demo, []byte("DEMO"), 0o644); err != nil {
		t.Fatalf("write demo: %v", err)
	}
	script := fakeParser(t, dir, "echo 'corrupt header' >&2\nexit 1\n")

	engine, err := NewExecEngine(ExecConfig{Binary: script})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = engine.ParseDemo(context.Background(), Request{DemoPath: demo, OutPath: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "corrupt header") {
		t.Fatalf("parser stderr should surface in the error, got %v", err)
	}
}
