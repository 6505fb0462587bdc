package parser

import (
	"path/filepath"
	"testing"
)

func TestNormalize_Defaults(t *testing.T) {
	req := Request{DemoPath: "/demos/astralis-vs-navi.dem"}
	norm := req.Normalize()

	if norm.ParseRate != DefaultParseRate {
		t.Fatalf("expected default parse rate %d, got %d", DefaultParseRate, norm.ParseRate)
	}
	if norm.TradeTime != DefaultTradeTime {
		t.Fatalf("expected default trade time %d, got %d", DefaultTradeTime, norm.TradeTime)
	}
	if norm.RoundBuyStyle != BuyStyleHLTV {
		t.Fatalf("expected hltv buy style, got %s", norm.RoundBuyStyle)
	}
	if norm.DemoID != "astralis-vs-navi" {
		t.Fatalf("demo id should come from the file stem, got %s", norm.DemoID)
	}
}

func TestNormalize_KeepsValidValues(t *testing.T) {
	req := Request{
		DemoPath:      "/demos/x.dem",
		ParseRate:     32,
		TradeTime:     7,
		RoundBuyStyle: BuyStyleCSGO,
		DemoID:        "given-id",
	}
	norm := req.Normalize()
	if norm != req {
		t.Fatalf("valid requests must pass through unchanged:\n got %+v\nwant %+v", norm, req)
	}
}

func TestNormalize_UnknownBuyStyle(t *testing.T) {
	req := Request{DemoPath: "/demos/x.dem", RoundBuyStyle: "esea"}
	if got := req.Normalize().RoundBuyStyle; got != BuyStyleHLTV {
		t.Fatalf("unknown buy style should fall back to hltv, got %s", got)
	}
}

func TestOutputFile(t *testing.T) {
	req := Request{DemoID: "demo-001", OutPath: "/var/out"}
	want := filepath.Join("/var/out", "demo-001.json")
	if got := req.OutputFile(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
