package parser

import (
	"path/filepath"
	"strings"
)

// Buy style classifications understood by the parser binary.
const (
	BuyStyleHLTV = "hltv"
	BuyStyleCSGO = "csgo"
)

const (
	DefaultParseRate = 128
	DefaultTradeTime = 5
)

// Request carries the nine converted call arguments, in call order.
// The adapter fills it verbatim; range normalization happens on the
// engine side because valid ranges belong to the callee.
type Request struct {
	DemoPath        string `json:"demo_path"`
	ParseRate       int    `json:"parse_rate"`
	ParseFrames     bool   `json:"parse_frames"`
	TradeTime       int64  `json:"trade_time"`
	RoundBuyStyle   string `json:"round_buy_style"`
	DamagesRolled   bool   `json:"damages_rolled"`
	DemoID          string `json:"demo_id"`
	JSONIndentation bool   `json:"json_indentation"`
	OutPath         string `json:"out_path"`
}

// Normalize clamps callee-defined option ranges, mirroring what the
// reference parser tolerates: a non-positive parse rate falls back to
// 128, a non-positive trade time to 5 seconds, an unknown buy style to
// hltv, and an empty demo id to the demo file stem.
func (r Request) Normalize() Request {
	if r.ParseRate < 1 {
		r.ParseRate = DefaultParseRate
	}
	if r.TradeTime < 1 {
		r.TradeTime = DefaultTradeTime
	}
	switch r.RoundBuyStyle {
	case BuyStyleHLTV, BuyStyleCSGO:
	default:
		r.RoundBuyStyle = BuyStyleHLTV
	}
	if r.DemoID == "" {
		base := filepath.Base(r.DemoPath)
		r.DemoID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return r
}

// OutputFile is the artifact path the parser binary writes for this
// request: <outpath>/<demoid>.json.
func (r Request) OutputFile() string {
	return filepath.Join(r.OutPath, r.DemoID+".json")
}
