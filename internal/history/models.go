package history

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// ParseRun is one recorded invocation of the parser entry point.
type ParseRun struct {
	bun.BaseModel `bun:"table:parse_runs"`

	ID              string     `bun:"id,pk"` // uuid
	DemoID          string     `bun:"demo_id"`
	DemoPath        string     `bun:"demo_path"`
	ParseRate       int        `bun:"parse_rate"`
	ParseFrames     bool       `bun:"parse_frames"`
	TradeTime       int64      `bun:"trade_time"`
	RoundBuyStyle   string     `bun:"round_buy_style"`
	DamagesRolled   bool       `bun:"damages_rolled"`
	JSONIndentation bool       `bun:"json_indentation"`
	Outcome         string     `bun:"outcome"` // ok|error
	ErrorMessage    *string    `bun:"error_message"`
	OutputFile      *string    `bun:"output_file"`
	OutputSize      *int64     `bun:"output_size"`
	MapName         *string    `bun:"map_name"`
	Rounds          *int       `bun:"rounds"`
	StartedAt       time.Time  `bun:"started_at"`
	FinishedAt      *time.Time `bun:"finished_at"`
}
