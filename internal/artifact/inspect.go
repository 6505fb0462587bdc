// Package artifact inspects the JSON files the parser binary emits,
// without binding to their full schema.
package artifact

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Summary captures the header fields of a parsed-demo artifact.
type Summary struct {
	MatchID       string `json:"match_id"`
	MapName       string `json:"map_name"`
	TickRate      int64  `json:"tick_rate"`
	PlaybackTicks int64  `json:"playback_ticks"`
	ParseRate     int    `json:"parse_rate"`
	Rounds        int    `json:"rounds"`
}

// Inspect reads an artifact and extracts its header summary. The file
// must at least be valid JSON carrying a MapName; anything else is
// reported as a malformed artifact.
func Inspect(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return inspectBytes(path, data)
}

func inspectBytes(path string, data []byte) (*Summary, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("artifact %s is not valid JSON", path)
	}
	root := gjson.ParseBytes(data)
	mapName := root.Get("MapName")
	if !mapName.Exists() {
		return nil, fmt.Errorf("artifact %s has no MapName field", path)
	}
	return &Summary{
		MatchID:       root.Get("MatchId").String(),
		MapName:       mapName.String(),
		TickRate:      root.Get("TickRate").Int(),
		PlaybackTicks: root.Get("PlaybackTicks").Int(),
		ParseRate:     int(root.Get("ParseRate").Int()),
		Rounds:        int(root.Get("GameRounds.#").Int()),
	}, nil
}
