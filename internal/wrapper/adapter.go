package wrapper

import (
	"context"

	"github.com/replaylab/demobridge/internal/parser"
)

// Adapter is the call boundary in front of a parser entry point. It is
// stateless: each Call converts its own arguments and keeps nothing
// across invocations.
type Adapter struct {
	entry parser.EntryPoint
}

func NewAdapter(entry parser.EntryPoint) *Adapter {
	return &Adapter{entry: entry}
}

// Call converts the positional arguments and forwards them to the
// entry point. A conversion failure returns an *ArgumentError and the
// entry point is never invoked; otherwise the entry point's result and
// error are returned exactly as produced, with no wrapping.
func (a *Adapter) Call(ctx context.Context, args []any) (*parser.Result, error) {
	req, err := Convert(args)
	if err != nil {
		return nil, err
	}
	return a.entry.ParseDemo(ctx, req)
}
