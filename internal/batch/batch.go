// Package batch fans a directory of demo files out over a parser entry
// point with bounded concurrency.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/replaylab/demobridge/internal/logging"
	"github.com/replaylab/demobridge/internal/parser"
)

type Options struct {
	// Workers bounds concurrent parses; values below 1 mean 1.
	Workers int
	// Template supplies every option except DemoPath and DemoID, which
	// are derived per file.
	Template parser.Request
	Logger   logging.Logger
}

// Item is the outcome of one demo in a batch.
type Item struct {
	DemoPath string
	Result   *parser.Result
	Err      error
}

// Run parses every .dem file under dir. Individual parse failures are
// collected per item rather than aborting the batch; the returned error
// covers directory walking only. Items come back in path order.
func Run(ctx context.Context, entry parser.EntryPoint, dir string, opts Options) ([]Item, error) {
	demos, err := listDemos(dir)
	if err != nil {
		return nil, err
	}
	if len(demos) == 0 {
		return nil, fmt.Errorf("no .dem files under %s", dir)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	items := make([]Item, len(demos))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, demoPath := range demos {
		g.Go(func() error {
			req := opts.Template
			req.DemoPath = demoPath
			req.DemoID = "" // derived from the file name
			res, err := entry.ParseDemo(ctx, req)
			if err != nil {
				opts.Logger.Error(err, "batch parse failed", "demo", demoPath)
			}
			items[i] = Item{DemoPath: demoPath, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func listDemos(dir string) ([]string, error) {
	var demos []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".dem") {
			demos = append(demos, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("demo directory %s does not exist", dir)
		}
		return nil, err
	}
	sort.Strings(demos)
	return demos, nil
}
