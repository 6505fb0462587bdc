package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/replaylab/demobridge/internal/config"
	"github.com/replaylab/demobridge/internal/history"
	"github.com/replaylab/demobridge/internal/logging"
	"github.com/replaylab/demobridge/internal/mcp/tools"
	"github.com/replaylab/demobridge/internal/parser"
	"github.com/replaylab/demobridge/internal/wrapper"
)

type Config struct {
	ToolAdapters map[string]ToolAdapter
	Options      []server.StreamableHTTPOption
	Database     *history.Database
	Logger       logging.Logger
}

// DefaultConfig wires the serving stack from viper configuration: the
// engine from the catalog (or the parser_binary override), optionally
// decorated with run-history recording, behind the wrapper module.
func DefaultConfig() (Config, error) {
	baseLogger := logging.New(logging.Production())

	engine, err := buildEngine(baseLogger.WithName("engine"))
	if err != nil {
		return Config{}, err
	}

	var database *history.Database
	var entry parser.EntryPoint = engine
	if config.HistoryEnabled() {
		dsn := config.PostgresURL()
		if dsn == "" {
			return Config{}, fmt.Errorf("history enabled but no postgres DSN configured")
		}
		database, err = history.NewDatabase(history.Config{DSN: dsn})
		if err != nil {
			return Config{}, fmt.Errorf("connect history database: %w", err)
		}
		repo := history.NewRunRepository(database)
		entry = history.NewRunRecorder(engine, repo, baseLogger.WithName("history"))
	}

	module := wrapper.NewModule(entry)

	return Config{
		ToolAdapters: map[string]ToolAdapter{
			"parse": &tools.ParseHandler{Module: module},
		},
		Options: []server.StreamableHTTPOption{
			server.WithEndpointPath("/mcp/jsonrpc"),
			server.WithStateLess(true),
		},
		Database: database,
		Logger:   baseLogger.WithName("mcp"),
	}, nil
}

func buildEngine(logger logging.Logger) (*parser.ExecEngine, error) {
	if binary := config.ParserBinary(); binary != "" {
		return parser.NewExecEngine(parser.ExecConfig{
			Binary:  binary,
			Timeout: config.ParseTimeout(),
			Logger:  logger,
		})
	}
	catalog, err := parser.LoadCatalog(config.EngineCatalog())
	if err != nil {
		return nil, err
	}
	spec, err := catalog.Lookup(config.EngineName())
	if err != nil {
		return nil, err
	}
	return spec.Engine(logger)
}
