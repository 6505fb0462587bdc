package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/replaylab/demobridge/internal/artifact"
	"github.com/replaylab/demobridge/internal/batch"
	"github.com/replaylab/demobridge/internal/config"
	"github.com/replaylab/demobridge/internal/fetch"
	"github.com/replaylab/demobridge/internal/history"
	"github.com/replaylab/demobridge/internal/logging"
	"github.com/replaylab/demobridge/internal/parser"
	"github.com/replaylab/demobridge/internal/wrapper"
)

var rootCmd = &cobra.Command{
	Use:   "parsectl",
	Short: "Demo parsing CLI (parse, batch, fetch, inspect)",
}

var parseCmd = &cobra.Command{
	Use:   "parse <demofile>",
	Short: "Parse one demo file through the wrapper module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, cleanup, err := buildEntryPoint()
		if err != nil {
			return err
		}
		defer cleanup()

		module := wrapper.NewModule(entry)

		rate, _ := cmd.Flags().GetInt("parserate")
		frames, _ := cmd.Flags().GetBool("parseframes")
		tradeTime, _ := cmd.Flags().GetInt64("tradetime")
		buyStyle, _ := cmd.Flags().GetString("buystyle")
		dmgRolled, _ := cmd.Flags().GetBool("dmgrolled")
		demoID, _ := cmd.Flags().GetString("demoid")
		indent, _ := cmd.Flags().GetBool("indent")

		ctx, cancel := signalContext()
		defer cancel()

		// The module takes the positional tuple exactly as a host
		// runtime would supply it.
		result, err := module.Call(ctx, "parse", []any{
			args[0], rate, frames, tradeTime, buyStyle, dmgRolled,
			demoID, indent, config.OutDir(),
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Parse every .dem file under a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, cleanup, err := buildEntryPoint()
		if err != nil {
			return err
		}
		defer cleanup()

		rate, _ := cmd.Flags().GetInt("parserate")
		frames, _ := cmd.Flags().GetBool("parseframes")
		tradeTime, _ := cmd.Flags().GetInt64("tradetime")
		buyStyle, _ := cmd.Flags().GetString("buystyle")
		dmgRolled, _ := cmd.Flags().GetBool("dmgrolled")
		indent, _ := cmd.Flags().GetBool("indent")

		template := parser.Request{
			ParseRate:       rate,
			ParseFrames:     frames,
			TradeTime:       tradeTime,
			RoundBuyStyle:   buyStyle,
			DamagesRolled:   dmgRolled,
			JSONIndentation: indent,
			OutPath:         config.OutDir(),
		}

		ctx, cancel := signalContext()
		defer cancel()

		items, err := batch.Run(ctx, entry, args[0], batch.Options{
			Workers:  config.BatchWorkers(),
			Template: template,
			Logger:   logging.New(logging.DefaultLogger()).WithName("batch"),
		})
		if err != nil {
			return err
		}

		failed := 0
		for _, item := range items {
			if item.Err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL\t%s\t%v\n", item.DemoPath, item.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK\t%s\t%s\t%d rounds\n",
				item.DemoPath, item.Result.MapName, item.Result.Rounds)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d demos failed", failed, len(items))
		}
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <owner/repo|url> [tag]",
	Short: "Download .dem release assets from a repository",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, repo, err := fetch.RepoFromURL(args[0])
		if err != nil {
			return err
		}
		tag := ""
		if len(args) == 2 {
			tag = args[1]
		}

		logger := logging.New(logging.DefaultLogger()).WithName("fetch")
		client := fetch.NewGitHubClient(config.GitHubToken())
		fetcher := fetch.NewDemoFetcher(client, owner, repo, logger)

		ctx, cancel := signalContext()
		defer cancel()

		assets, err := fetcher.ListDemos(ctx, tag)
		if err != nil {
			return err
		}
		if len(assets) == 0 {
			return fmt.Errorf("release has no .dem assets")
		}
		for _, asset := range assets {
			if _, err := fetcher.Download(ctx, asset, config.FetchDir()); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "downloaded %d demos to %s\n", len(assets), config.FetchDir())
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <artifact.json>",
	Short: "Summarize a parsed-demo artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := artifact.Inspect(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, summary)
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent parse runs from history",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := config.PostgresURL()
		if dsn == "" {
			return fmt.Errorf("postgres DSN must be configured for run history")
		}
		database, err := history.NewDatabase(history.Config{DSN: dsn})
		if err != nil {
			return err
		}
		defer database.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		repo := history.NewRunRepository(database)
		runs, err := repo.RecentRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		for _, run := range runs {
			line := fmt.Sprintf("%s\t%s\t%s\t%s", run.StartedAt.Format("2006-01-02 15:04:05"), run.DemoID, run.Outcome, run.DemoPath)
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func main() {
	config.Init(rootCmd)

	rootCmd.PersistentFlags().String("out", "", "Output directory for artifacts")
	_ = viper.BindPFlag(config.KeyOutDir, rootCmd.PersistentFlags().Lookup("out"))

	for _, cmd := range []*cobra.Command{parseCmd, batchCmd} {
		cmd.Flags().Int("parserate", parser.DefaultParseRate, "Spacing between parsed frames, in ticks")
		cmd.Flags().Bool("parseframes", false, "Parse per-tick frame data")
		cmd.Flags().Int64("tradetime", parser.DefaultTradeTime, "Trade window length in seconds")
		cmd.Flags().String("buystyle", parser.BuyStyleHLTV, "Round buy classification (hltv or csgo)")
		cmd.Flags().Bool("dmgrolled", false, "Aggregate damage events per tick")
		cmd.Flags().Bool("indent", false, "Pretty-print the JSON artifact")
	}
	parseCmd.Flags().String("demoid", "", "Demo identifier (defaults to the file stem)")
	runsCmd.Flags().Int("limit", 20, "Maximum runs to list")

	rootCmd.AddCommand(parseCmd, batchCmd, fetchCmd, inspectCmd, runsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("parsectl: %v", err)
	}
}

func buildEntryPoint() (parser.EntryPoint, func(), error) {
	logger := logging.New(logging.DefaultLogger())

	var engine *parser.ExecEngine
	var err error
	if binary := config.ParserBinary(); binary != "" {
		engine, err = parser.NewExecEngine(parser.ExecConfig{
			Binary:  binary,
			Timeout: config.ParseTimeout(),
			Logger:  logger.WithName("engine"),
		})
	} else {
		var catalog *parser.Catalog
		catalog, err = parser.LoadCatalog(config.EngineCatalog())
		if err == nil {
			var spec parser.EngineSpec
			spec, err = catalog.Lookup(config.EngineName())
			if err == nil {
				engine, err = spec.Engine(logger.WithName("engine"))
			}
		}
	}
	if err != nil {
		return nil, nil, err
	}

	if !config.HistoryEnabled() {
		return engine, func() {}, nil
	}

	dsn := config.PostgresURL()
	if dsn == "" {
		return nil, nil, fmt.Errorf("history enabled but no postgres DSN configured")
	}
	database, err := history.NewDatabase(history.Config{DSN: dsn})
	if err != nil {
		return nil, nil, err
	}
	repo := history.NewRunRepository(database)
	recorder := history.NewRunRecorder(engine, repo, logger.WithName("history"))
	return recorder, func() { _ = database.Close() }, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; cancel() }()
	return ctx, cancel
}

func printJSON(cmd *cobra.Command, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return nil
}
