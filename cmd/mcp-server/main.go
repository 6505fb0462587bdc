package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/replaylab/demobridge/internal/config"
	"github.com/replaylab/demobridge/internal/mcp"
)

func main() {
	root := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serves the demo-parse wrapper module over MCP",
		RunE:  run,
	}

	root.PersistentFlags().String("engine-catalog", "", "Path to the engine catalog YAML")
	root.PersistentFlags().String("engine", "", "Engine name to select from the catalog")
	root.PersistentFlags().String("parser-binary", "", "Parser binary path (bypasses the catalog)")
	root.PersistentFlags().String("postgres-url", "", "Postgres DSN for run history")
	root.PersistentFlags().Bool("history", false, "Record parse runs to Postgres")
	root.PersistentFlags().Int("port", 8000, "HTTP port")
	root.PersistentFlags().String("host", "0.0.0.0", "HTTP host")

	config.Init(root)

	if err := root.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := mcp.DefaultConfig()
	if err != nil {
		return err
	}
	srv := mcp.New(cfg)
	defer srv.Close()

	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	addr := host + ":" + strconv.Itoa(port)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("wrapper module listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
