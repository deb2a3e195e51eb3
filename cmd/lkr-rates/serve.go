package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimiro1/banner"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/damon-houk/lkr-exchange-tools/internal/config"
	"github.com/damon-houk/lkr-exchange-tools/internal/infrastructure/rpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the exchange-rate tools over stdio or HTTP",
	Long: `Serve the tool catalog until interrupted.

The stdio transport speaks newline-delimited JSON-RPC on stdin/stdout and is
what MCP clients launch. The http transport serves JSON-RPC on /rpc and /ws,
direct calls on /tools/{name}, the call journal on /calls and metrics on
/metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("transport") {
			cfg.Server.Transport, _ = cmd.Flags().GetString("transport")
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		app, err := newApp(cfg, nil, journalWrite)
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				app.Logger.Error("Error closing journal", map[string]interface{}{"error": err.Error()})
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Server.Transport == config.TransportHTTP {
			printBanner()
			return serveHTTP(ctx, app)
		}
		return serveStdio(ctx, app)
	},
}

func init() {
	serveCmd.Flags().String("transport", "", "transport to serve: stdio or http (default from config)")
	serveCmd.Flags().String("addr", "", "listen address for the http transport (default from config)")
}

func serveStdio(ctx context.Context, app *App) error {
	transport := rpc.NewStdioTransport(app.RPC, os.Stdin, os.Stdout, app.Logger)

	// end of input stops the closer as well
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return transport.Serve(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return transport.Close()
	})

	err := g.Wait()
	app.Logger.Info("Stdio transport stopped", nil)
	return err
}

func serveHTTP(ctx context.Context, app *App) error {
	server := &http.Server{
		Addr:              app.Config.Server.Addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info("Server listening", map[string]interface{}{
			"addr": server.Addr,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("Shutting down server", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func printBanner() {
	tpl := `{{ .Title "LKR RATES" "" 0 }}` + "\nVersion: " + version + "\n"
	banner.Init(os.Stderr, true, false, bytes.NewBufferString(tpl))
}
