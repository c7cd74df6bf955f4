package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/toydb/go/pkg/config"
	"github.com/example/toydb/go/pkg/restapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP (stdio or streamable HTTP) and, if enabled, the REST API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	mcpSrv := newMCPServer(svc)
	mcpSrv.LogCatalogue(cfg.Server.Name)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	g.Go(func() error {
		// The MCP session ending ends the process, REST included.
		defer cancel()
		switch cfg.MCP.Transport {
		case config.TransportHTTP:
			return mcpSrv.ServeHTTP(runCtx, cfg.MCP.Addr)
		default:
			logger.Info("MCP listening", zap.String("transport", config.TransportStdio))
			return mcpSrv.ServeStdio(runCtx, os.Stdin, os.Stdout)
		}
	})

	if cfg.REST.Enabled {
		api := restapi.New(svc, logger.Named("rest"))
		g.Go(func() error {
			return api.Serve(runCtx, cfg.REST.Addr)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
