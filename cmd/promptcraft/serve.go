package main

import (
	"PromptCraft/internal/server"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var bindAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API and the state WebSocket",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&bindAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := startSession(cmd, false)
	if err != nil {
		return err
	}
	defer rt.close()

	if cmd.Flags().Changed("addr") {
		rt.cfg.Server.BindAddr = bindAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(rt.cfg.Server, rt.session.Engine, rt.logger)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	rt.logger.Infow("Shutting down...")
	return srv.Stop(context.Background())
}
