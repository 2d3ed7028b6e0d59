package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/interviewai/backend/cmd/interviewai/internal/build"
	"github.com/interviewai/backend/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket server",
	Long: `Run the answer server until interrupted.

Endpoints:
  GET  /health         liveness probe
  POST /session/init   summarize resume and job description, start a session
  POST /ask            stream an answer as text/plain
  POST /ask/image      stream a screenshot solution as text/plain
  POST /ask/summary    restate a question in one sentence
  GET  /ws/ask         answer questions over a WebSocket
  GET  /ws/stt         receive live transcript chunks
  POST /stt/push       publish a transcript chunk`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		addr := cfg.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := cfg.Build(ctx)
		if err != nil {
			return err
		}
		srv := server.New(p.Answerer(cfg), p.VisionPipeline(cfg), p.Preparer(), nil)

		slog.Info("interviewai: starting", "version", build.Version, "addr", addr, "model", cfg.Provider.TextModel)
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.ListenAndServe(ctx, addr)
		})
		g.Go(func() error {
			<-ctx.Done()
			slog.Info("interviewai: shutting down")
			return nil
		})
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
