package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"image-labeler/internal/cache"
	"image-labeler/internal/logging"
	"image-labeler/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mask HTTP API",
	Long: `Serve the mask rendering and shape validation API. Rendered masks are
cached in redis when redis.enabled is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger := logging.Named("labelctl")

	mc := cache.New(cfg.Redis)
	if err := mc.Ping(cmd.Context()); err != nil && !errors.Is(err, cache.ErrDisabled) {
		logger.Warn("redis unreachable, serving without cache", zap.Error(err))
		_ = mc.Close()
		mc = nil
	}
	defer mc.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(cfg, mc).Run(ctx)
}
