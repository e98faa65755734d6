package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"image-labeler/internal/app"
	"image-labeler/internal/logging"
)

var watchCmd = &cobra.Command{
	Use:   "watch <project>",
	Short: "Re-export the segmented image whenever a project changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	logger := logging.Named("labelctl")
	state := app.NewState(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	export := func() {
		if err := state.LoadProject(path); err != nil {
			logger.Warn("project not loaded", zap.String("path", path), zap.Error(err))
			return
		}
		out, err := state.ExportSegmented(ctx)
		if err != nil {
			logger.Warn("export failed", zap.String("path", path), zap.Error(err))
			return
		}
		logger.Info("segmented image written", zap.String("path", out))
	}

	w, err := app.NewWatcher(path, app.DefaultDebounce)
	if err != nil {
		return err
	}
	w.OnChange(func(string) { export() })
	export()
	w.Start()
	logger.Info("watching", zap.String("path", w.Path()))

	<-ctx.Done()
	return w.Stop()
}
