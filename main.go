// Package main provides the entry point for the Image Labeler application.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"image-labeler/internal/app"
	"image-labeler/internal/config"
	"image-labeler/internal/logging"
	"image-labeler/internal/project"
	"image-labeler/internal/version"
	"image-labeler/ui/mainwindow"
	"image-labeler/ui/prefs"
)

const appID = "io.github.image-labeler"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "image-labeler [project|image|directory]",
	Short: "Draw bounding boxes and polygons over images and export label masks",
	Long: `Image Labeler opens an image, a directory of images or a labeling project
and lets you outline regions with boxes and polygons, assign them labels and
export segmentation masks.`,
	Version:      version.String(),
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.Log.Mode); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Sync()

	logger := logging.Named("main")
	logger.Info("starting", zap.String("version", version.String()))

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(app.NewTheme(cfg.Editor))

	state := app.NewState(cfg)
	win := mainwindow.New(fyneApp, state, prefs.Load())

	if len(args) == 1 {
		if err := open(state, args[0]); err != nil {
			logger.Error("failed to open argument", zap.String("path", args[0]), zap.Error(err))
		}
	}

	win.ShowAndRun()
	return nil
}

// open loads a project, a directory of images or a single image depending on
// what path points at.
func open(state *app.State, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	switch {
	case info.IsDir():
		_, err = state.OpenDirectory(path)
	case strings.EqualFold(filepath.Ext(path), project.Extension):
		err = state.LoadProject(path)
	default:
		err = state.OpenImage(path)
	}
	return err
}
