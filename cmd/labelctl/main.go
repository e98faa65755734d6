// Command labelctl works with labeling projects without the desktop shell:
// rendering masks, importing PASCAL VOC annotations, validating shape text,
// reporting coverage, editing legends and serving the mask API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"image-labeler/internal/config"
	"image-labeler/internal/logging"
	"image-labeler/internal/version"
)

var (
	configPath string
	logMode    string

	// cfg is loaded once the flags are parsed.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "labelctl",
	Short: "Command line tools for image labeling projects",
	Long: `labelctl renders segmentation masks from labeling projects, imports
PASCAL VOC annotations, validates textual shapes, reports label coverage and
serves the mask API.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if logMode != "" {
			cfg.Log.Mode = logMode
		}
		if err := logging.Init(cfg.Log.Mode); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		logging.Named("labelctl").Debug("config loaded",
			zap.String("path", configPath), zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "log mode: debug or release")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
