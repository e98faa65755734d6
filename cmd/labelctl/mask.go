package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"image-labeler/internal/imageio"
	"image-labeler/internal/logging"
	"image-labeler/internal/raster"
)

var (
	maskOutput string
	maskFormat string
)

var maskCmd = &cobra.Command{
	Use:   "mask <project>",
	Short: "Render the colorized label mask of a project",
	Long: `Rasterize every shape of the project into a label mask and write it as an
image colored by the legend, or as JSON label rows with --format json.
Without -o the image is written next to the project's image as
<name>_segmented.<ext>.`,
	Args: cobra.ExactArgs(1),
	RunE: runMask,
}

func init() {
	maskCmd.Flags().StringVarP(&maskOutput, "output", "o", "", "output file")
	maskCmd.Flags().StringVar(&maskFormat, "format", "", "png, jpeg, webp or json (default from config)")
	rootCmd.AddCommand(maskCmd)
}

func runMask(cmd *cobra.Command, args []string) error {
	l, err := loadProject(args[0])
	if err != nil {
		return err
	}
	mask, err := raster.BuildSnapshot(cmd.Context(), l.width, l.height, l.store.Snapshot())
	if err != nil {
		return err
	}

	if maskFormat == "json" {
		rows := make([][]int, mask.Height)
		for y := range rows {
			rows[y] = mask.Row(y)
		}
		out := cmd.OutOrStdout()
		if maskOutput != "" {
			f, err := os.Create(maskOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return json.NewEncoder(out).Encode(map[string]any{
			"width": mask.Width, "height": mask.Height, "rows": rows,
		})
	}

	format := cfg.ExportFormat()
	if maskFormat != "" {
		if format, err = imageio.ParseFormat(maskFormat); err != nil {
			return err
		}
	}
	if cfg.Export.AutoColors || l.palette.NeedsGeneratedColors() {
		l.palette.GenerateColors()
	}

	out := maskOutput
	if out == "" {
		img := l.file.GetImagePath(l.path)
		if img == "" {
			img = l.path
		}
		out = imageio.DerivedPath(img, imageio.SuffixSegmented, format.Ext())
	}
	if err := imageio.Save(raster.Colorize(mask, l.palette), out, format, cfg.Export.Quality); err != nil {
		return err
	}
	logging.Named("labelctl").Info("mask written", zap.String("path", out),
		zap.Int("width", mask.Width), zap.Int("height", mask.Height))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
