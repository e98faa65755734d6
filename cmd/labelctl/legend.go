package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"image-labeler/internal/logging"
	"image-labeler/internal/project"
)

var (
	legendGenerate bool
	legendOutput   string
)

var legendCmd = &cobra.Command{
	Use:   "legend <project>",
	Short: "Print or regenerate the legend of a project",
	Long: `Write the project's legend in the XML legend format. With --generate the
label colors are first replaced by the generated sequence and the project is
saved.`,
	Args: cobra.ExactArgs(1),
	RunE: runLegend,
}

func init() {
	legendCmd.Flags().BoolVar(&legendGenerate, "generate", false, "regenerate label colors and save the project")
	legendCmd.Flags().StringVarP(&legendOutput, "output", "o", "", "write the legend to a file instead of stdout")
	rootCmd.AddCommand(legendCmd)
}

func runLegend(cmd *cobra.Command, args []string) error {
	l, err := loadProject(args[0])
	if err != nil {
		return err
	}

	if legendGenerate {
		l.palette.GenerateColors()
		l.file.Capture(l.store, l.palette)
		if err := l.file.Save(l.path); err != nil {
			return err
		}
		logging.Named("labelctl").Info("legend colors regenerated",
			zap.String("project", l.path), zap.Int("labels", l.palette.Len()))
	}

	out := cmd.OutOrStdout()
	if legendOutput != "" {
		f, err := os.Create(legendOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return project.EncodeLegend(out, project.LegendFromPalette(l.palette))
}
