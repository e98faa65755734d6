package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"image-labeler/internal/app"
	"image-labeler/internal/project"
)

var (
	vocPolygons string
	vocOutput   string
	vocRoot     string
)

var importVOCCmd = &cobra.Command{
	Use:   "import-voc <annotation.xml>",
	Short: "Create a project from a PASCAL VOC annotation",
	Long: `Open the image a PASCAL VOC annotation names, add its objects as bounding
boxes and, with --polygons, the records of a polygon file, then save the
result as a project.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportVOC,
}

func init() {
	importVOCCmd.Flags().StringVar(&vocPolygons, "polygons", "", "PASCAL polygon file to import as well")
	importVOCCmd.Flags().StringVarP(&vocOutput, "output", "o", "", "project file to write")
	importVOCCmd.Flags().StringVar(&vocRoot, "root", "", "dataset root (overrides pascal.root)")
	_ = importVOCCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(importVOCCmd)
}

func runImportVOC(cmd *cobra.Command, args []string) error {
	c := *cfg
	if vocRoot != "" {
		c.Pascal.Root = vocRoot
	}
	state := app.NewState(&c)

	res, err := state.ImportPascal(args[0])
	if err != nil {
		return err
	}
	if vocPolygons != "" {
		polys, err := state.ImportPascalPolygons(vocPolygons)
		if err != nil {
			return err
		}
		res.Polygons += polys.Polygons
		res.NewLabels += polys.NewLabels
		res.Skipped += polys.Skipped
	}

	out := vocOutput
	if !strings.HasSuffix(out, project.Extension) {
		out += project.Extension
	}
	if err := state.SaveProject(out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d boxes, %d polygons, %d new labels, %d skipped\n",
		out, res.Boxes, res.Polygons, res.NewLabels, res.Skipped)
	return nil
}
