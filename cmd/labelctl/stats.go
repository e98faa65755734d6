package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"image-labeler/internal/raster"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats <project>",
	Short: "Report per-label pixel coverage of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	l, err := loadProject(args[0])
	if err != nil {
		return err
	}
	snap := l.store.Snapshot()
	mask, err := raster.BuildSnapshot(cmd.Context(), l.width, l.height, snap)
	if err != nil {
		return err
	}
	cov := raster.Stats(mask, snap)

	if statsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cov)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Image: %dx%d, %d boxes, %d polygons\n", l.width, l.height, len(snap.Boxes), len(snap.Polygons))
	fmt.Fprintf(out, "Labeled: %.2f%%\n", cov.LabeledFraction*100)
	fmt.Fprintf(out, "Shape area: mean %.1f px, stddev %.1f px\n\n", cov.MeanShapeArea, cov.ShapeAreaStdDev)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tPIXELS\tCOVERAGE")
	for _, lc := range cov.Labels {
		name := "?"
		if lab, ok := l.palette.Label(lc.Label); ok {
			name = lab.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f%%\n", lc.Label, name, lc.Pixels, lc.Fraction*100)
	}
	return tw.Flush()
}
