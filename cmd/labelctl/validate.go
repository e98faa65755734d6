package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"image-labeler/internal/annotation"
)

// errInvalidShape makes validate exit non-zero.
var errInvalidShape = errors.New("invalid shape")

var validateCmd = &cobra.Command{
	Use:   "validate <box|poly> <text>",
	Short: "Check a textual box or polygon",
	Long: `Parse a shape in the area-list text format, "x;y;w;h;" for boxes and
"x0;y0;x1;y1;...;" for polygons, and print its normalized form.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"box", "poly"},
	RunE:      runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	kind, text := args[0], args[1]
	out := cmd.OutOrStdout()
	switch kind {
	case "box":
		b, ok := annotation.ParseBox(text)
		if !ok {
			return fmt.Errorf("%w: %q is not x;y;w;h; with positive size", errInvalidShape, text)
		}
		fmt.Fprintf(out, "box %s (%dx%d at %d,%d)\n", annotation.FormatBox(b),
			b.Rect.Width(), b.Rect.Height(), b.Rect.Min.X, b.Rect.Min.Y)
	case "poly":
		p, ok := annotation.ParsePolygon(text)
		if !ok {
			return fmt.Errorf("%w: %q needs at least three x;y pairs", errInvalidShape, text)
		}
		fmt.Fprintf(out, "poly %s (%d points)\n", annotation.FormatPolygon(p), len(p.Points))
	default:
		return fmt.Errorf("unknown shape kind %q, want box or poly", kind)
	}
	return nil
}
