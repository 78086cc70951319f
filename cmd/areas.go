package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/detroit-open-data/ccw-yoy/internal/boundary"
	"github.com/detroit-open-data/ccw-yoy/internal/config"
	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "List the areas of a boundary layer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fieldName, _ := cmd.Flags().GetString("field")

		field, err := yoy.ParseField(fieldName)
		if err != nil {
			return err
		}

		layer, err := loadLayer(cfg, field)
		if err != nil {
			return err
		}
		formatAreas(os.Stdout, layer)
		return nil
	},
}

func init() {
	areasCmd.Flags().String("field", yoy.ScoutCarArea.String(), "layer to list (scout_car_area, zip_code, precinct, SNF)")
	rootCmd.AddCommand(areasCmd)
}

func loadLayer(c *config.Config, field yoy.Field) (*boundary.Layer, error) {
	spec, ok := layerSpec(c, field)
	if !ok {
		return nil, eris.Errorf("areas: no boundary layer configured for %s", field)
	}
	return boundary.Load(spec)
}

// formatAreas writes one row per area with its label anchor.
func formatAreas(w io.Writer, layer *boundary.Layer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "AREA\tLON\tLAT")
	for _, a := range layer.Areas {
		lon, lat := a.Centroid()
		fmt.Fprintf(tw, "%s\t%.6f\t%.6f\n", a.Name, lon, lat)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d areas\n", len(layer.Areas))
}
