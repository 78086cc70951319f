package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/detroit-open-data/ccw-yoy/internal/config"
	"github.com/detroit-open-data/ccw-yoy/internal/study"
	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Print CCW arrests per quarter or month",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		byName, _ := cmd.Flags().GetString("by")
		months, _ := cmd.Flags().GetInt("months")

		by, err := yoy.ParsePeriod(byName)
		if err != nil {
			return err
		}

		points, err := runTrend(ctx, cfg, by, months)
		if err != nil {
			return err
		}
		formatTrend(os.Stdout, points)
		return nil
	},
}

func init() {
	trendCmd.Flags().String("by", yoy.ByQuarter.String(), "period (quarter, month)")
	trendCmd.Flags().Int("months", 0, "half-width of the filter window in months (0 uses analysis.filter_months)")
	rootCmd.AddCommand(trendCmd)
}

// runTrend counts CCW-only arrests per period inside the filter window.
// No boundary layers are loaded.
func runTrend(ctx context.Context, c *config.Config, by yoy.Period, months int) ([]yoy.TrendPoint, error) {
	p, err := c.Params()
	if err != nil {
		return nil, err
	}
	ds, err := study.Prepare(ctx, study.Input{Incidents: c.Sources.Incidents}, p)
	if err != nil {
		return nil, err
	}
	return study.Trend(ds, by, months), nil
}

func formatTrend(w io.Writer, points []yoy.TrendPoint) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tPRE\tPOST")
	for _, tp := range points {
		marker := ""
		if tp.Pandemic {
			marker = "\t*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d%s\n", tp.Period, tp.Pre, tp.Post, marker)
	}
	_ = tw.Flush()
}
