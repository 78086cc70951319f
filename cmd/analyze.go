package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/detroit-open-data/ccw-yoy/internal/config"
	"github.com/detroit-open-data/ccw-yoy/internal/export"
	"github.com/detroit-open-data/ccw-yoy/internal/render"
	"github.com/detroit-open-data/ccw-yoy/internal/store"
	"github.com/detroit-open-data/ccw-yoy/internal/study"
	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

type analyzeOptions struct {
	Field   yoy.Field
	Type    yoy.AnalysisType
	Months  int
	Dir     string
	Formats []export.Format
	NoStore bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare CCW arrests before and after the pandemic flag date",
	Long:  "Aggregates CCW-only arrests by the chosen field, compares pre- and post-pandemic counts, prints a summary and writes the configured exports.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fieldName, _ := cmd.Flags().GetString("field")
		typeName, _ := cmd.Flags().GetString("type")
		months, _ := cmd.Flags().GetInt("months")
		dir, _ := cmd.Flags().GetString("out")
		formats, _ := cmd.Flags().GetStringSlice("format")
		noStore, _ := cmd.Flags().GetBool("no-store")

		field, err := yoy.ParseField(fieldName)
		if err != nil {
			return err
		}
		typ, err := yoy.ParseAnalysisType(typeName)
		if err != nil {
			return err
		}
		if dir == "" {
			dir = cfg.Export.Dir
		}
		if !cmd.Flags().Changed("format") {
			formats = cfg.Export.Formats
		}
		fs, err := export.ParseFormats(formats)
		if err != nil {
			return err
		}

		_, err = runAnalyze(ctx, cfg, analyzeOptions{
			Field:   field,
			Type:    typ,
			Months:  months,
			Dir:     dir,
			Formats: fs,
			NoStore: noStore,
		}, os.Stdout)
		return err
	},
}

func init() {
	analyzeCmd.Flags().String("field", yoy.ScoutCarArea.String(), "aggregation field (scout_car_area, zip_code, precinct, SNF)")
	analyzeCmd.Flags().String("type", yoy.Percent.String(), `analysis type (Percent, Absolute, "Total number of"; "total" is shorthand for the last)`)
	analyzeCmd.Flags().Int("months", 0, "half-width of the filter window in months (0 uses analysis.filter_months)")
	analyzeCmd.Flags().String("out", "", "output directory (defaults to export.dir)")
	analyzeCmd.Flags().StringSlice("format", nil, "output formats: csv, xlsx, geojson, svg (defaults to export.formats)")
	analyzeCmd.Flags().Bool("no-store", false, "do not record the run in the run history")
	rootCmd.AddCommand(analyzeCmd)
}

// runAnalyze runs one comparison, exports it, records it and prints the
// summary to w.
func runAnalyze(ctx context.Context, c *config.Config, opts analyzeOptions, w io.Writer) (*store.Run, error) {
	log := zap.L().With(zap.String("command", "analyze"))

	p, err := c.Params()
	if err != nil {
		return nil, err
	}
	in, err := studyInput(c, opts.Field)
	if err != nil {
		return nil, eris.Wrap(err, "analyze")
	}

	ds, err := study.Prepare(ctx, in, p)
	if err != nil {
		return nil, err
	}
	r, err := study.Analyze(ds, opts.Field, opts.Type, opts.Months)
	if err != nil {
		return nil, err
	}
	run := store.NewRun(r, time.Now())

	formats := opts.Formats
	if r.Layer == nil {
		formats = tabularFormats(formats)
		if len(formats) < len(opts.Formats) {
			log.Warn("no boundary layer loaded, skipping map exports", zap.String("field", opts.Field.String()))
		}
	}
	if len(formats) > 0 {
		_, err := export.Write(r, export.Options{
			Dir:     opts.Dir,
			Formats: formats,
			Trend:   study.Trend(ds, yoy.ByQuarter, opts.Months),
			RunID:   run.ID,
			SVG:     render.DefaultSVGOptions(),
		})
		if err != nil {
			return nil, err
		}
	}

	if !opts.NoStore {
		st, err := store.Open(ctx, c.Store.Driver, c.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
			if err := st.SaveRun(ctx, run); err != nil {
				return nil, err
			}
			log.Info("run recorded", zap.String("run_id", run.ID))
		}
	}

	formatSummary(w, r, run.ID)
	return run, nil
}

// tabularFormats drops the formats that need boundary geometry.
func tabularFormats(formats []export.Format) []export.Format {
	var out []export.Format
	for _, f := range formats {
		if f == export.GeoJSON || f == export.SVG {
			continue
		}
		out = append(out, f)
	}
	return out
}

// formatSummary writes the report as a table of areas with values.
func formatSummary(w io.Writer, r *study.Report, runID string) {
	fmt.Fprintf(w, "%s\n", r.Title)
	fmt.Fprintf(w, "Window: %s to %s (%d CCW arrests, %d in study window)\n",
		r.Window.Start.Format("2006-01-02"), r.Window.End.Format("2006-01-02"),
		r.Stages.InWindow, r.Stages.StudyWindow)
	if runID != "" {
		fmt.Fprintf(w, "Run: %s\n", runID)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "AREA\tPRE\tPOST\tVALUE")
	for _, a := range r.Summary() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", a.Name, a.Pre, a.Post, strconv.FormatFloat(a.Value, 'f', -1, 64))
	}
	_ = tw.Flush()
}
