package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/detroit-open-data/ccw-yoy/internal/config"
	"github.com/detroit-open-data/ccw-yoy/internal/fetcher"
	"github.com/detroit-open-data/ccw-yoy/internal/resilience"
	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the incident export and boundary layers",
	Long:  "Downloads every source with a configured url into its local path. Unchanged sources are skipped using the stored ETag; zip archives are extracted into a directory.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		force, _ := cmd.Flags().GetBool("force")

		targets := fetchTargets(cfg)
		if len(targets) == 0 {
			return eris.New("fetch: no source has a url configured")
		}

		results, err := fetcher.Sync(ctx, newFetcher(cfg.Fetch), targets, force)
		if err != nil {
			return err
		}
		formatFetchResults(os.Stdout, results)
		return nil
	},
}

func init() {
	fetchCmd.Flags().Bool("force", false, "download even if the stored ETag is current")
	rootCmd.AddCommand(fetchCmd)
}

func newFetcher(fc config.FetchConfig) *fetcher.HTTPFetcher {
	retry := resilience.DefaultRetryConfig()
	if fc.MaxAttempts > 0 {
		retry.MaxAttempts = fc.MaxAttempts
	}
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:         fc.UserAgent,
		Timeout:           fc.Timeout,
		RequestsPerSecond: fc.RequestsPerSecond,
		Retry:             retry,
	})
}

// fetchTargets lists the configured sources that have a url.
func fetchTargets(c *config.Config) []fetcher.Target {
	var targets []fetcher.Target
	if c.Sources.IncidentsURL != "" {
		targets = append(targets, fetcher.Target{Name: "incidents", URL: c.Sources.IncidentsURL, Path: c.Sources.Incidents})
	}
	layers := map[yoy.Field]config.LayerConfig{
		yoy.ScoutCarArea: c.Sources.ScoutCarAreas,
		yoy.ZipCode:      c.Sources.ZipCodes,
		yoy.Precinct:     c.Sources.Precincts,
		yoy.SNF:          c.Sources.SNF,
	}
	for _, f := range yoy.Fields {
		lc := layers[f]
		if lc.URL == "" {
			continue
		}
		targets = append(targets, fetcher.Target{Name: f.String(), URL: lc.URL, Path: lc.Path})
	}
	return targets
}

func formatFetchResults(w io.Writer, results []fetcher.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tPATH\tSTATUS\tBYTES")
	for _, r := range results {
		status := "unchanged"
		if r.Changed {
			status = "updated"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.Name, r.Path, status, r.Bytes)
	}
	_ = tw.Flush()
}
