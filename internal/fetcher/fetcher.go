// Package fetcher downloads the incident export and boundary layers from
// the open data portal into the local paths the study reads.
package fetcher

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Target is one remote source and the local path it is stored at. Zip
// archives are extracted into Path as a directory.
type Target struct {
	Name string
	URL  string
	Path string
}

// Result describes one synced target.
type Result struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Bytes   int64  `json:"bytes"`
	Changed bool   `json:"changed"`
	// Files lists extracted files for zip archives.
	Files []string `json:"files,omitempty"`
}

// etagSuffix names the sidecar file that remembers a target's ETag.
const etagSuffix = ".etag"

const maxParallel = 2

// Sync downloads every target whose remote copy changed since the last
// sync. With force set, stored ETags are ignored. Results keep the order of
// targets.
func Sync(ctx context.Context, f *HTTPFetcher, targets []Target, force bool) ([]Result, error) {
	for _, t := range targets {
		if t.URL == "" || t.Path == "" {
			return nil, eris.Errorf("fetcher: target %q needs a url and a path", t.Name)
		}
	}
	results := make([]Result, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, t := range targets {
		g.Go(func() error {
			etag := ""
			if !force {
				etag = readETag(t.Path)
			}
			res, err := f.Fetch(gctx, t, etag)
			if err != nil {
				return eris.Wrapf(err, "fetcher: sync %s", t.Name)
			}
			results[i] = res
			zap.L().Info("source synced",
				zap.String("name", t.Name),
				zap.String("path", t.Path),
				zap.Bool("changed", res.Changed),
				zap.Int64("bytes", res.Bytes),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// readETag returns the stored ETag for path, or "" when path or its
// sidecar is missing.
func readETag(path string) string {
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	data, err := os.ReadFile(path + etagSuffix)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func writeETag(path, etag string) error {
	if etag == "" {
		return nil
	}
	if err := os.WriteFile(path+etagSuffix, []byte(etag+"\n"), 0o644); err != nil {
		return eris.Wrap(err, "fetcher: write etag")
	}
	return nil
}
