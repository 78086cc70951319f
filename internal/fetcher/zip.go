package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

var zipMagic = []byte("PK\x03\x04")

// ExtractZIP extracts every file of the archive into destDir and returns
// the extracted paths. Entries escaping destDir are rejected.
func ExtractZIP(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: open zip")
	}
	defer r.Close() //nolint:errcheck

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "fetcher: create %s", destDir)
	}

	var extracted []string
	for _, zf := range r.File {
		path, err := extractEntry(zf, destDir)
		if err != nil {
			return extracted, err
		}
		if path != "" {
			extracted = append(extracted, path)
		}
	}
	return extracted, nil
}

// replaceWithZIP extracts the archive into a staging directory next to
// dest and swaps it in once extraction succeeds. dest is left untouched on
// error.
func replaceWithZIP(zipPath, dest string) ([]string, error) {
	staging, err := os.MkdirTemp(filepath.Dir(dest), filepath.Base(dest)+".*.extract")
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create staging directory")
	}
	defer os.RemoveAll(staging) //nolint:errcheck

	files, err := ExtractZIP(zipPath, staging)
	if err != nil {
		return nil, err
	}

	if err := os.RemoveAll(dest); err != nil {
		return nil, eris.Wrapf(err, "fetcher: clear %s", dest)
	}
	if err := os.Rename(staging, dest); err != nil {
		return nil, eris.Wrapf(err, "fetcher: move extracted files to %s", dest)
	}

	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(staging, f)
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: relocate extracted file")
		}
		out = append(out, filepath.Join(dest, rel))
	}
	return out, nil
}

// extractEntry writes one entry and returns its path, or "" for directories.
func extractEntry(zf *zip.File, destDir string) (string, error) {
	dest := filepath.Join(destDir, zf.Name)
	if !strings.HasPrefix(filepath.Clean(dest), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("fetcher: illegal zip entry %q", zf.Name)
	}

	if zf.FileInfo().IsDir() {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return "", eris.Wrap(err, "fetcher: create zip directory")
		}
		return "", nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", eris.Wrap(err, "fetcher: create zip parent directory")
	}

	rc, err := zf.Open()
	if err != nil {
		return "", eris.Wrap(err, "fetcher: open zip entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(dest)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: create zip entry")
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return "", eris.Wrapf(err, "fetcher: extract %s", zf.Name)
	}
	if err := out.Close(); err != nil {
		return "", eris.Wrapf(err, "fetcher: extract %s", zf.Name)
	}
	return dest, nil
}
