package source

import (
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rotisserie/eris"

	"github.com/detroit-open-data/ccw-yoy/internal/incident"
)

// ReadCSV reads a CSV export with a header row. Every column is read as text.
func ReadCSV(path string) ([]incident.Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	df := dataframe.ReadCSV(f,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
		dataframe.WithLazyQuotes(true),
	)
	if df.Err != nil {
		return nil, eris.Wrapf(df.Err, "source: parse %s", path)
	}

	records := df.Records()
	if len(records) == 0 {
		return nil, nil
	}
	return fromTable(records[0], records[1:])
}
