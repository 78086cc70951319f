package export

import (
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/rotisserie/eris"

	"github.com/detroit-open-data/ccw-yoy/internal/study"
	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

// areaRow is the tabular form of a study.AreaSummary.
type areaRow struct {
	Name    string `dataframe:"name"`
	Pre     int    `dataframe:"pre"`
	Post    int    `dataframe:"post"`
	Value   string `dataframe:"value"`
	Label   string `dataframe:"label"`
	Fill    string `dataframe:"fill"`
	InLayer bool   `dataframe:"in_layer"`
}

func areaRows(r *study.Report) []areaRow {
	rows := make([]areaRow, 0, len(r.Areas))
	for _, a := range r.Areas {
		rows = append(rows, areaRow{
			Name:    a.Name,
			Pre:     a.Pre,
			Post:    a.Post,
			Value:   formatValue(a),
			Label:   a.Label,
			Fill:    a.Fill,
			InLayer: a.InLayer,
		})
	}
	return rows
}

func formatValue(a study.AreaSummary) string {
	if !a.HasValue {
		return ""
	}
	return strconv.FormatFloat(a.Value, 'f', -1, 64)
}

// SummaryFrame returns the report's areas as a dataframe sorted by name.
func SummaryFrame(r *study.Report) dataframe.DataFrame {
	if len(r.Areas) == 0 {
		return dataframe.DataFrame{Err: eris.New("export: report has no areas")}
	}
	return dataframe.LoadStructs(areaRows(r), dataframe.NaNValues(nil)).
		Arrange(dataframe.Sort("name"))
}

// WriteSummaryCSV writes one row per area.
func WriteSummaryCSV(path string, r *study.Report) error {
	return writeFrame(path, SummaryFrame(r))
}

// WriteTrendCSV writes one row per period.
func WriteTrendCSV(path string, points []yoy.TrendPoint) error {
	if len(points) == 0 {
		return eris.New("export: no trend points")
	}
	return writeFrame(path, dataframe.LoadStructs(points))
}

func writeFrame(path string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return eris.Wrapf(df.Err, "export: build %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := df.WriteCSV(f); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "export: write %s", path)
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}
