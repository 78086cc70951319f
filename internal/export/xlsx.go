package export

import (
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/detroit-open-data/ccw-yoy/internal/display"
	"github.com/detroit-open-data/ccw-yoy/internal/study"
	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

// Sheet names of the workbook.
const (
	SummarySheet = "Summary"
	TrendSheet   = "Trend"
)

var summaryHeader = []any{"name", "pre", "post", "value", "label", "fill", "in_layer"}

// WriteXLSX writes a Summary sheet whose value cells are filled with each
// area's map colour and, when trend points are given, a Trend sheet.
func WriteXLSX(path string, r *study.Report, trend []yoy.TrendPoint) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return eris.Wrap(err, "export: rename sheet")
	}
	if err := writeSummarySheet(f, r); err != nil {
		return err
	}
	if len(trend) > 0 {
		if err := writeTrendSheet(f, trend); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, r *study.Report) error {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return eris.Wrap(err, "export: header style")
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "G1", header); err != nil {
		return eris.Wrap(err, "export: style header")
	}

	// One style per distinct fill/label colour pair.
	styles := map[[2]string]int{}
	for i, row := range areaRows(r) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return eris.Wrap(err, "export: cell name")
		}
		values := []any{row.Name, row.Pre, row.Post, row.Value, row.Label, row.Fill, row.InLayer}
		if a := r.Areas[i]; a.HasValue {
			values[3] = a.Value
		}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return eris.Wrapf(err, "export: write row %d", i+2)
		}

		key := [2]string{row.Fill, display.Hex(r.Areas[i].LabelColor)}
		style, ok := styles[key]
		if !ok {
			style, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{key[0]}},
				Font: &excelize.Font{Color: key[1]},
			})
			if err != nil {
				return eris.Wrap(err, "export: fill style")
			}
			styles[key] = style
		}
		valueCell, err := excelize.CoordinatesToCellName(4, i+2)
		if err != nil {
			return eris.Wrap(err, "export: cell name")
		}
		if err := f.SetCellStyle(SummarySheet, valueCell, valueCell, style); err != nil {
			return eris.Wrapf(err, "export: style row %d", i+2)
		}
	}

	return eris.Wrap(f.SetColWidth(SummarySheet, "A", "A", 24), "export: column width")
}

func writeTrendSheet(f *excelize.File, points []yoy.TrendPoint) error {
	if _, err := f.NewSheet(TrendSheet); err != nil {
		return eris.Wrap(err, "export: add trend sheet")
	}
	header := []any{"period", "pre", "post", "pandemic"}
	if err := f.SetSheetRow(TrendSheet, "A1", &header); err != nil {
		return eris.Wrap(err, "export: write trend header")
	}
	for i, p := range points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return eris.Wrap(err, "export: cell name")
		}
		row := []any{p.Period, p.Pre, p.Post, p.Pandemic}
		if err := f.SetSheetRow(TrendSheet, cell, &row); err != nil {
			return eris.Wrapf(err, "export: write trend row %d", i+2)
		}
	}
	return nil
}
