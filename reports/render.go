package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// FileName is the download name of rep in the given extension.
func (rep *Report) FileName(ext string) string {
	return fmt.Sprintf("%s-%s.%s", rep.Type, rep.GeneratedAt.Format("20060102"), ext)
}

func cellText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// WriteCSV writes a header row followed by one line per report row.
func WriteCSV(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rep.Columns); err != nil {
		return goerr.Wrap(err, "write csv header")
	}
	record := make([]string, len(rep.Columns))
	for _, row := range rep.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = cellText(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return goerr.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "flush csv")
	}
	return nil
}

// sheetName trims the title to the 31 characters a worksheet name allows.
func sheetName(title string) string {
	if len(title) > 31 {
		return title[:31]
	}
	if title == "" {
		return "Report"
	}
	return title
}

// WriteXLSX writes a single-sheet workbook named after the report.
func WriteXLSX(w io.Writer, rep *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(rep.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return goerr.Wrap(err, "rename sheet")
	}

	for col, name := range rep.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return goerr.Wrap(err, "header cell", goerr.V("column", col))
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return goerr.Wrap(err, "set header", goerr.V("cell", cell))
		}
	}
	if len(rep.Columns) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return goerr.Wrap(err, "header style")
		}
		last, _ := excelize.CoordinatesToCellName(len(rep.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return goerr.Wrap(err, "apply header style")
		}
	}

	for r, row := range rep.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return goerr.Wrap(err, "row cell", goerr.V("row", r), goerr.V("column", c))
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return goerr.Wrap(err, "set cell", goerr.V("cell", cell))
			}
		}
	}

	if err := f.Write(w); err != nil {
		return goerr.Wrap(err, "write xlsx")
	}
	return nil
}
