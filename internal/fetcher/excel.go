package fetcher

import (
	"bytes"
	"strings"

	"github.com/rotisserie/eris"
	xlsreader "github.com/shakinm/xlsReader/xls"
	"github.com/tealeg/xlsx/v2"
)

// Workbook is the minimal spreadsheet surface the index and lookup flows
// need: sheet names and all cells of one sheet as strings.
type Workbook interface {
	SheetNames() []string
	Rows(sheet int) ([][]string, error)
}

// OpenWorkbook parses spreadsheet bytes, choosing the engine from the
// file name's extension. Modern .xlsx is read with tealeg/xlsx, legacy
// binary .xls with xlsReader.
func OpenWorkbook(data []byte, name string) (Workbook, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(name), ".xlsx"):
		f, err := xlsx.OpenBinary(data)
		if err != nil {
			return nil, eris.Wrap(err, "excel: open xlsx")
		}
		return &xlsxWorkbook{file: f}, nil
	case strings.HasSuffix(strings.ToLower(name), ".xls"):
		wb, err := xlsreader.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, eris.Wrap(err, "excel: open xls")
		}
		return &xlsWorkbook{book: &wb}, nil
	default:
		return nil, eris.Errorf("excel: unsupported file extension in %q", name)
	}
}

type xlsxWorkbook struct {
	file *xlsx.File
}

func (w *xlsxWorkbook) SheetNames() []string {
	names := make([]string, len(w.file.Sheets))
	for i, s := range w.file.Sheets {
		names[i] = s.Name
	}
	return names
}

func (w *xlsxWorkbook) Rows(sheet int) ([][]string, error) {
	if sheet >= len(w.file.Sheets) {
		return nil, eris.Errorf("excel: sheet index %d out of range (file has %d sheets)", sheet, len(w.file.Sheets))
	}
	s := w.file.Sheets[sheet]
	rows := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

type xlsWorkbook struct {
	book *xlsreader.Workbook
}

func (w *xlsWorkbook) SheetNames() []string {
	sheets := w.book.GetSheets()
	names := make([]string, len(sheets))
	for i := range sheets {
		names[i] = sheets[i].GetName()
	}
	return names
}

func (w *xlsWorkbook) Rows(sheet int) ([][]string, error) {
	s, err := w.book.GetSheet(sheet)
	if err != nil {
		return nil, eris.Wrapf(err, "excel: sheet index %d", sheet)
	}
	src := s.GetRows()
	rows := make([][]string, 0, len(src))
	for _, row := range src {
		cols := row.GetCols()
		cells := make([]string, len(cols))
		for j, col := range cols {
			cells[j] = col.GetString()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
