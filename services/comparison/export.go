package comparison

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/EnmanuelReynoso23/el-pensum/utils/slug"
	"github.com/xuri/excelize/v2"
)

var ErrExportGenerateFail = errors.New("failed to generate comparison workbook")

const exportSheet = "Comparación"

var exportFills = map[Classification]string{
	ClassBetter:  "#C6EFCE",
	ClassWorse:   "#FFC7CE",
	ClassEqual:   "#FFEB9C",
	ClassNeutral: "#DDEBF7",
	ClassCredits: "#E4DFEC",
}

// Export renders view as an .xlsx workbook: a title row, a header row,
// one row per field and a final total cost row.
// Returns the workbook and a suggested file name.
func Export(view *View) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
	}

	w := &sheetWriter{f: f}
	w.colWidth("A", "A", 22)
	w.colWidth("B", "C", 30)

	headerStyle := w.style(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	styles := make(map[Classification]int, len(exportFills))
	for class, color := range exportFills {
		styles[class] = w.style(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
	}

	w.set("A1", view.ProgramName)
	w.merge("A1", "C1")
	w.paint("A1", "C1", headerStyle)

	w.set("A2", "Campo")
	w.set("B2", view.UniversityName1)
	w.set("C2", view.UniversityName2)
	w.paint("A2", "C2", headerStyle)

	row := 3
	for _, fr := range view.Fields {
		w.set(cell("A", row), fr.Label)
		w.set(cell("B", row), fr.Formatted1)
		w.set(cell("C", row), fr.Formatted2)
		if id, ok := styles[fr.Classification1]; ok {
			w.paint(cell("B", row), cell("B", row), id)
		}
		if id, ok := styles[fr.Classification2]; ok {
			w.paint(cell("C", row), cell("C", row), id)
		}
		row++
	}

	w.set(cell("A", row), "Costo Total")
	w.set(cell("B", row), view.TotalCost1)
	w.set(cell("C", row), view.TotalCost2)

	if w.err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrExportGenerateFail, w.err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
	}

	filename := fmt.Sprintf("comparacion_%s_%s_%s.xlsx",
		slug.Encode(view.UniversityName1),
		slug.Encode(view.UniversityName2),
		slug.Encode(view.ProgramName),
	)
	return buf, filename, nil
}

// sheetWriter writes to the comparison sheet and keeps the first error.
// Calls after a failure are no-ops.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) colWidth(from, to string, width float64) {
	if w.err == nil {
		w.err = w.f.SetColWidth(exportSheet, from, to, width)
	}
}

func (w *sheetWriter) style(s *excelize.Style) int {
	if w.err != nil {
		return 0
	}
	id, err := w.f.NewStyle(s)
	w.err = err
	return id
}

func (w *sheetWriter) set(axis string, value interface{}) {
	if w.err == nil {
		w.err = w.f.SetCellValue(exportSheet, axis, value)
	}
}

func (w *sheetWriter) merge(from, to string) {
	if w.err == nil {
		w.err = w.f.MergeCell(exportSheet, from, to)
	}
}

func (w *sheetWriter) paint(from, to string, styleID int) {
	if w.err == nil {
		w.err = w.f.SetCellStyle(exportSheet, from, to, styleID)
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
