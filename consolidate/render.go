package consolidate

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"equalprop/reports"
	"equalprop/value"
)

const sheetName = "Consolidado"

type workbookStyles struct {
	title     int
	header    int
	label     int
	separator int
	numSmall  int
	numLarge  int
	blockEdge int
}

func newWorkbookStyles(f *excelize.File) (*workbookStyles, error) {
	s := &workbookStyles{}
	var err error

	s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D6E4F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, err
	}
	s.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, err
	}
	s.separator, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	s.numSmall, err = f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, err
	}
	s.numLarge, err = f.NewStyle(&excelize.Style{NumFmt: 1})
	if err != nil {
		return nil, err
	}
	s.blockEdge, err = f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "BFBFBF", Style: 1},
			{Type: "top", Color: "BFBFBF", Style: 1},
			{Type: "bottom", Color: "BFBFBF", Style: 1},
			{Type: "right", Color: "000000", Style: 5},
		},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// WriteWorkbook renders the resolved grid as a styled XLSX. If the target
// file cannot be written (open in Excel, typically) the workbook goes to a
// timestamp-suffixed sibling instead and a copy back is attempted.
func WriteWorkbook(path string, grid [][]value.Cell, sections []Section) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	styles, err := newWorkbookStyles(f)
	if err != nil {
		return "", fmt.Errorf("create styles: %w", err)
	}

	if err := fillCells(f, grid, sections, styles); err != nil {
		return "", err
	}
	for _, section := range sections {
		if err := styleSection(f, grid, section, styles); err != nil {
			return "", fmt.Errorf("style section %s: %w", section.Name, err)
		}
	}
	styleSeparators(f, grid, sections, styles)
	setDimensions(f, grid)

	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      reports.LeadColumns,
		TopLeftCell: "F1",
		ActivePane:  "topRight",
	})

	return saveWorkbook(f, path)
}

func fillCells(f *excelize.File, grid [][]value.Cell, sections []Section, styles *workbookStyles) error {
	// Only the price grid carries numeric cells; everywhere else digit
	// strings (CNPJ, phone numbers) must stay text.
	numericRows := make(map[int]bool)
	for _, section := range sections {
		if section.Name != "valores_globais" {
			continue
		}
		for r := section.Start + 1; r < section.End; r++ {
			numericRows[r] = true
		}
	}

	for r, row := range grid {
		for c, cell := range row {
			if cell.IsEmpty() {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if numericRows[r] && c >= quantityColumn {
				if n, ok := cell.Number(); ok {
					f.SetCellValue(sheetName, name, n)
					numStyle := styles.numSmall
					if n >= 100 || n <= -100 {
						numStyle = styles.numLarge
					}
					f.SetCellStyle(sheetName, name, name, numStyle)
					continue
				}
			}
			f.SetCellValue(sheetName, name, cell.String())
		}
	}
	return nil
}

func styleSection(f *excelize.File, grid [][]value.Cell, section Section, styles *workbookStyles) error {
	switch section.Name {
	case "cabecalho":
		for r := section.Start; r < section.End; r++ {
			styleRange(f, r, 0, 0, styles.label)
		}
	case "fornecedores", "valores_globais":
		if section.Start < section.End {
			styleRange(f, section.Start, 0, rowWidth(grid, section.Start)-1, styles.header)
		}
	case "condicomer", "socios":
		if section.Start < section.End {
			styleRange(f, section.Start, 0, rowWidth(grid, section.Start)-1, styles.title)
		}
	case "comparacao":
		for r := section.Start; r < section.End; r++ {
			row := grid[r]
			if len(row) > 0 && strings.HasPrefix(row[0].String(), "Produto ") {
				styleRange(f, r, 0, 0, styles.label)
			}
		}
	}

	if section.Name != "valores_globais" {
		mergeBlocks(f, grid, section, styles)
	}
	return nil
}

// mergeBlocks joins each value-plus-two-spacers proposal block into one
// wrapped cell with a heavy right border, so a supplier's column group
// reads as a unit. The price grid is excluded, its blocks carry three
// distinct values.
func mergeBlocks(f *excelize.File, grid [][]value.Cell, section Section, styles *workbookStyles) {
	for r := section.Start; r < section.End; r++ {
		row := grid[r]
		for c := reports.LeadColumns; c+reports.BlockWidth <= len(row); c += reports.BlockWidth {
			if row[c].IsEmpty() || !row[c+1].IsEmpty() || !row[c+2].IsEmpty() {
				continue
			}
			from, _ := excelize.CoordinatesToCellName(c+1, r+1)
			to, _ := excelize.CoordinatesToCellName(c+reports.BlockWidth, r+1)
			f.MergeCell(sheetName, from, to)
			f.SetCellStyle(sheetName, from, to, styles.blockEdge)
		}
	}
}

func styleSeparators(f *excelize.File, grid [][]value.Cell, sections []Section, styles *workbookStyles) {
	width := maxWidth(grid)
	if width == 0 {
		return
	}
	styleRange(f, 0, 0, width-1, styles.separator)
	for _, section := range sections[1:] {
		styleRange(f, section.Start-1, 0, width-1, styles.separator)
	}
}

func setDimensions(f *excelize.File, grid [][]value.Cell) {
	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 55)
	f.SetColWidth(sheetName, "D", "E", 8)
	if width := maxWidth(grid); width > reports.LeadColumns {
		last, _ := excelize.ColumnNumberToName(width)
		f.SetColWidth(sheetName, "F", last, 14)
	}

	for r, row := range grid {
		longest := 0
		for _, cell := range row {
			if l := len([]rune(cell.String())); l > longest {
				longest = l
			}
		}
		if longest > 60 {
			height := 15.0 * float64((longest+59)/60)
			if height > 60 {
				height = 60
			}
			f.SetRowHeight(sheetName, r+1, height)
		}
	}
}

func styleRange(f *excelize.File, row, fromCol, toCol, style int) {
	from, _ := excelize.CoordinatesToCellName(fromCol+1, row+1)
	to, _ := excelize.CoordinatesToCellName(toCol+1, row+1)
	f.SetCellStyle(sheetName, from, to, style)
}

func rowWidth(grid [][]value.Cell, r int) int {
	if r < 0 || r >= len(grid) {
		return 0
	}
	return len(grid[r])
}

func maxWidth(grid [][]value.Cell) int {
	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

func saveWorkbook(f *excelize.File, path string) (string, error) {
	if err := f.SaveAs(path); err == nil {
		return path, nil
	}
	alt := timestampedPath(path)
	log.Printf("consolidate: cannot write %s, falling back to %s", path, alt)
	if err := f.SaveAs(alt); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	if data, err := os.ReadFile(alt); err == nil {
		if err := os.WriteFile(path, data, 0o644); err == nil {
			return path, nil
		}
	}
	return alt, nil
}

func timestampedPath(path string) string {
	ext := ".xlsx"
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102_150405"), ext)
}
