package consolidate

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"equalprop/reports"
	"equalprop/value"
)

const (
	ConsolidatedCSV  = "relatorio_consolidado.csv"
	ConsolidatedXLSX = "relatorio_consolidado.xlsx"
)

// Section marks where one report table landed inside the consolidated grid.
// Start and End are row indexes, End exclusive.
type Section struct {
	Name  string
	Start int
	End   int
}

// sectionOrder is the fixed concatenation order of the per-report files.
var sectionOrder = []struct {
	name string
	file string
}{
	{"cabecalho", reports.FileHeader},
	{"fornecedores", reports.FileSuppliers},
	{"valores_globais", reports.FilePriceGrid},
	{"condicomer", reports.FileConditions},
	{"socios", reports.FilePartners},
	{"comparacao", reports.FileComparison},
}

// Build reads the six per-report CSV files from dir and concatenates them
// into a single grid: one blank row before everything, exactly one blank
// row between consecutive tables. A missing file is logged and skipped,
// the remaining sections close the gap.
func Build(dir string) ([][]value.Cell, []Section, error) {
	grid := [][]value.Cell{{}}
	var sections []Section

	for _, entry := range sectionOrder {
		path := filepath.Join(dir, entry.file)
		rows, err := ReadCSVCells(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.Printf("consolidate: report %s not found, skipping", entry.file)
				continue
			}
			return nil, nil, fmt.Errorf("read %s: %w", entry.file, err)
		}

		if len(sections) > 0 {
			grid = append(grid, []value.Cell{})
		}
		start := len(grid)
		grid = append(grid, rows...)
		sections = append(sections, Section{Name: entry.name, Start: start, End: len(grid)})
	}

	return grid, sections, nil
}

// Consolidate runs the whole pass over dir: assemble the grid, resolve
// formula tokens in place, then write the consolidated CSV and the styled
// workbook next to the inputs. Returns the two output paths.
func Consolidate(dir string) (csvPath, xlsxPath string, err error) {
	grid, sections, err := Build(dir)
	if err != nil {
		return "", "", err
	}
	ResolveFormulas(grid)

	csvPath = filepath.Join(dir, ConsolidatedCSV)
	if err := WriteCSV(csvPath, stringGrid(grid)); err != nil {
		return "", "", err
	}

	xlsxPath, err = WriteWorkbook(filepath.Join(dir, ConsolidatedXLSX), grid, sections)
	if err != nil {
		return "", "", err
	}
	return csvPath, xlsxPath, nil
}

func stringGrid(grid [][]value.Cell) [][]string {
	out := make([][]string, len(grid))
	for i, row := range grid {
		line := make([]string, len(row))
		for j, cell := range row {
			line[j] = cell.String()
		}
		out[i] = line
	}
	return out
}
