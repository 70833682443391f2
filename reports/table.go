// Package reports builds the six fixed-layout tables that the consolidator
// later stitches into one spreadsheet. Each generator is a pure function
// over the canonical records; layout widths are a contract the consolidator
// depends on (3-column block per proposal, 5 leading columns).
package reports

import "equalprop/value"

// Formula placeholder tokens. Generators plant these; the consolidator
// replaces them with computed literals during its second pass. The token
// texts are matched case/space-insensitively.
const (
	TokenExtendedPrice = "excel formula 1"
	TokenColumnSum     = "excel formula 2"
	TokenRowMin        = "excel formula 3"
)

// Fixed file names of the individual report tables.
const (
	FileHeader     = "relatorio_rfp_cabecalho.csv"
	FileSuppliers  = "relatorio_fornecedores.csv"
	FilePriceGrid  = "relatorio_valores_globais.csv"
	FileConditions = "relatorio_condicomer.csv"
	FilePartners   = "relatorio_socios.csv"
	FileComparison = "comparacao_produtos.csv"
)

// LeadColumns is the number of label/demand-side columns before the first
// proposal block in every wide report.
const LeadColumns = 5

// BlockWidth is the column width of one proposal block (value + 2 spacers).
const BlockWidth = 3

// Table is one report's cell matrix. Rows may be appended ragged; they are
// padded with empty cells to Width.
type Table struct {
	Name  string // section name, stable across the pipeline
	File  string // CSV file the table is written to
	Width int
	Rows  [][]value.Cell
}

// NewTable builds an empty table with a declared column count.
func NewTable(name, file string, width int) *Table {
	return &Table{Name: name, File: file, Width: width}
}

// AddRow appends a row, padding it to the table width.
func (t *Table) AddRow(cells ...value.Cell) {
	row := make([]value.Cell, t.Width)
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// AddBlankRow appends a fully empty row.
func (t *Table) AddBlankRow() {
	t.Rows = append(t.Rows, make([]value.Cell, t.Width))
}

// Strings renders the matrix in CSV form (null marker for null cells,
// empty string for empty cells).
func (t *Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		line := make([]string, len(row))
		for j, cell := range row {
			line[j] = cell.String()
		}
		out[i] = line
	}
	return out
}

// cells converts plain strings into literal cells for layout rows.
func cells(texts ...string) []value.Cell {
	out := make([]value.Cell, len(texts))
	for i, s := range texts {
		out[i] = value.NewCell(s)
	}
	return out
}

// orNull maps an empty cell to the null marker; reports that must
// distinguish "supplier silent" from "not applicable" use it.
func orNull(c value.Cell) value.Cell {
	if c.IsEmpty() {
		return value.Null
	}
	return c
}

// block appends one 3-column proposal block (value + 2 spacers) to a row.
func block(row []value.Cell, v value.Cell) []value.Cell {
	return append(row, v, value.Empty, value.Empty)
}
