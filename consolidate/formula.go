package consolidate

import (
	"math"
	"strings"

	"equalprop/reports"
	"equalprop/value"
)

// quantityColumn is the demanded-quantity column of the price grid
// (column D), the right operand of every extended-price token.
const quantityColumn = 3

// ResolveFormulas replaces formula tokens in the grid with computed cells,
// in dependency order: row minimums read literal unit prices, extended
// prices read their left neighbor (a unit price or a resolved minimum),
// column sums read the resolved extended prices above them. Resolution is
// idempotent, a grid without tokens passes through unchanged.
func ResolveFormulas(grid [][]value.Cell) {
	resolve(grid, reports.TokenRowMin, rowMin)
	resolve(grid, reports.TokenExtendedPrice, extendedPrice)
	resolve(grid, reports.TokenColumnSum, columnSum)
}

func resolve(grid [][]value.Cell, token string, compute func(grid [][]value.Cell, r, c int) value.Cell) {
	want := foldToken(token)
	for r, row := range grid {
		for c, cell := range row {
			if foldToken(cell.String()) == want {
				grid[r][c] = compute(grid, r, c)
			}
		}
	}
}

// foldToken lowercases and strips all spaces, tokens match regardless of
// casing or internal spacing.
func foldToken(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
}

// extendedPrice multiplies the cell to the left (unit price) by the row's
// demanded quantity in column D. A null operand makes the product null,
// two empty operands stay empty, anything unparseable yields a blank cell.
func extendedPrice(grid [][]value.Cell, r, c int) value.Cell {
	price := cellAt(grid, r, c-1)
	qty := cellAt(grid, r, quantityColumn)

	if price.IsNull() || qty.IsNull() {
		return value.Null
	}
	if price.IsEmpty() && qty.IsEmpty() {
		return value.Empty
	}
	p, okP := price.Number()
	q, okQ := qty.Number()
	if !okP || !okQ {
		return value.Empty
	}
	return value.NewCell(value.FormatNumber(p * q))
}

// columnSum adds the numeric cells directly above in the same column,
// scanning upward until the nearest fully-blank row. A null cell anywhere
// in the scanned range poisons the sum; a range with nothing numeric
// resolves to an empty cell.
func columnSum(grid [][]value.Cell, r, c int) value.Cell {
	sum := 0.0
	found := false
	for i := r - 1; i >= 0; i-- {
		if blankRow(grid[i]) {
			break
		}
		cell := cellAt(grid, i, c)
		if cell.IsNull() {
			return value.Null
		}
		if cell.IsEmpty() {
			continue
		}
		if f, ok := cell.Number(); ok {
			sum += f
			found = true
		}
	}
	if !found {
		return value.Empty
	}
	return value.NewCell(value.FormatNumber(sum))
}

// rowMin takes the minimum over the unit-price cells of the same row, at
// stride 3 from column F up to (not including) the token's own column.
// Null and empty cells are skipped; with no usable price the cell stays
// empty.
func rowMin(grid [][]value.Cell, r, c int) value.Cell {
	best := math.Inf(1)
	found := false
	for col := reports.LeadColumns; col < c; col += reports.BlockWidth {
		cell := cellAt(grid, r, col)
		if cell.IsNull() || cell.IsEmpty() {
			continue
		}
		if f, ok := cell.Number(); ok && f < best {
			best = f
			found = true
		}
	}
	if !found {
		return value.Empty
	}
	return value.NewCell(value.FormatNumber(best))
}

func cellAt(grid [][]value.Cell, r, c int) value.Cell {
	if r < 0 || r >= len(grid) {
		return value.Empty
	}
	row := grid[r]
	if c < 0 || c >= len(row) {
		return value.Empty
	}
	return row[c]
}

func blankRow(row []value.Cell) bool {
	for _, cell := range row {
		if !cell.IsEmpty() {
			return false
		}
	}
	return true
}
