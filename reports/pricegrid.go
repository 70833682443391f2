package reports

import (
	"strings"

	"equalprop/proposal"
	"equalprop/rfp"
	"equalprop/value"
)

// PriceGrid builds the side-by-side price comparison: one row per demanded
// product with a 3-column block per proposal (unit price, extended-price
// token, similarity), trailing minimum/winner columns and a Total row of
// running-sum tokens. Unit price and similarity go to the null marker when
// a proposal has no offered product for the code: "supplier silent on this
// product" is not the same as an absent column.
func PriceGrid(products []rfp.Product, proposals []proposal.Proposal) *Table {
	n := len(proposals)
	width := LeadColumns + BlockWidth*n + 5
	t := NewTable("valores_globais", FilePriceGrid, width)

	head := cells("Item", "ASTREIN", "Descrição", "qtd", "und")
	for range proposals {
		head = append(head, cells("R$ unit", "R$ total", "Semelhança")...)
	}
	head = append(head, cells("R$ unit", "R$ total", "", "R$ unit", "R$ total")...)
	t.AddRow(head...)

	for _, product := range products {
		desc := strings.ToLower(product.Description())
		row := []value.Cell{
			value.Empty,
			value.Empty,
			value.NewCell(desc),
			product.Quantity.DisplayValue(),
			product.Quantity.Unit,
		}
		for _, p := range proposals {
			pop := p.ByCode[product.Code]
			if pop == nil {
				row = append(row, value.Null, value.NewCell(TokenExtendedPrice), value.Null)
				continue
			}
			row = append(row, orNull(pop.UnitPrice), value.NewCell(TokenExtendedPrice), orNull(pop.Similarity))
		}
		row = append(row,
			value.NewCell(TokenRowMin),
			value.NewCell(TokenExtendedPrice),
			value.Empty, value.Empty, value.Empty,
		)
		t.AddRow(row...)
	}

	total := []value.Cell{value.Empty, value.Empty, value.NewCell("Total"), value.Empty, value.Empty}
	for range proposals {
		total = append(total, value.Empty, value.NewCell(TokenColumnSum), value.Empty)
	}
	total = append(total, value.Empty, value.NewCell(TokenColumnSum), value.Empty, value.Empty, value.Empty)
	t.AddRow(total...)
	return t
}
