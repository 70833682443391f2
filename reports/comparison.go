package reports

import (
	"fmt"

	"equalprop/proposal"
	"equalprop/rfp"
	"equalprop/value"
)

// developerNote heads the comparison section; the block below it exists for
// auditing the model's association choices, not for the analyst.
const developerNote = "*******IGNORE ESTA PARTE DO RELATORIO (ela sera eventualmente consultada pelos desenvolvedores deste aplicativo para esclarecer duvidas sobre o comportamento da IA) "

// Comparison builds the per-product audit grid: for each demanded product,
// a block of labeled rows holding one value per proposal. Demand-side rows
// repeat the same value across proposal columns for visual alignment.
func Comparison(products []rfp.Product, proposals []proposal.Proposal) *Table {
	n := len(proposals)
	width := LeadColumns + BlockWidth*n
	t := NewTable("comparacao", FileComparison, width)

	t.AddRow(value.NewCell(developerNote))
	t.AddBlankRow()

	for idx, product := range products {
		demandedDesc := value.NewCell(value.TitleCase(product.Description()))
		demandedQty := product.Quantity.Value
		demandedUnit := product.Quantity.Unit

		offeredDesc := make([]value.Cell, n)
		reasoning := make([]value.Cell, n)
		similarity := make([]value.Cell, n)
		offeredQty := make([]value.Cell, n)
		unitPrice := make([]value.Cell, n)
		position := make([]value.Cell, n)
		for i, p := range proposals {
			pop := p.ByCode[product.Code]
			if pop == nil {
				continue // all cells stay empty for this proposal
			}
			offeredDesc[i] = value.NewCell(value.TitleCase(rfp.StripDescriptionPrefix(pop.Description.String())))
			reasoning[i] = pop.Reasoning
			similarity[i] = pop.Similarity
			offeredQty[i] = pop.Quantity
			unitPrice[i] = pop.UnitPrice
			position[i] = pop.Position
		}

		t.AddRow(value.NewCell(fmt.Sprintf("Produto %d", idx+1)))
		t.addLabeled("Descrição do produto demandado na requisição de compra", repeat(demandedDesc, n))
		t.addLabeled("Descrição do produto oferecido na proposta (que a IA associou a este produto demandado)", offeredDesc)
		t.addLabeled("Raciocinio usado pela IA para associar este produto demandado com este produto oferecido", reasoning)
		t.addLabeled("Semelhança entre o produto demandado e o produto oferecido", similarity)
		t.addLabeled("Quantidade demandada na requisicao de compra", repeat(demandedQty, n))
		t.addLabeled("Quantidade oferecida na proposta", offeredQty)
		t.addLabeled("Unidade da quantidade demandada na requisicao de compra", repeat(demandedUnit, n))
		// Offered unit is not tracked upstream; the row stays blank.
		t.addLabeled("Unidade da quantidade oferecida na proposta", make([]value.Cell, n))
		t.addLabeled("Preço unitario oferecido na proposta", unitPrice)
		t.addLabeled("Posição em que o produto aparece na proposta", position)
		t.AddBlankRow()
	}

	if len(products) == 0 {
		t.AddBlankRow()
	}
	return t
}

// addLabeled appends [label, spacer x4] followed by one 3-column block per
// proposal value.
func (t *Table) addLabeled(label string, values []value.Cell) {
	row := make([]value.Cell, LeadColumns)
	row[0] = value.NewCell(label)
	for _, v := range values {
		row = block(row, v)
	}
	t.AddRow(row...)
}

func repeat(c value.Cell, n int) []value.Cell {
	out := make([]value.Cell, n)
	for i := range out {
		out[i] = c
	}
	return out
}
