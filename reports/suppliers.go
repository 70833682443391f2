package reports

import (
	"fmt"

	"equalprop/proposal"
	"equalprop/value"
)

// Suppliers builds the supplier identification grid: one named column
// block per present proposal, then one row per header field. Emails are
// always lower-cased, other textual fields title-cased; a proposal with no
// header yields the null marker for every field in its slot.
func Suppliers(proposals []proposal.Proposal) *Table {
	n := len(proposals)
	width := LeadColumns + BlockWidth*n + 4
	t := NewTable("fornecedores", FileSuppliers, width)

	head := make([]value.Cell, LeadColumns)
	for i := range proposals {
		head = block(head, value.NewCell(fmt.Sprintf("Fornecedor %d", i+1)))
	}
	head = append(head, cells("Envoltório dos mínimos", "", "", "Fornecedor vencedor")...)
	t.AddRow(head...)

	rows := []struct {
		label string
		pick  func(h proposal.Header) value.Cell
	}{
		{"Empresa", func(h proposal.Header) value.Cell { return titled(h.Company) }},
		{"CNPJ", func(h proposal.Header) value.Cell { return h.TaxID }},
		{"Tel", func(h proposal.Header) value.Cell { return h.Phone }},
		{"Cel", func(h proposal.Header) value.Cell { return h.CellPhone }},
		{"email", func(h proposal.Header) value.Cell { return lowered(h.Email) }},
		{"Contato", func(h proposal.Header) value.Cell { return titled(h.Representative) }},
	}
	for _, r := range rows {
		row := make([]value.Cell, LeadColumns)
		row[0] = value.NewCell(r.label)
		for _, p := range proposals {
			row = block(row, orNull(r.pick(p.Header)))
		}
		t.AddRow(row...)
	}
	return t
}

func titled(c value.Cell) value.Cell {
	if c.IsEmpty() || c.IsNull() {
		return c
	}
	return value.NewCell(value.TitleCase(c.String()))
}

func lowered(c value.Cell) value.Cell {
	if c.IsEmpty() || c.IsNull() {
		return c
	}
	return value.NewCell(value.LowerCase(c.String()))
}
