package reports

import (
	"strings"

	"equalprop/value"
)

// Partners builds the ownership (QSA) report: a title row, a shared-partner
// flag row, then as many rows as the longest partner list among proposals.
// A proposal with no partners at all renders one null line, never zero rows.
// ids carries the proposal order (already capped); partner lists may be nil
// when the registry had nothing for that tax id.
func Partners(ids []string, partners map[string][]string, shared map[string]any) *Table {
	if len(ids) > 20 {
		ids = ids[:20]
	}
	n := len(ids)
	width := LeadColumns + BlockWidth*n
	t := NewTable("socios", FilePartners, width)

	t.AddRow(value.NewCell("Quadro de sócios e administradores"))

	flags := make([]value.Cell, LeadColumns)
	flags[0] = value.NewCell("Este CNPJ tem sócio em comum com outro CNPJ ?")
	for _, id := range ids {
		flags = block(flags, sharedFlag(shared[id]))
	}
	t.AddRow(flags...)

	lists := make([][]string, n)
	height := 0
	for i, id := range ids {
		lists[i] = normalizePartners(partners[id])
		if len(lists[i]) > height {
			height = len(lists[i])
		}
	}
	for rowIdx := 0; rowIdx < height; rowIdx++ {
		row := make([]value.Cell, LeadColumns)
		for _, list := range lists {
			v := value.Empty
			if rowIdx < len(list) {
				v = value.NewCell(list[rowIdx])
			}
			row = block(row, v)
		}
		t.AddRow(row...)
	}
	return t
}

// normalizePartners title-cases and drops blank entries; an empty result
// becomes a single null line.
func normalizePartners(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, value.TitleCase(item))
	}
	if len(out) == 0 {
		return []string{value.NullMarker}
	}
	return out
}

// sharedFlag renders the shared-partner indicator: booleans and recognized
// tokens map to Sim/Não, blank/null stay blank, anything else passes
// through title-cased.
func sharedFlag(raw any) value.Cell {
	if raw == nil {
		return value.Empty
	}
	if b, ok := raw.(bool); ok {
		if b {
			return value.NewCell("Sim")
		}
		return value.NewCell("Não")
	}
	text := strings.TrimSpace(value.Stringify(raw))
	if text == "" || value.IsNullMarker(text) {
		return value.Empty
	}
	switch strings.ToLower(value.StripAccents(text)) {
	case "sim", "true", "yes":
		return value.NewCell("Sim")
	case "nao", "false", "no":
		return value.NewCell("Não")
	}
	return value.NewCell(value.TitleCase(text))
}
