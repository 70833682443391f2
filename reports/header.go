package reports

import (
	"equalprop/rfp"
	"equalprop/value"
)

// Header builds the request-header report: five fixed rows, one value
// column (column C; column B stays empty for the merge layout). Textual
// values are title-cased, dates pass through, missing values render as the
// null marker - never as an empty cell.
func Header(raw any) *Table {
	header := rfp.Header(raw)
	t := NewTable("cabecalho", FileHeader, 3)
	for _, field := range rfp.HeaderFields {
		v := rfp.Lookup(header, field.Candidates...)
		if field.TitleCased {
			v = value.NewCell(value.TitleCase(v.String()))
		}
		t.AddRow(value.NewCell(field.Label), value.Empty, orNull(v))
	}
	return t
}
