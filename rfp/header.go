package rfp

import "equalprop/value"

// HeaderField names one line of the request-header report.
type HeaderField struct {
	Label      string
	Candidates []string
	TitleCased bool
}

// HeaderFields is the fixed request-header layout, in report row order.
// Date fields pass through verbatim; the rest are title-cased.
var HeaderFields = []HeaderField{
	{Label: "Obra", Candidates: []string{"Obra"}, TitleCased: true},
	{Label: "Solicitante", Candidates: []string{"Solicitante"}, TitleCased: true},
	{Label: "Data da requisição", Candidates: []string{"Data da Requisição", "Data da Requisicao"}},
	{Label: "Data de necessidade", Candidates: []string{"Data da Necessidade", "Data de Necessidade"}},
	{Label: "Comprador", Candidates: []string{"Comprador"}, TitleCased: true},
}

// Header extracts the request's header object, tolerating the same
// wrapper-key variance as Normalize. Absent headers yield an empty map.
func Header(raw any) map[string]any {
	obj, ok := unwrap(raw).(map[string]any)
	if !ok {
		return nil
	}
	if header, ok := obj["header"].(map[string]any); ok {
		return header
	}
	return nil
}

// Lookup finds a header value by candidate names, matching keys
// case/accent/stem-insensitively. Returns the empty cell when no candidate
// matches or the stored value is nil.
func Lookup(header map[string]any, candidates ...string) value.Cell {
	if len(header) == 0 {
		return value.Empty
	}
	folded := make(map[string]string, len(header))
	for key := range header {
		folded[value.FoldKey(key)] = key
	}
	for _, cand := range candidates {
		if key, ok := folded[value.FoldKey(cand)]; ok {
			return value.FromAny(header[key])
		}
	}
	return value.Empty
}
