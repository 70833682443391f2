package reports

import (
	"sort"

	"equalprop/value"
)

// Condition is one standardized commercial-condition line: a unified key
// and one value per proposal, in proposal order.
type Condition struct {
	Key    string
	Values []value.Cell
}

// DecodeConditions reads the standardization call's payload:
// {"condicoes_comerciais": [{"condicao": k, "valores": [...]}]}, tolerating
// a top-level list and a key->values map form. Mis-shaped entries are
// skipped, never an error; the upstream model output is not schema-bound.
func DecodeConditions(raw any) []Condition {
	list := conditionEntries(raw)
	out := make([]Condition, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		key := value.Stringify(firstPresent(m, "condicao", "condição", "nome", "key"))
		if key == "" {
			continue
		}
		cond := Condition{Key: key}
		if vals, ok := firstPresent(m, "valores", "values").([]any); ok {
			for _, v := range vals {
				cond.Values = append(cond.Values, value.FromAny(v))
			}
		}
		out = append(out, cond)
	}
	return out
}

func conditionEntries(raw any) []any {
	switch t := raw.(type) {
	case []any:
		return t
	case map[string]any:
		for _, key := range []string{"condicoes_comerciais", "condicoes comerciais", "condicoes"} {
			if inner, present := t[key]; present {
				return conditionList(inner)
			}
		}
		return nil
	default:
		return nil
	}
}

func conditionList(inner any) []any {
	switch t := inner.(type) {
	case []any:
		return t
	case map[string]any:
		// Map form: {key: [values...]}; synthesize entry objects in a
		// deterministic order, JSON object order being unobservable here.
		keys := make([]string, 0, len(t))
		for key := range t {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(keys))
		for _, key := range keys {
			out = append(out, map[string]any{"condicao": key, "valores": t[key]})
		}
		return out
	default:
		return nil
	}
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, present := m[key]; present && v != nil {
			return v
		}
	}
	return nil
}

// Conditions builds the commercial-conditions report: one row per
// standardized key, one 3-column block per proposal. Values missing for a
// proposal render as the null marker.
func Conditions(conds []Condition, proposalCount int) *Table {
	width := LeadColumns + BlockWidth*proposalCount
	t := NewTable("condicomer", FileConditions, width)
	t.AddRow(value.NewCell("Condições comerciais"))
	for _, cond := range conds {
		row := make([]value.Cell, LeadColumns)
		row[0] = value.NewCell(cond.Key)
		for i := 0; i < proposalCount; i++ {
			v := value.Null
			if i < len(cond.Values) {
				v = orNull(cond.Values[i])
			}
			row = block(row, v)
		}
		t.AddRow(row...)
	}
	return t
}
