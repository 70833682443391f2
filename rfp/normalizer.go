// Package rfp canonicalizes the purchase-request JSON produced by the
// extraction model. The payload shape is not guaranteed: content may sit
// under "rfp_json", "rfp json" or at the top level, list items may be
// objects or bare strings, and synonym keys vary between runs. Everything
// downstream operates on the canonical Product records built here.
package rfp

import (
	"regexp"
	"sort"
	"strings"

	"equalprop/value"
)

// Measure is a value with an optional unit, both nullable.
type Measure struct {
	Value value.Cell
	Unit  value.Cell
}

// DisplayValue renders the measure's value, redisplaying parsed numbers in
// comma-decimal form ("10,5" stays "10,5" even when the source said 10.5).
func (m Measure) DisplayValue() value.Cell {
	if f, ok := m.Value.Number(); ok {
		return value.NewCell(value.FormatQuantity(f))
	}
	return m.Value
}

// Spec is one named technical specification.
type Spec struct {
	Name  string
	Value value.Cell
	Unit  value.Cell
}

// Product is a canonical demanded product (PDC).
type Product struct {
	Code     string
	Desc     string // direct description when the payload carried one
	Specs    []Spec
	Quantity Measure
}

var descPrefixRe = regexp.MustCompile(`(?i)^\s*descri(?:ç|c)(?:ã|a)o(?:\s+do\s+produto)?\s*[:\-]?\s*`)

// StripDescriptionPrefix removes a leading "Descrição do produto:"-style
// label, tolerating accent and separator variations.
func StripDescriptionPrefix(s string) string {
	return strings.TrimSpace(descPrefixRe.ReplaceAllString(s, ""))
}

// Description renders the product's demand-side description: the direct
// description when present, otherwise the joined technical specs.
func (p Product) Description() string {
	if p.Desc != "" {
		return StripDescriptionPrefix(p.Desc)
	}
	parts := make([]string, 0, len(p.Specs))
	for _, spec := range p.Specs {
		v := spec.Value.String()
		if v == "" {
			continue
		}
		if u := spec.Unit.String(); u != "" && !value.IsNullMarker(u) {
			parts = append(parts, spec.Name+": "+v+" "+u)
		} else {
			parts = append(parts, spec.Name+": "+v)
		}
	}
	return StripDescriptionPrefix(strings.Join(parts, "; "))
}

// Normalize folds an arbitrary request payload into ordered Product
// records. It never fails: absent or mis-shaped content degrades to an
// empty slice, mis-shaped fields to empty defaults.
func Normalize(raw any) []Product {
	items := Entries(raw)
	products := make([]Product, 0, len(items))
	for idx, item := range items {
		products = append(products, normalizeItem(item, idx+1))
	}
	return products
}

// Entries locates the demanded-product list inside the payload without
// normalizing the items, preserving source order.
func Entries(raw any) []any {
	obj := unwrap(raw)
	switch t := obj.(type) {
	case map[string]any:
		for _, key := range []string{"produtos_demandados", "produtos demandados"} {
			if list, ok := t[key].([]any); ok {
				return list
			}
		}
		return nil
	case []any:
		return t
	default:
		return nil
	}
}

// unwrap peels the one level of wrapper-key variance the model produces.
func unwrap(raw any) any {
	obj, ok := raw.(map[string]any)
	if !ok {
		return raw
	}
	for _, key := range []string{"rfp_json", "rfp json"} {
		if inner, present := obj[key]; present {
			if inner == nil {
				return map[string]any{}
			}
			return inner
		}
	}
	return obj
}

var directDescKeys = []string{"descricao", "descricao_produto", "descricao_produto_demandado", "descricao_demandada"}

func normalizeItem(item any, position int) Product {
	m, ok := item.(map[string]any)
	if !ok {
		// Bare string entry: synthesize code and best-effort quantity.
		text := value.Stringify(item)
		p := Product{Code: synthCode(position), Desc: text}
		if qty, found := ExtractQuantity(text); found {
			p.Quantity = Measure{Value: value.NewCell(value.FormatQuantity(qty)), Unit: value.Null}
		} else {
			p.Quantity = Measure{Value: value.Null, Unit: value.Null}
		}
		return p
	}

	p := Product{Code: value.Stringify(m["codigo"])}
	if p.Code == "" {
		p.Code = synthCode(position)
	}
	for _, key := range directDescKeys {
		if v := value.Stringify(m[key]); v != "" {
			p.Desc = v
			break
		}
	}
	p.Specs = normalizeSpecs(firstMap(m, "especificacoes_tecnicas", "especificacoes tecnicas"))
	p.Quantity = normalizeMeasure(firstMap(m, "quantidade_demandada"))
	return p
}

func synthCode(position int) string {
	return "PDC" + value.FormatNumber(float64(position))
}

// firstMap returns the first key present as a mapping; non-map values
// degrade to an empty map rather than an error.
func firstMap(m map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if inner, ok := m[key].(map[string]any); ok {
			return inner
		}
	}
	return nil
}

func normalizeSpecs(specs map[string]any) []Spec {
	if len(specs) == 0 {
		return nil
	}
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	// JSON object order is not observable after decoding; sort for
	// deterministic report output.
	sort.Strings(names)
	out := make([]Spec, 0, len(names))
	for _, name := range names {
		raw := specs[name]
		if inner, ok := raw.(map[string]any); ok {
			out = append(out, Spec{
				Name:  name,
				Value: value.FromAny(inner["valor"]),
				Unit:  value.FromAny(inner["unidade"]),
			})
			continue
		}
		out = append(out, Spec{Name: name, Value: value.FromAny(raw)})
	}
	return out
}

func normalizeMeasure(m map[string]any) Measure {
	// An absent quantity object reads the same as an empty one.
	return Measure{
		Value: value.FromAny(m["valor"]),
		Unit:  value.FromAnyOrNull(m["unidade"]),
	}
}

var (
	keywordQtyRe = regexp.MustCompile(`(?i)(?:quantidade|qtd\s*[/\\]?\s*vol)\s*[:\s]\s*([\d]+(?:[.,]\d+)?)`)
	firstNumRe   = regexp.MustCompile(`[\d]+(?:[.,]\d+)?`)
)

// ExtractQuantity pulls a quantity-looking number out of free text: first a
// number following a quantity keyword, otherwise the first number found.
func ExtractQuantity(text string) (float64, bool) {
	if m := keywordQtyRe.FindStringSubmatch(text); m != nil {
		if f, ok := value.ParseNumber(m[1]); ok {
			return f, true
		}
	}
	if m := firstNumRe.FindString(text); m != "" {
		if f, ok := value.ParseNumber(m); ok {
			return f, true
		}
	}
	return 0, false
}
