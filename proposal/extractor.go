// Package proposal parses the per-supplier payloads returned by the
// extraction model. Payloads arrive as JSON strings or already-decoded
// objects; ones that fail to parse or lack a proposal shape are dropped
// silently and never occupy a column slot in any report.
package proposal

import (
	"encoding/json"

	"equalprop/value"
)

// MaxProposals caps how many proposals enter the comparison.
const MaxProposals = 20

// Header is the supplier identification block, every field nullable.
type Header struct {
	Company        value.Cell
	Representative value.Cell
	Phone          value.Cell
	CellPhone      value.Cell
	Email          value.Cell
	TaxID          value.Cell
}

// Offered is one offered product (POP).
type Offered struct {
	DemandedCode string
	Quantity     value.Cell
	QuantityUnit value.Cell
	UnitPrice    value.Cell
	Similarity   value.Cell
	Description  value.Cell
	Position     value.Cell
	Reasoning    value.Cell
}

// Proposal is one successfully parsed supplier proposal.
type Proposal struct {
	ID       string
	Header   Header
	Products []Offered
	// ByCode keeps only the first offered product per demanded code;
	// later duplicates within the same proposal are ignored everywhere.
	ByCode     map[string]*Offered
	Conditions map[string]any
}

// Extract parses payloads in the order given by ids (the input mapping's
// iteration order), dropping empty, unparseable and mis-shaped values, and
// truncates to the first MaxProposals accepted. The result order is the
// input order; it is never sorted.
func Extract(ids []string, payloads map[string]any) []Proposal {
	proposals := make([]Proposal, 0, len(ids))
	for _, id := range ids {
		if len(proposals) >= MaxProposals {
			break
		}
		body, ok := accept(payloads[id])
		if !ok {
			continue
		}
		proposals = append(proposals, build(id, body))
	}
	return proposals
}

// accept decodes one payload down to the proposal object, or rejects it.
// Recognized shapes: {"proposta": {...}}, {"proposal": {...}}, or a bare
// object that itself looks like a proposal (has "pops" or "header").
func accept(raw any) (map[string]any, bool) {
	if raw == nil {
		return nil, false
	}
	if s, ok := raw.(string); ok {
		if s == "" {
			return nil, false
		}
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, false
		}
		raw = decoded
	}
	obj, ok := raw.(map[string]any)
	if !ok || len(obj) == 0 {
		return nil, false
	}
	for _, key := range []string{"proposta", "proposal"} {
		if inner, ok := obj[key].(map[string]any); ok {
			return inner, true
		}
		if _, present := obj[key]; present {
			// Wrapper key exists but carries the wrong shape: reject.
			return nil, false
		}
	}
	if _, ok := obj["pops"]; ok {
		return obj, true
	}
	if _, ok := obj["header"]; ok {
		return obj, true
	}
	return nil, false
}

func build(id string, body map[string]any) Proposal {
	p := Proposal{
		ID:     id,
		Header: extractHeader(body),
		ByCode: make(map[string]*Offered),
	}
	if conds, ok := body["condicoes_comerciais"].(map[string]any); ok {
		p.Conditions = conds
	}
	pops, _ := body["pops"].([]any)
	p.Products = make([]Offered, 0, len(pops))
	for idx, raw := range pops {
		pop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		offered := extractOffered(pop, idx+1)
		p.Products = append(p.Products, offered)
		if offered.DemandedCode != "" {
			if _, seen := p.ByCode[offered.DemandedCode]; !seen {
				p.ByCode[offered.DemandedCode] = &p.Products[len(p.Products)-1]
			}
		}
	}
	return p
}

// Synonym key lists union both generations of the upstream prompt schema;
// the extraction model has emitted all of them at one time or another.
var (
	companyKeys     = []string{"empresa", "fornecedor", "razao_social"}
	repKeys         = []string{"representante", "contato"}
	phoneKeys       = []string{"tel", "telefone", "fone"}
	cellKeys        = []string{"cel", "celular"}
	emailKeys       = []string{"email", "e-mail"}
	taxIDKeys       = []string{"cnpj"}
	codeKeys        = []string{"codigo_pdc", "codigo"}
	priceKeys       = []string{"preco_unitario", "valor_unitario", "preco", "preco_oferecido"}
	similarityKeys  = []string{"semelhanca", "grau_semelhanca", "similaridade"}
	descriptionKeys = []string{"descricao_produto_oferecido", "descricao_produto", "descricao", "produto_oferecido", "produto"}
	reasoningKeys   = []string{"reasoning", "raciocinio", "explicacao", "justificativa"}
	quantityKeys    = []string{"quantidade_oferecida", "quantidade"}
	positionKeys    = []string{"posicao", "num_ordem"}
)

func extractHeader(body map[string]any) Header {
	header, _ := body["header"].(map[string]any)
	return Header{
		Company:        first(header, companyKeys),
		Representative: first(header, repKeys),
		Phone:          first(header, phoneKeys),
		CellPhone:      first(header, cellKeys),
		Email:          first(header, emailKeys),
		TaxID:          first(header, taxIDKeys),
	}
}

func extractOffered(pop map[string]any, index int) Offered {
	o := Offered{
		DemandedCode: first(pop, codeKeys).String(),
		UnitPrice:    first(pop, priceKeys),
		Similarity:   first(pop, similarityKeys),
		Description:  first(pop, descriptionKeys),
		Reasoning:    first(pop, reasoningKeys),
		Position:     first(pop, positionKeys),
	}
	o.Quantity, o.QuantityUnit = extractQuantity(pop)
	if o.Position.IsEmpty() {
		o.Position = value.NewCell(value.FormatNumber(float64(index)))
	}
	return o
}

func extractQuantity(pop map[string]any) (value.Cell, value.Cell) {
	for _, key := range quantityKeys {
		raw, present := pop[key]
		if !present || raw == nil {
			continue
		}
		if m, ok := raw.(map[string]any); ok {
			return value.FromAny(m["valor"]), value.FromAny(m["unidade"])
		}
		return value.FromAny(raw), value.Empty
	}
	return value.Empty, value.Empty
}

// first returns the first non-empty synonym value as a cell.
func first(m map[string]any, keys []string) value.Cell {
	for _, key := range keys {
		raw, present := m[key]
		if !present || raw == nil {
			continue
		}
		if c := value.FromAny(raw); !c.IsEmpty() {
			return c
		}
	}
	return value.Empty
}
