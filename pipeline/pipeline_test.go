package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equalprop/ai"
	"equalprop/consolidate"
	"equalprop/reports"
)

const rfpPayload = `{"rfp_json":[
	{"codigo":"PDC1",
	 "especificacoes_tecnicas":{"material":{"valor":"aço"}},
	 "quantidade_demandada":{"valor":2,"unidade":"un"}}
]}`

const proposalPayload = `{"proposta":{
	"header":{"empresa":"fornecedor ltda","cnpj":"64.919.541/0001-09","email":"Vendas@F.com"},
	"pops":[{"codigo_pdc":"PDC1","quantidade":2,"preco_unitario":30,
		"semelhanca":"95%","descricao":"produto alfa","num_ordem":1,
		"reasoning":"match"}]}}`

const conditionsPayload = `{"condicoes_comerciais":[
	{"condicao":"Prazo de entrega","valores":["30 dias"]}
]}`

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestGenerateProducesAllReports(t *testing.T) {
	dir := t.TempDir()

	result, err := Generate(dir, Inputs{
		RFP:         decode(t, rfpPayload),
		ProposalIDs: []string{"p1"},
		Proposals:   map[string]any{"p1": proposalPayload},
		Conditions:  decode(t, conditionsPayload),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Proposals)
	assert.Equal(t, 1, result.Products)
	assert.Len(t, result.ReportFiles, 6)
	for _, name := range []string{
		reports.FileHeader, reports.FileSuppliers, reports.FilePriceGrid,
		reports.FileConditions, reports.FilePartners, reports.FileComparison,
		consolidate.ConsolidatedCSV, consolidate.ConsolidatedXLSX,
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	data, err := os.ReadFile(result.CSVPath)
	require.NoError(t, err)
	content := string(data)
	assert.NotContains(t, strings.ToLower(content), "excel formula")
	// 30 * 2 extended price made it through resolution.
	assert.Contains(t, content, "60")
}

func TestGenerateWithoutConditionsSkipsFile(t *testing.T) {
	dir := t.TempDir()

	result, err := Generate(dir, Inputs{
		RFP:         decode(t, rfpPayload),
		ProposalIDs: []string{"p1"},
		Proposals:   map[string]any{"p1": proposalPayload},
	})
	require.NoError(t, err)

	assert.Len(t, result.ReportFiles, 5)
	assert.NoFileExists(t, filepath.Join(dir, reports.FileConditions))
	assert.FileExists(t, filepath.Join(dir, consolidate.ConsolidatedCSV))
}

func TestGenerateClearsStaleOutputs(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, reports.FileConditions)
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := Generate(dir, Inputs{
		RFP:         decode(t, rfpPayload),
		ProposalIDs: []string{"p1"},
		Proposals:   map[string]any{"p1": proposalPayload},
	})
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}

type routingGenerator struct {
	calls map[string]int
}

func (g *routingGenerator) Generate(_ context.Context, prompt string, _ []string, _ []ai.Document) (string, error) {
	if g.calls == nil {
		g.calls = map[string]int{}
	}
	switch {
	case strings.Contains(prompt, "Produto Demandado"):
		g.calls["demand"]++
		return rfpPayload, nil
	case strings.Contains(prompt, "Produtos Oferecidos"):
		g.calls["proposal"]++
		return proposalPayload, nil
	default:
		g.calls["conditions"]++
		return conditionsPayload, nil
	}
}

type mapCache struct {
	entries map[string]string
}

func (c *mapCache) GetCached(hash string) (string, bool, error) {
	v, ok := c.entries[hash]
	return v, ok, nil
}

func (c *mapCache) PutCached(hash, _, payload string) error {
	if c.entries == nil {
		c.entries = map[string]string{}
	}
	c.entries[hash] = payload
	return nil
}

func TestRunnerExtractsAndGenerates(t *testing.T) {
	gen := &routingGenerator{}
	cache := &mapCache{}
	r := NewRunner(ai.NewExtractor(gen), cache, nil)

	dir := t.TempDir()
	result, err := r.Run(context.Background(), dir,
		ai.Document{Name: "rfp.pdf", Data: []byte("rfp bytes")},
		[]ai.Document{{Name: "p1.pdf", Data: []byte("p1 bytes")}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Proposals)
	assert.FileExists(t, filepath.Join(dir, consolidate.ConsolidatedXLSX))
	assert.Equal(t, 1, gen.calls["demand"])
	assert.Equal(t, 1, gen.calls["proposal"])
	assert.Equal(t, 1, gen.calls["conditions"])

	// Second run is served from the cache for both documents.
	_, err = r.Run(context.Background(), t.TempDir(),
		ai.Document{Name: "rfp.pdf", Data: []byte("rfp bytes")},
		[]ai.Document{{Name: "p1.pdf", Data: []byte("p1 bytes")}})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls["demand"])
	assert.Equal(t, 1, gen.calls["proposal"])
	assert.Equal(t, 2, gen.calls["conditions"])
}
