package reports

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equalprop/proposal"
	"equalprop/rfp"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func fixtureProposals(t *testing.T, n int) []proposal.Proposal {
	t.Helper()
	ids := make([]string, 0, n)
	payloads := map[string]any{}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%d", i+1)
		ids = append(ids, id)
		payloads[id] = decode(t, fmt.Sprintf(`{"proposta":{
			"header":{"empresa":"fornecedor %d ltda","cnpj":"0000000000010%d","email":"Vendas@F%d.com"},
			"pops":[{"codigo_pdc":"PDC1","preco_unitario":%d,"quantidade":2,"semelhanca":"90%%","descricao":"produto alfa"}]
		}}`, i+1, i, i+1, 100+i))
	}
	return proposal.Extract(ids, payloads)
}

func TestHeaderReportLayout(t *testing.T) {
	table := Header(decode(t, `{"rfp_json":{"header":{"Obra":"ponte norte","Comprador":null}}}`))
	require.Len(t, table.Rows, 5)
	rows := table.Strings()
	assert.Equal(t, []string{"Obra", "", "Ponte Norte"}, rows[0])
	assert.Equal(t, []string{"Solicitante", "", "null"}, rows[1], "missing value renders as the null marker")
	assert.Equal(t, []string{"Comprador", "", "null"}, rows[4])
}

func TestSuppliersReportLayout(t *testing.T) {
	props := fixtureProposals(t, 2)
	table := Suppliers(props)
	rows := table.Strings()

	require.Equal(t, LeadColumns+2*BlockWidth+4, table.Width)
	assert.Equal(t, "Fornecedor 1", rows[0][5])
	assert.Equal(t, "Fornecedor 2", rows[0][8])
	assert.Equal(t, "Envoltório dos mínimos", rows[0][11])
	assert.Equal(t, "Fornecedor vencedor", rows[0][14])

	assert.Equal(t, "Empresa", rows[1][0])
	assert.Equal(t, "Fornecedor 1 Ltda", rows[1][5], "company title-cased")
	assert.Equal(t, "vendas@f1.com", rows[5][5], "email always lower-cased")
	assert.Equal(t, "null", rows[3][5], "absent field renders as null marker")
}

func TestPriceGridLayout(t *testing.T) {
	products := rfp.Normalize(decode(t, `{"produtos_demandados":[
		{"codigo":"PDC1","quantidade_demandada":{"valor":"10,5","unidade":"cx"},
		 "especificacoes_tecnicas":{"material":{"valor":"aço"}}},
		{"codigo":"PDC2","quantidade_demandada":{"valor":3,"unidade":"un"}}
	]}`))
	props := fixtureProposals(t, 2)
	table := PriceGrid(products, props)
	rows := table.Strings()

	require.Equal(t, LeadColumns+2*BlockWidth+5, table.Width)
	require.Len(t, rows, 4) // header + 2 products + total

	assert.Equal(t, []string{"Item", "ASTREIN", "Descrição", "qtd", "und"}, rows[0][:5])
	assert.Equal(t, "R$ unit", rows[0][5])
	assert.Equal(t, "Semelhança", rows[0][7])

	// PDC1 row: quantity redisplayed comma-decimal, offered block filled.
	assert.Equal(t, "material: aço", rows[1][2])
	assert.Equal(t, "10,5", rows[1][3])
	assert.Equal(t, "cx", rows[1][4])
	assert.Equal(t, "100", rows[1][5])
	assert.Equal(t, TokenExtendedPrice, rows[1][6])
	assert.Equal(t, "90%", rows[1][7])
	assert.Equal(t, TokenRowMin, rows[1][11])

	// PDC2: both proposals silent -> null markers, not blanks.
	assert.Equal(t, "null", rows[2][5])
	assert.Equal(t, "null", rows[2][7])

	// Total row.
	assert.Equal(t, "Total", rows[3][2])
	assert.Equal(t, TokenColumnSum, rows[3][6])
	assert.Equal(t, TokenColumnSum, rows[3][12])
}

func TestPriceGridBlockCountMatchesProposals(t *testing.T) {
	products := rfp.Normalize(decode(t, `{"produtos_demandados":[{"codigo":"PDC1"}]}`))
	for _, n := range []int{0, 1, 5} {
		table := PriceGrid(products, fixtureProposals(t, n))
		assert.Equal(t, LeadColumns+n*BlockWidth+5, table.Width, "n=%d", n)
	}
}

func TestComparisonLayout(t *testing.T) {
	products := rfp.Normalize(decode(t, `{"produtos_demandados":[
		{"codigo":"PDC1","descricao":"Descrição do produto: bomba d'água"}
	]}`))
	props := fixtureProposals(t, 2)
	table := Comparison(products, props)
	rows := table.Strings()

	require.Equal(t, LeadColumns+2*BlockWidth, table.Width)
	assert.Contains(t, rows[0][0], "IGNORE ESTA PARTE")
	assert.Equal(t, "Produto 1", rows[2][0])

	demanded := rows[3]
	assert.Contains(t, demanded[0], "produto demandado")
	assert.Equal(t, demanded[5], demanded[8], "demand-side value repeated per proposal block")

	offered := rows[4]
	assert.Equal(t, "Produto Alfa", offered[5], "offered description title-cased")

	offeredUnit := rows[10]
	assert.Contains(t, offeredUnit[0], "Unidade da quantidade oferecida")
	assert.Equal(t, "", offeredUnit[5], "offered unit row always blank")

	// Block ends with a fully blank row.
	last := rows[len(rows)-1]
	for _, cell := range last {
		assert.Equal(t, "", cell)
	}
}

func TestConditionsReport(t *testing.T) {
	conds := DecodeConditions(decode(t, `{"condicoes_comerciais":[
		{"condicao":"Prazo de entrega","valores":["10 dias","15 dias"]},
		{"condicao":"Frete","valores":["CIF"]}
	]}`))
	require.Len(t, conds, 2)

	table := Conditions(conds, 2)
	rows := table.Strings()
	assert.Equal(t, "Condições comerciais", rows[0][0])
	assert.Equal(t, "Prazo de entrega", rows[1][0])
	assert.Equal(t, "10 dias", rows[1][5])
	assert.Equal(t, "15 dias", rows[1][8])
	assert.Equal(t, "Frete", rows[2][0])
	assert.Equal(t, "CIF", rows[2][5])
	assert.Equal(t, "null", rows[2][8], "proposal lacking a condition renders the null marker")
}

func TestPartnersReport(t *testing.T) {
	ids := []string{"a", "b", "c"}
	partners := map[string][]string{
		"a": {"maria silva, sócia-administradora", "joão santos, sócio"},
		"b": nil,
	}
	shared := map[string]any{"a": true, "b": "nao", "c": nil}

	table := Partners(ids, partners, shared)
	rows := table.Strings()

	assert.Equal(t, "Quadro de sócios e administradores", rows[0][0])
	assert.Equal(t, "Sim", rows[1][5])
	assert.Equal(t, "Não", rows[1][8])
	assert.Equal(t, "", rows[1][11])

	require.Len(t, rows, 4) // title + flag + 2 partner rows (longest list)
	assert.Equal(t, "Maria Silva, Sócia-Administradora", rows[2][5])
	assert.Equal(t, "null", rows[2][8], "empty partner list renders one null line")
	assert.Equal(t, "", rows[3][8], "shorter lists pad with blanks")
	assert.Equal(t, "João Santos, Sócio", rows[3][5])
}
