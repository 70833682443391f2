// Command gen-testdata writes synthetic extraction payloads, useful for
// exercising equalize and the report layouts without a model key.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/brianvoe/gofakeit/v6"
)

var productPool = []string{
	"bomba centrífuga 5cv",
	"tubo pvc 100mm",
	"cabo flexível 2,5mm",
	"disjuntor bipolar 40a",
	"luminária led 36w",
	"chapa de aço 3mm",
	"válvula de esfera 1 polegada",
	"tinta acrílica branca 18l",
}

var unitPool = []string{"un", "m", "cx", "kg", "l"}

func main() {
	outDir := flag.String("out", "testdata", "output directory")
	products := flag.Int("products", 4, "number of demanded products")
	proposals := flag.Int("proposals", 3, "number of proposals")
	seed := flag.Int64("seed", 0, "random seed, 0 for random")
	flag.Parse()

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create %s: %v", *outDir, err)
	}

	codes := writeRFP(*outDir, *products)
	var proposalPaths []string
	for i := 1; i <= *proposals; i++ {
		proposalPaths = append(proposalPaths, writeProposal(*outDir, i, codes))
	}
	writeConditions(*outDir, *proposals)

	fmt.Println(filepath.Join(*outDir, "rfp.json"))
	for _, p := range proposalPaths {
		fmt.Println(p)
	}
	fmt.Println(filepath.Join(*outDir, "conditions.json"))
}

func writeRFP(dir string, n int) []string {
	var items []any
	var codes []string
	for i := 1; i <= n; i++ {
		code := fmt.Sprintf("PDC%d", i)
		codes = append(codes, code)
		items = append(items, map[string]any{
			"codigo": code,
			"especificacoes_tecnicas": map[string]any{
				"descrição": map[string]any{
					"valor":   gofakeit.RandomString(productPool),
					"unidade": nil,
				},
				"material": map[string]any{
					"valor":   gofakeit.RandomString([]string{"aço", "pvc", "cobre", "alumínio"}),
					"unidade": nil,
				},
			},
			"quantidade_demandada": map[string]any{
				"valor":   gofakeit.Number(1, 200),
				"unidade": gofakeit.RandomString(unitPool),
			},
		})
	}
	writeJSON(dir, "rfp.json", map[string]any{"rfp_json": items})
	return codes
}

func writeProposal(dir string, i int, codes []string) string {
	var pops []any
	for pos, code := range codes {
		// Some suppliers skip a product now and then.
		if gofakeit.Number(0, 9) == 0 {
			continue
		}
		pops = append(pops, map[string]any{
			"codigo_pdc":     code,
			"quantidade":     gofakeit.Number(1, 200),
			"preco_unitario": gofakeit.Price(10, 5000),
			"semelhanca":     fmt.Sprintf("%d%%", gofakeit.Number(40, 100)),
			"descricao":      gofakeit.RandomString(productPool),
			"num_ordem":      pos + 1,
			"reasoning":      gofakeit.Sentence(8),
		})
	}

	name := fmt.Sprintf("proposal_%d.json", i)
	writeJSON(dir, name, map[string]any{
		"proposta": map[string]any{
			"header": map[string]any{
				"empresa":       gofakeit.Company() + " Ltda",
				"representante": gofakeit.Name(),
				"telefone":      gofakeit.Phone(),
				"email":         gofakeit.Email(),
				"cnpj":          gofakeit.Numerify("##.###.###/0001-##"),
			},
			"pops": pops,
		},
	})
	return filepath.Join(dir, name)
}

func writeConditions(dir string, proposals int) {
	conditions := []string{"Prazo de entrega", "Condição de pagamento", "Validade da proposta", "Frete"}
	var entries []any
	for _, cond := range conditions {
		values := make([]any, proposals)
		for i := range values {
			switch gofakeit.Number(0, 5) {
			case 0:
				values[i] = nil
			default:
				values[i] = fmt.Sprintf("%d dias", gofakeit.Number(5, 90))
			}
		}
		entries = append(entries, map[string]any{
			"condicao": cond,
			"valores":  values,
		})
	}
	writeJSON(dir, "conditions.json", map[string]any{"condicoes_comerciais": entries})
}

func writeJSON(dir, name string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshal %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
}
