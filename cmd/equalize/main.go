// Command equalize generates the comparison reports from already-extracted
// JSON payloads, without calling the model. Useful for reruns and for
// inspecting how a payload lands in the reports.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"equalprop/pipeline"
	"equalprop/proposal"
	"equalprop/registry"
)

func main() {
	rfpPath := flag.String("rfp", "", "path to the extracted RFP JSON (required)")
	proposalList := flag.String("proposals", "", "comma-separated proposal JSON files, in column order (required)")
	conditionsPath := flag.String("conditions", "", "path to the standardized conditions JSON (optional)")
	outDir := flag.String("out", "out", "output directory")
	lookupBoards := flag.Bool("registry", false, "resolve partner boards via BrasilAPI")
	flag.Parse()

	if *rfpPath == "" || *proposalList == "" {
		flag.Usage()
		os.Exit(2)
	}

	rfpPayload, err := readJSON(*rfpPath)
	if err != nil {
		log.Fatalf("read RFP: %v", err)
	}

	var ids []string
	payloads := make(map[string]any)
	for _, path := range strings.Split(*proposalList, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read proposal %s: %v", path, err)
		}
		id := filepath.Base(path)
		ids = append(ids, id)
		payloads[id] = string(data)
	}

	var conditions any
	if *conditionsPath != "" {
		conditions, err = readJSON(*conditionsPath)
		if err != nil {
			log.Fatalf("read conditions: %v", err)
		}
	}

	var partners map[string][]string
	var shared map[string]any
	if *lookupBoards {
		partners, shared = resolveBoards(ids, payloads)
	}

	result, err := pipeline.Generate(*outDir, pipeline.Inputs{
		RFP:         rfpPayload,
		ProposalIDs: ids,
		Proposals:   payloads,
		Conditions:  conditions,
		Partners:    partners,
		Shared:      shared,
	})
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	fmt.Printf("proposals: %d, products: %d\n", result.Proposals, result.Products)
	for _, f := range result.ReportFiles {
		fmt.Println(f)
	}
	fmt.Println(result.CSVPath)
	fmt.Println(result.XLSXPath)
}

func readJSON(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func resolveBoards(ids []string, payloads map[string]any) (map[string][]string, map[string]any) {
	reg := registry.NewDefault()
	cnpjByID := make(map[string]string)
	for _, p := range proposal.Extract(ids, payloads) {
		if !p.Header.TaxID.IsEmpty() && !p.Header.TaxID.IsNull() {
			cnpjByID[p.ID] = p.Header.TaxID.String()
		}
	}
	partners := reg.LookupAll(context.Background(), ids, cnpjByID)
	return partners, registry.SharedPartners(partners)
}
