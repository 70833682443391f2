// Package pipeline drives a full equalization pass: normalize the
// extracted payloads, emit the six report CSVs and consolidate them.
package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"equalprop/consolidate"
	"equalprop/proposal"
	"equalprop/reports"
	"equalprop/rfp"
)

// Inputs are the decoded payloads one run works from.
type Inputs struct {
	// RFP is the demand payload in any of the accepted wrapper shapes.
	RFP any
	// ProposalIDs fixes the proposal order; Proposals maps id to its raw
	// payload (JSON string or decoded object).
	ProposalIDs []string
	Proposals   map[string]any
	// Conditions is the standardized commercial-conditions payload. Nil
	// means the conditions report is not produced.
	Conditions any
	// Partners maps proposal id to its board lines; Shared maps id to the
	// shared-member flag.
	Partners map[string][]string
	Shared   map[string]any
}

// Result lists what a run produced.
type Result struct {
	OutputDir   string   `json:"output_dir"`
	ReportFiles []string `json:"report_files"`
	CSVPath     string   `json:"csv_path"`
	XLSXPath    string   `json:"xlsx_path"`
	Proposals   int      `json:"proposals"`
	Products    int      `json:"products"`
}

// outputFiles is everything a run may leave behind in the output dir.
var outputFiles = []string{
	reports.FileHeader,
	reports.FileSuppliers,
	reports.FilePriceGrid,
	reports.FileConditions,
	reports.FilePartners,
	reports.FileComparison,
	consolidate.ConsolidatedCSV,
	consolidate.ConsolidatedXLSX,
}

// ClearOutputs removes previous run outputs from dir so a rerun never
// consolidates stale tables.
func ClearOutputs(dir string) {
	for _, name := range outputFiles {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("pipeline: failed to remove %s: %v", path, err)
		}
	}
}

// Generate produces the per-report CSVs from the inputs and consolidates
// them into the final CSV and workbook.
func Generate(dir string, in Inputs) (*Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	ClearOutputs(dir)

	products := rfp.Normalize(in.RFP)
	proposals := proposal.Extract(in.ProposalIDs, in.Proposals)
	ids := make([]string, len(proposals))
	for i, p := range proposals {
		ids[i] = p.ID
	}

	tables := []*reports.Table{
		reports.Header(in.RFP),
		reports.Suppliers(proposals),
		reports.PriceGrid(products, proposals),
	}
	if in.Conditions != nil {
		conds := reports.DecodeConditions(in.Conditions)
		tables = append(tables, reports.Conditions(conds, len(proposals)))
	}
	tables = append(tables,
		reports.Partners(ids, in.Partners, in.Shared),
		reports.Comparison(products, proposals),
	)

	result := &Result{
		OutputDir: dir,
		Proposals: len(proposals),
		Products:  len(products),
	}
	for _, t := range tables {
		path, err := consolidate.WriteTable(dir, t)
		if err != nil {
			return nil, err
		}
		result.ReportFiles = append(result.ReportFiles, path)
	}

	csvPath, xlsxPath, err := consolidate.Consolidate(dir)
	if err != nil {
		return nil, fmt.Errorf("consolidate: %w", err)
	}
	result.CSVPath = csvPath
	result.XLSXPath = xlsxPath
	return result, nil
}
