package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"equalprop/ai"
	"equalprop/proposal"
	"equalprop/registry"
	"equalprop/store"
)

// Cache is the extraction cache surface the runner uses. Satisfied by
// store.Store; nil disables caching.
type Cache interface {
	GetCached(hash string) (string, bool, error)
	PutCached(hash, kind, payload string) error
}

// Runner performs the document-to-report pass: model extraction with
// caching, partner board lookups, then report generation.
type Runner struct {
	extractor *ai.Extractor
	cache     Cache
	registry  *registry.Registry
}

func NewRunner(extractor *ai.Extractor, cache Cache, reg *registry.Registry) *Runner {
	return &Runner{extractor: extractor, cache: cache, registry: reg}
}

// Run extracts the RFP and each proposal document, standardizes the
// commercial conditions, resolves partner boards and generates the
// reports into dir. Proposal order follows the docs slice.
func (r *Runner) Run(ctx context.Context, dir string, rfpDoc ai.Document, proposalDocs []ai.Document) (*Result, error) {
	rfpJSON, err := r.cached("demand", rfpDoc, func() (string, error) {
		return r.extractor.ExtractDemand(ctx, rfpDoc)
	})
	if err != nil {
		return nil, err
	}
	var rfpPayload any
	if err := json.Unmarshal([]byte(rfpJSON), &rfpPayload); err != nil {
		return nil, fmt.Errorf("decode RFP payload: %w", err)
	}

	ids := make([]string, 0, len(proposalDocs))
	payloads := make(map[string]any, len(proposalDocs))
	var rawPayloads []string
	for _, doc := range proposalDocs {
		raw, err := r.cached("proposal", doc, func() (string, error) {
			return r.extractor.ExtractProposal(ctx, rfpJSON, doc)
		})
		if err != nil {
			// A failed proposal keeps its slot out of every report but
			// does not abort the run.
			log.Printf("pipeline: proposal %s failed: %v", doc.Name, err)
			continue
		}
		ids = append(ids, doc.Name)
		payloads[doc.Name] = raw
		rawPayloads = append(rawPayloads, raw)
	}

	var conditions any
	if len(rawPayloads) > 0 {
		condJSON, err := r.extractor.StandardizeConditions(ctx, rawPayloads)
		if err != nil {
			log.Printf("pipeline: conditions standardization failed: %v", err)
		} else if err := json.Unmarshal([]byte(condJSON), &conditions); err != nil {
			log.Printf("pipeline: decode conditions payload: %v", err)
			conditions = nil
		}
	}

	partners, shared := r.lookupPartners(ctx, ids, payloads)

	return Generate(dir, Inputs{
		RFP:         rfpPayload,
		ProposalIDs: ids,
		Proposals:   payloads,
		Conditions:  conditions,
		Partners:    partners,
		Shared:      shared,
	})
}

func (r *Runner) lookupPartners(ctx context.Context, ids []string, payloads map[string]any) (map[string][]string, map[string]any) {
	if r.registry == nil {
		return nil, nil
	}
	cnpjByID := make(map[string]string)
	for _, p := range proposal.Extract(ids, payloads) {
		if !p.Header.TaxID.IsEmpty() && !p.Header.TaxID.IsNull() {
			cnpjByID[p.ID] = p.Header.TaxID.String()
		}
	}
	partners := r.registry.LookupAll(ctx, ids, cnpjByID)
	return partners, registry.SharedPartners(partners)
}

func (r *Runner) cached(kind string, doc ai.Document, extract func() (string, error)) (string, error) {
	if r.cache == nil {
		return extract()
	}
	hash := store.PayloadHash(kind, doc.Data)
	if payload, ok, err := r.cache.GetCached(hash); err == nil && ok {
		log.Printf("pipeline: cache hit for %s %s", kind, doc.Name)
		return payload, nil
	} else if err != nil {
		log.Printf("pipeline: cache read failed for %s: %v", doc.Name, err)
	}

	payload, err := extract()
	if err != nil {
		return "", err
	}
	if err := r.cache.PutCached(hash, kind, payload); err != nil {
		log.Printf("pipeline: cache write failed for %s: %v", doc.Name, err)
	}
	return payload, nil
}
