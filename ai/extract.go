package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

// Generator is the model call surface the extractor needs. Satisfied by
// GeminiClient; tests substitute a canned implementation.
type Generator interface {
	Generate(ctx context.Context, prompt string, texts []string, docs []Document) (string, error)
}

// Extractor runs the three extraction operations against a model.
type Extractor struct {
	client Generator
}

func NewExtractor(client Generator) *Extractor {
	return &Extractor{client: client}
}

// ExtractDemand pulls the demanded products out of an RFP document and
// returns the raw JSON payload.
func (e *Extractor) ExtractDemand(ctx context.Context, doc Document) (string, error) {
	reply, err := e.client.Generate(ctx, DemandPrompt, nil, []Document{doc})
	if err != nil {
		return "", fmt.Errorf("extract demand from %s: %w", doc.Name, err)
	}
	if !json.Valid([]byte(reply)) {
		return "", fmt.Errorf("extract demand from %s: model reply is not valid JSON", doc.Name)
	}
	return reply, nil
}

// ExtractProposal pulls supplier header and offered products out of one
// proposal document. The RFP JSON rides along so the model can associate
// offers with demanded codes.
func (e *Extractor) ExtractProposal(ctx context.Context, rfpJSON string, doc Document) (string, error) {
	reply, err := e.client.Generate(ctx, ProposalPrompt, []string{rfpJSON}, []Document{doc})
	if err != nil {
		return "", fmt.Errorf("extract proposal %s: %w", doc.Name, err)
	}
	if !json.Valid([]byte(reply)) {
		return "", fmt.Errorf("extract proposal %s: model reply is not valid JSON", doc.Name)
	}
	return reply, nil
}

// StandardizeConditions feeds the extracted proposal payloads back to the
// model and gets the commercial conditions under a shared key set, one
// value per proposal in input order.
func (e *Extractor) StandardizeConditions(ctx context.Context, proposalJSONs []string) (string, error) {
	reply, err := e.client.Generate(ctx, ConditionsPrompt, proposalJSONs, nil)
	if err != nil {
		return "", fmt.Errorf("standardize conditions: %w", err)
	}
	if !json.Valid([]byte(reply)) {
		return "", fmt.Errorf("standardize conditions: model reply is not valid JSON")
	}
	return reply, nil
}
