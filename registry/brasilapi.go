package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var nonDigits = regexp.MustCompile(`\D`)

// CNPJDigits strips formatting from a CNPJ and returns the bare digits,
// or false when the result is not the expected 14 digits.
func CNPJDigits(cnpj string) (string, bool) {
	digits := nonDigits.ReplaceAllString(cnpj, "")
	return digits, len(digits) == 14
}

// BrasilAPIProvider resolves a company's partner board (QSA) through the
// public BrasilAPI CNPJ endpoint.
type BrasilAPIProvider struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewBrasilAPIProvider() *BrasilAPIProvider {
	return &BrasilAPIProvider{
		baseURL: "https://brasilapi.com.br",
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(150*time.Millisecond), 1),
	}
}

func (p *BrasilAPIProvider) Name() string {
	return "brasilapi"
}

type brasilAPIResponse struct {
	QSA []struct {
		NomeSocio         string `json:"nome_socio"`
		Nome              string `json:"nome"`
		QualificacaoSocio string `json:"qualificacao_socio"`
		Qual              string `json:"qual"`
	} `json:"qsa"`
}

// Lookup returns one line per board member, "name, qualification". A CNPJ
// without a published board yields an empty slice and no error.
func (p *BrasilAPIProvider) Lookup(ctx context.Context, cnpj string) ([]string, error) {
	digits, ok := CNPJDigits(cnpj)
	if !ok {
		return nil, fmt.Errorf("invalid CNPJ %q", cnpj)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	url := fmt.Sprintf("%s/api/cnpj/v1/%s", p.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var data brasilAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var lines []string
	for _, socio := range data.QSA {
		name := socio.NomeSocio
		if name == "" {
			name = socio.Nome
		}
		qual := socio.QualificacaoSocio
		if qual == "" {
			qual = socio.Qual
		}
		var fields []string
		if name != "" {
			fields = append(fields, name)
		}
		if qual != "" {
			fields = append(fields, qual)
		}
		if len(fields) > 0 {
			lines = append(lines, strings.Join(fields, ", "))
		}
	}
	return lines, nil
}
