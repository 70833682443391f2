package registry

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// ScrapeProvider is the fallback board lookup: it parses the public
// company page of a registry mirror for the QSA listing. Slower and more
// fragile than BrasilAPI, only consulted when the API path fails.
type ScrapeProvider struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewScrapeProvider(baseURL string) *ScrapeProvider {
	if baseURL == "" {
		baseURL = "https://cnpj.biz"
	}
	return &ScrapeProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (p *ScrapeProvider) Name() string {
	return "scrape"
}

func (p *ScrapeProvider) Lookup(ctx context.Context, cnpj string) ([]string, error) {
	digits, ok := CNPJDigits(cnpj)
	if !ok {
		return nil, fmt.Errorf("invalid CNPJ %q", cnpj)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	url := fmt.Sprintf("%s/%s", p.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; equalprop/1.0)")

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

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var lines []string
	doc.Find("div.qsa li, table.qsa tr").Each(func(_ int, sel *goquery.Selection) {
		var fields []string
		cells := sel.Find("td")
		if cells.Length() > 0 {
			cells.Each(func(_ int, cell *goquery.Selection) {
				if text := strings.TrimSpace(cell.Text()); text != "" {
					fields = append(fields, text)
				}
			})
		} else if text := strings.TrimSpace(sel.Text()); text != "" {
			fields = append(fields, text)
		}
		if len(fields) > 0 {
			lines = append(lines, strings.Join(fields, ", "))
		}
	})
	return lines, nil
}
