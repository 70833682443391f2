package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"

	// defaultTimeout bounds a single generateContent call. Extraction over
	// multi-page PDFs can legitimately take minutes.
	defaultTimeout = 180 * time.Second
)

// GeminiClient calls the Gemini generateContent REST API. Responses are
// requested as JSON with temperature zero so repeated extractions of the
// same document stay stable.
type GeminiClient struct {
	baseURL     string
	apiKey      string
	model       string
	httpClient  *http.Client
	retryConfig RetryConfig
	limiter     *rate.Limiter
}

// Document is a binary attachment sent alongside a prompt.
type Document struct {
	Name string
	MIME string
	Data []byte
}

// NewGeminiClient creates a client for the given API key. Model falls back
// to the default when empty, timeout to the default when non-positive.
func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxConnsPerHost:     5,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 5,
	}

	return &GeminiClient{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		retryConfig: DefaultRetryConfig(),
		// Free-tier friendly: at most one call every two seconds.
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMIMEType string  `json:"response_mime_type"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Generate sends the prompt plus optional documents and returns the raw
// model text. Retries on 429 and 5xx with exponential backoff.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, texts []string, docs []Document) (string, error) {
	parts := make([]part, 0, len(texts)+len(docs)+1)
	for _, t := range texts {
		parts = append(parts, part{Text: t})
	}
	for _, doc := range docs {
		mime := doc.MIME
		if mime == "" {
			mime = "application/pdf"
		}
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: mime,
			Data:     base64.StdEncoding.EncodeToString(doc.Data),
		}})
	}
	parts = append(parts, part{Text: prompt})

	reqBody := generateRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:      0,
			ResponseMIMEType: "application/json",
		},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var lastErr error
	delay := c.retryConfig.InitialDelay

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[Gemini] Retry attempt %d/%d after %v", attempt, c.retryConfig.MaxRetries, delay)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.retryConfig.BackoffMultiplier)
			if delay > c.retryConfig.MaxDelay {
				delay = c.retryConfig.MaxDelay
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			log.Printf("[Gemini] Request failed (attempt %d/%d): %v", attempt+1, c.retryConfig.MaxRetries+1, lastErr)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
			log.Printf("[Gemini] Status %d (attempt %d/%d), will retry", resp.StatusCode, attempt+1, c.retryConfig.MaxRetries+1)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
		}

		var response generateResponse
		if err := json.Unmarshal(body, &response); err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			continue
		}
		if response.Error != nil {
			return "", fmt.Errorf("API error %d: %s", response.Error.Code, response.Error.Message)
		}
		if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("no candidates in response")
		}

		var text strings.Builder
		for _, p := range response.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
		return StripFences(text.String()), nil
	}

	return "", fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// StripFences removes a markdown code fence wrapper the model sometimes
// adds despite instructions.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
