package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equalprop/ai"
	"equalprop/internal/config"
	"equalprop/pipeline"
	"equalprop/store"
)

const testRFPPayload = `{"rfp_json":[
	{"codigo":"PDC1",
	 "especificacoes_tecnicas":{"material":{"valor":"aço"}},
	 "quantidade_demandada":{"valor":2,"unidade":"un"}}
]}`

const testProposalPayload = `{"proposta":{
	"header":{"empresa":"fornecedor ltda","email":"v@f.com"},
	"pops":[{"codigo_pdc":"PDC1","quantidade":2,"preco_unitario":30,
		"semelhanca":"95%","descricao":"produto alfa","num_ordem":1}]}}`

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, prompt string, _ []string, _ []ai.Document) (string, error) {
	switch {
	case strings.Contains(prompt, "Produto Demandado"):
		return testRFPPayload, nil
	case strings.Contains(prompt, "Produtos Oferecidos"):
		return testProposalPayload, nil
	default:
		return `{"condicoes_comerciais":[]}`, nil
	}
}

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{
		Port:              "0",
		OutputDir:         filepath.Join(dir, "out"),
		MaxProposalUpload: 8 << 20,
		LogLevel:          "ERROR",
	}
	runner := pipeline.NewRunner(ai.NewExtractor(stubGenerator{}), st, nil)
	return New(cfg, st, runner), st
}

func multipartUpload(t *testing.T, fields map[string][]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for field, names := range fields {
		for _, name := range names {
			part, err := w.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = part.Write([]byte("%PDF fake " + name))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateRunRequiresFiles(t *testing.T) {
	s, _ := newTestServer(t)

	body, contentType := multipartUpload(t, map[string][]string{
		"proposals": {"p1.pdf"},
	})
	req := httptest.NewRequest("POST", "/api/runs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "rfp")

	body, contentType = multipartUpload(t, map[string][]string{
		"rfp": {"rfp.pdf"},
	})
	req = httptest.NewRequest("POST", "/api/runs", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "proposal")
}

func TestCreateRunRejectsTooManyProposals(t *testing.T) {
	s, _ := newTestServer(t)

	names := make([]string, 21)
	for i := range names {
		names[i] = "p.pdf"
	}
	body, contentType := multipartUpload(t, map[string][]string{
		"rfp":       {"rfp.pdf"},
		"proposals": names,
	})
	req := httptest.NewRequest("POST", "/api/runs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at most 20")
}

func waitForStatus(t *testing.T, st *store.Store, id, status string) *store.Run {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		run, err := st.GetRun(id)
		require.NoError(t, err)
		require.NotNil(t, run)
		if run.Status == status {
			return run
		}
		if run.Status == store.StatusFailed {
			t.Fatalf("run failed: %s", run.Error)
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("run %s never reached status %s", id, status)
	return nil
}

func TestRunLifecycleOverHTTP(t *testing.T) {
	s, st := newTestServer(t)

	body, contentType := multipartUpload(t, map[string][]string{
		"rfp":       {"rfp.pdf"},
		"proposals": {"p1.pdf"},
	})
	req := httptest.NewRequest("POST", "/api/runs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var created store.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, store.StatusPending, created.Status)
	assert.Equal(t, "rfp.pdf", created.RFPName)

	done := waitForStatus(t, st, created.ID, store.StatusDone)
	assert.NotEmpty(t, done.CSVPath)
	assert.NotEmpty(t, done.XLSXPath)

	// Status over HTTP.
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"done"`)

	// Download the consolidated CSV.
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs/"+created.ID+"/report?format=csv", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fornecedor")

	// Listing includes the run.
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID)
}

func TestGetRunNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadBeforeDoneConflicts(t *testing.T) {
	s, st := newTestServer(t)
	run, err := st.CreateRun("", "rfp.pdf", 1, "")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs/"+run.ID+"/report", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
