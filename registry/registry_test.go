package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestCNPJDigits(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"64.919.541/0001-09", "64919541000109", true},
		{"64919541000109", "64919541000109", true},
		{"123", "123", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := CNPJDigits(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		if ok {
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestBrasilAPILookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cnpj/v1/64919541000109", r.URL.Path)
		fmt.Fprint(w, `{"qsa":[
			{"nome_socio":"MARIA SILVA","qualificacao_socio":"Sócio-Administrador"},
			{"nome":"JOSE SOUZA","qual":"Sócio"},
			{"nome_socio":"","qualificacao_socio":""}
		]}`)
	}))
	defer server.Close()

	p := NewBrasilAPIProvider()
	p.baseURL = server.URL
	p.limiter = rate.NewLimiter(rate.Inf, 1)

	lines, err := p.Lookup(context.Background(), "64.919.541/0001-09")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"MARIA SILVA, Sócio-Administrador",
		"JOSE SOUZA, Sócio",
	}, lines)
}

func TestBrasilAPILookupNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := NewBrasilAPIProvider()
	p.baseURL = server.URL
	p.limiter = rate.NewLimiter(rate.Inf, 1)

	lines, err := p.Lookup(context.Background(), "64919541000109")
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestBrasilAPILookupRejectsShortCNPJ(t *testing.T) {
	p := NewBrasilAPIProvider()
	_, err := p.Lookup(context.Background(), "123")
	require.Error(t, err)
}

func TestScrapeLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="qsa"><ul>
			<li>MARIA SILVA</li>
			<li>JOSE SOUZA</li>
		</ul></div></body></html>`)
	}))
	defer server.Close()

	p := NewScrapeProvider(server.URL)
	p.limiter = rate.NewLimiter(rate.Inf, 1)

	lines, err := p.Lookup(context.Background(), "64919541000109")
	require.NoError(t, err)
	assert.Equal(t, []string{"MARIA SILVA", "JOSE SOUZA"}, lines)
}

type fakeProvider struct {
	name  string
	lines []string
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Lookup(_ context.Context, _ string) ([]string, error) {
	f.calls++
	return f.lines, f.err
}

func TestRegistryFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("down")}
	fallback := &fakeProvider{name: "fallback", lines: []string{"MARIA SILVA, Sócia"}}

	r := New(primary, fallback)
	lines := r.Lookup(context.Background(), "64919541000109")
	assert.Equal(t, []string{"MARIA SILVA, Sócia"}, lines)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestRegistryBreakerOpensAfterFailures(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("down")}
	r := New(primary)

	for i := 0; i < 7; i++ {
		r.Lookup(context.Background(), "64919541000109")
	}
	// Breaker opens after 5 consecutive failures, later calls are skipped.
	assert.Equal(t, 5, primary.calls)
	assert.Equal(t, "open", r.breakers["primary"].State())
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker()
	cb.timeout = time.Millisecond
	for i := 0; i < 5; i++ {
		cb.RecordFailure()
	}
	assert.Equal(t, "open", cb.State())
	assert.False(t, cb.CanProceed())

	time.Sleep(5 * time.Millisecond)
	assert.True(t, cb.CanProceed())
	assert.Equal(t, "half-open", cb.State())

	cb.RecordSuccess()
	cb.RecordSuccess()
	assert.Equal(t, "closed", cb.State())
}

func TestMalformedCNPJDoesNotTripBreaker(t *testing.T) {
	provider := &fakeProvider{name: "p", lines: []string{"MARIA SILVA, Sócia"}}
	r := New(provider)

	ids := []string{"a", "b", "c", "d", "e", "f"}
	cnpjs := map[string]string{
		"a": "123", "b": "123", "c": "123", "d": "123", "e": "123",
		"f": "64919541000109",
	}
	got := r.LookupAll(context.Background(), ids, cnpjs)

	// The five malformed ids resolve to nil without touching the
	// provider; the valid CNPJ still goes through a closed breaker.
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, "closed", r.breakers["p"].State())
	assert.Equal(t, map[string][]string{"f": {"MARIA SILVA, Sócia"}}, got)
}

func TestLookupAllSkipsMissingCNPJ(t *testing.T) {
	provider := &fakeProvider{name: "p", lines: []string{"MARIA SILVA, Sócia"}}
	r := New(provider)

	got := r.LookupAll(context.Background(),
		[]string{"a", "b", "c"},
		map[string]string{"a": "64919541000109", "b": "", "c": "null"})
	assert.Equal(t, map[string][]string{"a": {"MARIA SILVA, Sócia"}}, got)
	assert.Equal(t, 1, provider.calls)
}

func TestSharedPartners(t *testing.T) {
	partners := map[string][]string{
		"a": {"MARIA SILVA, Sócia-Administradora", "JOSE SOUZA, Sócio"},
		"b": {"maria silva, Administradora"},
		"c": {"PEDRO LIMA, Sócio"},
	}
	shared := SharedPartners(partners)
	assert.Equal(t, true, shared["a"])
	assert.Equal(t, true, shared["b"])
	assert.Equal(t, false, shared["c"])
}
