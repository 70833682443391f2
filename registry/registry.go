package registry

import (
	"context"
	"log"
	"strings"

	"equalprop/value"
)

// Provider resolves a CNPJ to its partner board lines.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, cnpj string) ([]string, error)
}

// Registry tries providers in order, each behind its own circuit breaker.
// The first provider that answers wins; a CNPJ nobody can resolve stays
// absent from the result, which the reports render as the null marker.
type Registry struct {
	providers []Provider
	breakers  map[string]*CircuitBreaker
}

func New(providers ...Provider) *Registry {
	breakers := make(map[string]*CircuitBreaker, len(providers))
	for _, p := range providers {
		breakers[p.Name()] = NewCircuitBreaker()
	}
	return &Registry{providers: providers, breakers: breakers}
}

// NewDefault wires the production chain: BrasilAPI first, page scrape as
// fallback.
func NewDefault() *Registry {
	return New(NewBrasilAPIProvider(), NewScrapeProvider(""))
}

// Lookup resolves one CNPJ. Returns nil when no provider could answer.
// A malformed CNPJ is a nil result, not a provider fault: it never
// reaches a provider and never counts against a breaker.
func (r *Registry) Lookup(ctx context.Context, cnpj string) []string {
	if _, ok := CNPJDigits(cnpj); !ok {
		return nil
	}
	for _, p := range r.providers {
		breaker := r.breakers[p.Name()]
		if !breaker.CanProceed() {
			log.Printf("registry: provider %s breaker %s, skipping", p.Name(), breaker.State())
			continue
		}
		lines, err := p.Lookup(ctx, cnpj)
		if err != nil {
			breaker.RecordFailure()
			log.Printf("registry: provider %s failed for %s: %v", p.Name(), cnpj, err)
			continue
		}
		breaker.RecordSuccess()
		if len(lines) > 0 {
			return lines
		}
	}
	return nil
}

// LookupAll resolves the board for each proposal id, keyed the same way
// the partners report expects. Ids whose CNPJ is missing or unresolvable
// get no entry.
func (r *Registry) LookupAll(ctx context.Context, ids []string, cnpjByID map[string]string) map[string][]string {
	result := make(map[string][]string)
	for _, id := range ids {
		cnpj := strings.TrimSpace(cnpjByID[id])
		if cnpj == "" || value.IsNullMarker(cnpj) {
			continue
		}
		if lines := r.Lookup(ctx, cnpj); lines != nil {
			result[id] = lines
		}
	}
	return result
}

// SharedPartners flags each proposal whose board shares at least one
// member name with another proposal's board. Names are compared after
// accent folding and stemming, the qualification part is ignored.
func SharedPartners(partners map[string][]string) map[string]any {
	names := make(map[string]map[string]bool, len(partners))
	for id, lines := range partners {
		set := make(map[string]bool, len(lines))
		for _, line := range lines {
			name := line
			if i := strings.Index(line, ","); i >= 0 {
				name = line[:i]
			}
			if key := value.FoldKey(name); key != "" {
				set[key] = true
			}
		}
		names[id] = set
	}

	shared := make(map[string]any, len(partners))
	for id := range partners {
		shared[id] = false
	}
	ids := make([]string, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if intersects(names[ids[i]], names[ids[j]]) {
				shared[ids[i]] = true
				shared[ids[j]] = true
			}
		}
	}
	return shared
}

func intersects(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}
