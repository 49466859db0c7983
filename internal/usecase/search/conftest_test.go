package search

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/component"
	"github.com/kailas-cloud/partdex/internal/domain/search/event"
	"github.com/kailas-cloud/partdex/internal/domain/search/facet"
	"github.com/kailas-cloud/partdex/internal/domain/search/filter"
	"github.com/kailas-cloud/partdex/internal/domain/search/request"
)

// --- Mocks ---

// fakeCatalog evaluates the catalog predicate in memory.
type fakeCatalog struct {
	mu         sync.Mutex
	components []component.Component
	findFn     func(q request.CatalogQuery) ([]component.Component, error)
	err        error
	facets     facet.Options
	countCalls int
	findCalls  int
	facetCalls int
	lastQuery  request.CatalogQuery
}

func (m *fakeCatalog) matches(c *component.Component, q request.CatalogQuery) bool {
	f := q.Filters
	available := true
	if f.Availability != nil {
		available = *f.Availability
	}
	if c.Availability != available {
		return false
	}
	if len(f.Category) > 0 && !slices.Contains(f.Category, c.Category) {
		return false
	}
	if len(f.Type) > 0 && !slices.Contains(f.Type, c.Type) {
		return false
	}
	if len(f.Material) > 0 && !slices.Contains(f.Material, component.Deref(c.Material)) {
		return false
	}
	if f.PriceRange != nil && (c.Price == nil || *c.Price < f.PriceRange.Min || *c.Price > f.PriceRange.Max) {
		return false
	}
	text := strings.ToLower(strings.TrimSpace(q.Text))
	if text == "" {
		return true
	}
	for _, v := range []string{c.Name, c.Description, c.PartNumber, component.Deref(c.Manufacturer)} {
		if strings.Contains(strings.ToLower(v), text) {
			return true
		}
	}
	for _, tok := range strings.Fields(q.Text) {
		if slices.Contains(c.Tags, tok) {
			return true
		}
	}
	return false
}

func (m *fakeCatalog) filtered(q request.CatalogQuery) []component.Component {
	var out []component.Component
	for i := range m.components {
		if m.matches(&m.components[i], q) {
			out = append(out, m.components[i])
		}
	}
	slices.SortStableFunc(out, func(a, b component.Component) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (m *fakeCatalog) Count(_ context.Context, q request.CatalogQuery) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countCalls++
	m.lastQuery = q
	if m.err != nil {
		return 0, m.err
	}
	return len(m.filtered(q)), nil
}

func (m *fakeCatalog) Find(_ context.Context, q request.CatalogQuery) ([]component.Component, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	if m.findFn != nil {
		return m.findFn(q)
	}
	all := m.filtered(q)
	start := min(q.Options.Offset(), len(all))
	end := min(start+q.Options.Limit, len(all))
	return all[start:end], nil
}

func (m *fakeCatalog) FilterOptions(_ context.Context) (facet.Options, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facetCalls++
	return m.facets, m.err
}

type mockEnhancer struct {
	fn    func(ctx context.Context, req domain.EnhanceRequest) (domain.Enhancement, error)
	calls int
}

func (m *mockEnhancer) Enhance(ctx context.Context, req domain.EnhanceRequest) (domain.Enhancement, error) {
	m.calls++
	return m.fn(ctx, req)
}

// memCache is a JSON round-tripping cache safe for background writers.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	deleted []string
	// setGate, when non-nil, holds every Set until it is closed.
	setGate chan struct{}
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return false, m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if m.setGate != nil {
		<-m.setGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memCache) onlyKey(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.data) != 1 {
		t.Fatalf("cache entries = %d, want 1", len(m.data))
	}
	for k := range m.data {
		return k
	}
	return ""
}

func (m *memCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

type mockEvents struct {
	mu     sync.Mutex
	events []event.Event
	err    error
}

func (m *mockEvents) Record(_ context.Context, e event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return m.err
}

func (m *mockEvents) recorded() []event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

type mockPopular struct {
	queries   []string
	err       error
	lastSince time.Time
	lastLimit int
	calls     int
}

func (m *mockPopular) Popular(_ context.Context, since time.Time, limit int) ([]string, error) {
	m.calls++
	m.lastSince = since
	m.lastLimit = limit
	return m.queries, m.err
}

// --- Fixtures ---

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func seedCatalog() []component.Component {
	mk := func(id, name string, typ component.Type, material string, price float64, tags ...string) component.Component {
		return component.Component{
			ID: id, Name: name, Category: "Fasteners", Type: typ,
			Material: strPtr(material), PartNumber: strings.ToUpper(id), SKU: "SKU-" + id,
			Price: floatPtr(price), Availability: true, Stock: 10,
			Tags: append([]string{}, tags...), Specifications: []component.Specification{},
			Images: []component.Image{}, CADFiles: []component.CADFile{},
			CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	out := []component.Component{
		mk("s1", "Socket Head Cap Screw M8x20", component.TypeScrew, "Stainless Steel 316", 0.45, "m8", "socket"),
		mk("s2", "Pan Head Screw M4x10", component.TypeScrew, "Steel", 0.05, "m4"),
		mk("b1", "Hex Bolt M8x40", component.TypeBolt, "Stainless Steel 316", 0.80, "m8", "hex"),
		mk("b2", "Carriage Bolt M10x60", component.TypeBolt, "Steel", 0.95, "m10"),
		mk("n1", "Hex Nut M8", component.TypeNut, "Stainless Steel 316", 0.10, "m8", "hex"),
		mk("w1", "Flat Washer M8", component.TypeWasher, "Steel", 0.02, "m8"),
	}
	sold := mk("x1", "Hex Bolt M8x40 Discontinued", component.TypeBolt, "Steel", 0.70, "m8")
	sold.Availability = false
	return append(out, sold)
}

func mustRequest(t *testing.T, query string, f filter.Filters, mutate func(o *request.Options)) *request.Request {
	t.Helper()
	opts := request.DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	req, err := request.New(query, f, opts, "")
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}
