package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/component"
	"github.com/kailas-cloud/partdex/internal/domain/search/event"
	"github.com/kailas-cloud/partdex/internal/domain/search/filter"
)

func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 port=1 user=partdex dbname=partdex sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return gdb
}

func TestPopularQuery(t *testing.T) {
	gdb := newDryRunDB(t)
	r := New(gdb)
	since := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	sql := gdb.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var out []string
		return r.popularQuery(tx, since, 10).Pluck("query", &out)
	})
	for _, want := range []string{
		`FROM "searches"`,
		"created_at >= '2025-03-01 00:00:00'",
		"query <> ''",
		`GROUP BY "query"`,
		"ORDER BY COUNT(*) DESC, MIN(created_at) ASC",
		"LIMIT 10",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("sql missing %q\n  sql: %s", want, sql)
		}
	}
}

func TestFromDomain(t *testing.T) {
	now := time.Now().UTC()
	m, err := fromDomain(event.Event{
		ID:         "11111111-1111-1111-1111-111111111111",
		Query:      "m8 bolt",
		UserID:     "u-1",
		Filters:    filter.Filters{Type: []component.Type{component.TypeBolt}},
		AIEnhanced: true,
		CreatedAt:  now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.UserID == nil || *m.UserID != "u-1" {
		t.Errorf("UserID = %v", m.UserID)
	}
	var f filter.Filters
	if err := json.Unmarshal(m.Filters, &f); err != nil {
		t.Fatalf("filters not JSON: %v", err)
	}
	if len(f.Type) != 1 || f.Type[0] != component.TypeBolt {
		t.Errorf("filters = %+v", f)
	}
	if !m.AIEnhanced || !m.CreatedAt.Equal(now) {
		t.Errorf("unexpected model: %+v", m)
	}
}

func TestFromDomain_AnonymousUser(t *testing.T) {
	m, err := fromDomain(event.Event{ID: "x", Query: "nut"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.UserID != nil {
		t.Errorf("UserID = %v, want nil", *m.UserID)
	}
	if m.Filters != nil {
		t.Errorf("Filters = %s, want NULL", m.Filters)
	}
}

type recorderFunc func(ctx context.Context, e event.Event) error

func (f recorderFunc) Record(ctx context.Context, e event.Event) error { return f(ctx, e) }

func TestFanout_DeliversToAll(t *testing.T) {
	var calls []string
	f := Fanout{
		recorderFunc(func(_ context.Context, e event.Event) error {
			calls = append(calls, "db:"+e.Query)
			return errors.New("db down")
		}),
		recorderFunc(func(_ context.Context, e event.Event) error {
			calls = append(calls, "kafka:"+e.Query)
			return nil
		}),
	}

	err := f.Record(context.Background(), event.Event{Query: "washer"})
	if err == nil || !strings.Contains(err.Error(), "db down") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(calls) != 2 || calls[1] != "kafka:washer" {
		t.Errorf("calls = %v", calls)
	}
}

func TestFanout_NoErrors(t *testing.T) {
	f := Fanout{recorderFunc(func(context.Context, event.Event) error { return nil })}
	if err := f.Record(context.Background(), event.Event{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecordInteraction_SQL(t *testing.T) {
	gdb := newDryRunDB(t)
	m := fromInteraction(domain.Interaction{
		ID:        "22222222-2222-2222-2222-222222222222",
		Kind:      domain.InteractionRecommendation,
		Input:     json.RawMessage(`{"requirements":"deck"}`),
		Output:    json.RawMessage(`{"recommendations":[],"alternativeOptions":[]}`),
		Model:     "gpt-4o-mini",
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	sql := gdb.ToSQL(func(tx *gorm.DB) *gorm.DB { return tx.Create(&m) })
	for _, want := range []string{
		`INSERT INTO "ai_interactions"`,
		`"type"`,
		"'COMPONENT_RECOMMENDATION'",
		`{"requirements":"deck"}`,
		"'gpt-4o-mini'",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("sql missing %q\n  sql: %s", want, sql)
		}
	}
}

func TestRecordInteraction_DryRun(t *testing.T) {
	r := New(newDryRunDB(t))
	err := r.RecordInteraction(context.Background(), domain.Interaction{
		ID:     "33333333-3333-3333-3333-333333333333",
		Kind:   domain.InteractionRecommendation,
		Input:  json.RawMessage(`{}`),
		Output: json.RawMessage(`{}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestModels(t *testing.T) {
	if got := len(Models()); got != 2 {
		t.Errorf("Models() = %d, want 2", got)
	}
}
