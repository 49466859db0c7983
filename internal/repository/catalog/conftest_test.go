package catalog

import (
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunDB returns a gorm handle that renders SQL without connecting.
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

func assertContains(t *testing.T, sql string, fragments ...string) {
	t.Helper()
	for _, f := range fragments {
		if !contains(sql, f) {
			t.Errorf("sql missing %q\n  sql: %s", f, sql)
		}
	}
}

func assertNotContains(t *testing.T, sql string, fragments ...string) {
	t.Helper()
	for _, f := range fragments {
		if contains(sql, f) {
			t.Errorf("sql unexpectedly contains %q\n  sql: %s", f, sql)
		}
	}
}
