package factory

import (
	"path/filepath"
	"testing"

	pg "github.com/loykin/aotrec/internal/store/postgres"
	sq "github.com/loykin/aotrec/internal/store/sqlite"
)

func TestNewFromDSNEmpty(t *testing.T) {
	if _, err := NewFromDSN("   "); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestNewFromDSNSqlite(t *testing.T) {
	dir := t.TempDir()
	cases := []string{
		"sqlite://" + filepath.Join(dir, "a.db"),
		filepath.Join(dir, "b.db"),
	}
	for _, dsn := range cases {
		st, err := NewFromDSN(dsn)
		if err != nil {
			t.Fatalf("NewFromDSN(%q): %v", dsn, err)
		}
		if _, ok := st.(*sq.DB); !ok {
			t.Fatalf("NewFromDSN(%q) = %T, want *sqlite.DB", dsn, st)
		}
		_ = st.Close()
	}
}

func TestNewFromDSNPostgres(t *testing.T) {
	// sql.Open does not dial, so constructing the store needs no server.
	st, err := NewFromDSN("postgres://u:p@localhost:5432/db?sslmode=disable")
	if err != nil {
		t.Fatalf("NewFromDSN: %v", err)
	}
	if _, ok := st.(*pg.DB); !ok {
		t.Fatalf("got %T, want *postgres.DB", st)
	}
	_ = st.Close()
}
