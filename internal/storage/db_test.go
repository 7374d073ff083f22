package storage

import (
	"io/fs"
	"testing"

	"github.com/claude/gymdirection/internal/config"
	"github.com/claude/gymdirection/migrations"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func testDBConfig() config.DatabaseConfig {
	return config.DatabaseConfig{Host: "db.internal", Port: 5433, Name: "gymdir", User: "gymdir", Password: "secret"}
}

// TestPoolConfig verifies the pool is built from the database section.
func TestPoolConfig(t *testing.T) {
	cfg := testDBConfig()
	cfg.MaxConns = 7

	pc, err := poolConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if pc.MaxConns != 7 {
		t.Errorf("max conns = %d, want 7", pc.MaxConns)
	}
	cc := pc.ConnConfig
	if cc.Host != "db.internal" || cc.Port != 5433 || cc.Database != "gymdir" || cc.User != "gymdir" {
		t.Errorf("conn config = %s:%d/%s as %s", cc.Host, cc.Port, cc.Database, cc.User)
	}
	if got := cc.RuntimeParams["application_name"]; got != applicationName {
		t.Errorf("application_name = %q, want %q", got, applicationName)
	}
}

// TestPoolConfigDefaultMaxConns verifies an unset limit keeps pgx's default.
func TestPoolConfigDefaultMaxConns(t *testing.T) {
	pc, err := poolConfig(testDBConfig())
	if err != nil {
		t.Fatal(err)
	}
	if pc.MaxConns <= 0 {
		t.Errorf("max conns = %d, want pgx default", pc.MaxConns)
	}
}

// TestEmbeddedMigrations verifies the schema ships inside the binary and
// starts at version 1.
func TestEmbeddedMigrations(t *testing.T) {
	if _, err := fs.Stat(migrations.FS, "000001_init.up.sql"); err != nil {
		t.Fatalf("up migration missing: %v", err)
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	v, err := src.First()
	if err != nil {
		t.Fatal(err)
	}
	if v != 1 {
		t.Errorf("first version = %d, want 1", v)
	}
}
