package config

import (
	"os"
	"testing"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unsetenv %s: %v", k, err)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetenv(t, "DB_DRIVER", "PORT", "LOW_STOCK_THRESHOLD")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("DBDriver = %q, want %q", cfg.DBDriver, "sqlite")
	}
	if cfg.LowStockThreshold != 10 {
		t.Fatalf("LowStockThreshold = %d, want 10", cfg.LowStockThreshold)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/logistics")
	t.Setenv("LOW_STOCK_THRESHOLD", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DSN() != "postgres://localhost/logistics" {
		t.Fatalf("DSN() = %q", cfg.DSN())
	}
	if cfg.LowStockThreshold != 25 {
		t.Fatalf("LowStockThreshold = %d, want 25", cfg.LowStockThreshold)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"sqlite", Config{DBDriver: "sqlite"}, true},
		{"postgres without url", Config{DBDriver: "postgres"}, false},
		{"memory without world", Config{DBDriver: "memory"}, false},
		{"memory with world", Config{DBDriver: "memory", WorldPath: "w.yaml"}, true},
		{"unknown driver", Config{DBDriver: "mysql"}, false},
		{"negative threshold", Config{DBDriver: "sqlite", LowStockThreshold: -1}, false},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err == nil) != tt.ok {
			t.Fatalf("%s: Validate() error = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestGet(t *testing.T) {
	t.Setenv("LOGISTICS_TEST_KEY", "")
	if got := Get("LOGISTICS_TEST_KEY", "fallback"); got != "fallback" {
		t.Fatalf("Get = %q, want fallback", got)
	}
	t.Setenv("LOGISTICS_TEST_KEY", "set")
	if got := Get("LOGISTICS_TEST_KEY", "fallback"); got != "set" {
		t.Fatalf("Get = %q, want set", got)
	}
}
