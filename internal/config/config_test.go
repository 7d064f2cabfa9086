package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Storage.Driver != DriverMySQL || !cfg.Stock.LockOrders {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
service:
  name: ledger-test
  log_file: /var/log/ledger.log
http:
  addr: ":9000"
storage:
  driver: memory
stock:
  lock_wait: 250ms
redis:
  addr: "localhost:6379"
  lock_ttl: 2s
`)
	t.Setenv("HTTP_ADDR", ":9100")
	t.Setenv("LOCK_ORDERS", "false")
	t.Setenv("LOG_FILE", "/tmp/ledger.log")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Service.Name != "ledger-test" {
		t.Errorf("expected name from file, got %q", cfg.Service.Name)
	}
	if cfg.Service.LogFile != "/tmp/ledger.log" {
		t.Errorf("expected LOG_FILE to override the file, got %q", cfg.Service.LogFile)
	}
	if cfg.HTTP.Addr != ":9100" {
		t.Errorf("expected env to win, got %q", cfg.HTTP.Addr)
	}
	if cfg.Stock.LockWait != 250*time.Millisecond || cfg.Redis.LockTTL != 2*time.Second {
		t.Errorf("unexpected durations: %v %v", cfg.Stock.LockWait, cfg.Redis.LockTTL)
	}
	if cfg.Stock.LockOrders {
		t.Error("expected LOCK_ORDERS=false to disable locking")
	}
	if cfg.HTTP.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected untouched defaults to survive, got %v", cfg.HTTP.ShutdownTimeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "storage.driver") {
		t.Errorf("expected driver error, got: %v", err)
	}
}

func TestLoad_BadLockOrders(t *testing.T) {
	t.Setenv("LOCK_ORDERS", "maybe")
	if _, err := Load(""); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected read error")
	}
}
