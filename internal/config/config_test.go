package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Ingest.BatchLimit != 50 {
		t.Errorf("batch limit = %d, want 50", cfg.Ingest.BatchLimit)
	}
	if cfg.Ingest.Lookback() != time.Hour {
		t.Errorf("lookback = %s, want 1h", cfg.Ingest.Lookback())
	}
	if cfg.Ingest.DedupTTL() != 24*time.Hour {
		t.Errorf("dedup ttl = %s, want 24h", cfg.Ingest.DedupTTL())
	}
	if cfg.IMAP.Folder != "INBOX" {
		t.Errorf("folder = %q, want INBOX", cfg.IMAP.Folder)
	}
	if !cfg.IMAP.TLS {
		t.Error("IMAP TLS should default to on")
	}
	if cfg.Storage.Driver != "fs" {
		t.Errorf("storage driver = %q, want fs", cfg.Storage.Driver)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("INGEST_BATCH_LIMIT", "10")
	t.Setenv("INGEST_LOOKBACK_MINUTES", "15")
	t.Setenv("IMAP_PORT", "143")
	t.Setenv("IMAP_TLS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ingest.BatchLimit != 10 {
		t.Errorf("batch limit = %d, want 10", cfg.Ingest.BatchLimit)
	}
	if cfg.Ingest.Lookback() != 15*time.Minute {
		t.Errorf("lookback = %s, want 15m", cfg.Ingest.Lookback())
	}
	if cfg.IMAP.Addr() != "localhost:143" {
		t.Errorf("imap addr = %q", cfg.IMAP.Addr())
	}
	if cfg.IMAP.TLS {
		t.Error("IMAP TLS should be off")
	}
}

func TestIMAPValidate(t *testing.T) {
	cfg := IMAPConfig{Host: "mail.example.com", Port: "993"}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail without credentials")
	}

	cfg.Username = "support@example.com"
	cfg.Password = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
