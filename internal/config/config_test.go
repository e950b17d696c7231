package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.Database != "data/society.db" {
		t.Errorf("database = %q, want data/society.db", cfg.Database)
	}
	if cfg.Players != 10 {
		t.Errorf("players = %d, want 10", cfg.Players)
	}
	if cfg.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Seed)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SOCIETY_PORT", "9090")
	t.Setenv("SOCIETY_DB", "postgres://localhost/society")
	t.Setenv("SOCIETY_ADMIN_KEY", "hunter2")
	t.Setenv("SOCIETY_PLAYERS", "6")
	t.Setenv("SOCIETY_SEED", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if cfg.Database != "postgres://localhost/society" {
		t.Errorf("database = %q", cfg.Database)
	}
	if cfg.AdminKey != "hunter2" {
		t.Errorf("admin key = %q", cfg.AdminKey)
	}
	if cfg.Players != 6 || cfg.Seed != 7 {
		t.Errorf("players/seed = %d/%d, want 6/7", cfg.Players, cfg.Seed)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SOCIETY_PORT", "not-a-port")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric port")
	}
}
