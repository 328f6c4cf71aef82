package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/connect?sslmode=disable")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("TokenTTL = %v, want 168h", cfg.TokenTTL)
	}
	if !cfg.MigrateOnStart {
		t.Error("MigrateOnStart should default to true")
	}
	if cfg.FavouritesStore != FavouritesStorePostgres {
		t.Errorf("FavouritesStore = %q, want postgres", cfg.FavouritesStore)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want two defaults", cfg.AllowedOrigins)
	}
	if cfg.CloudinaryEnabled() {
		t.Error("Cloudinary should be disabled without credentials")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": ""}},
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"short production secret", map[string]string{"ENVIRONMENT": "production"}},
		{"bad duration", map[string]string{"TOKEN_TTL": "forever"}},
		{"bad bool", map[string]string{"MIGRATE_ON_START": "maybe"}},
		{"unknown favourites store", map[string]string{"FAVORITES_STORE": "sqlite"}},
		{"mongo without uri", map[string]string{"FAVORITES_STORE": "mongo"}},
		{"no origins", map[string]string{"CORS_ALLOWED_ORIGINS": " , "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadConfigOrigins(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://connect.example , ,https://www.connect.example")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := []string{"https://connect.example", "https://www.connect.example"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}
