package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:       HTTPConfig{Port: 8080},
		Database:   DatabaseConfig{Path: "restaurant.db"},
		Embedding:  EmbeddingConfig{Model: "text-embedding-3-small"},
		Generation: GenerationConfig{Model: "gpt-4o-mini"},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabasePath(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Path = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database path")
	}
}

func TestValidate_MissingModels(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}

	cfg = validConfig()
	cfg.Generation.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing generation model")
	}
}

func TestValidate_TopPOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Generation.TopP = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for top_p > 1")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.FAQsQuery == "" {
		t.Error("expected default faqs query")
	}
	if len(cfg.Database.MenuItemsColumns) != 5 {
		t.Errorf("expected 5 default menu item columns, got %d", len(cfg.Database.MenuItemsColumns))
	}
	if cfg.Generation.MaxLength != 250 {
		t.Errorf("expected MaxLength=250, got %d", cfg.Generation.MaxLength)
	}
	if cfg.Generation.DoSample == nil || !*cfg.Generation.DoSample {
		t.Error("expected DoSample default true")
	}
	if cfg.Generation.Temperature != 0.5 {
		t.Errorf("expected Temperature=0.5, got %g", cfg.Generation.Temperature)
	}
	if cfg.Generation.TopP != 0.6 {
		t.Errorf("expected TopP=0.6, got %g", cfg.Generation.TopP)
	}
	if cfg.Generation.TopK != 50 {
		t.Errorf("expected TopK=50, got %d", cfg.Generation.TopK)
	}
	if cfg.Retrieval.TopKResults != 3 {
		t.Errorf("expected TopKResults=3, got %d", cfg.Retrieval.TopKResults)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	f := false
	cfg := Config{
		HTTP:       HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Generation: GenerationConfig{MaxLength: 100, DoSample: &f, Temperature: 0.9, TopP: 0.95, TopK: 10},
		Retrieval:  RetrievalConfig{TopKResults: 5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Generation.MaxLength != 100 {
		t.Errorf("expected MaxLength=100, got %d", cfg.Generation.MaxLength)
	}
	if *cfg.Generation.DoSample {
		t.Error("expected DoSample to stay false")
	}
	if cfg.Retrieval.TopKResults != 5 {
		t.Errorf("expected TopKResults=5, got %d", cfg.Retrieval.TopKResults)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RAGSERVE_TEST_KEY", "secret-key")
	os.Unsetenv("RAGSERVE_TEST_UNSET")

	in := []byte("api_key: ${RAGSERVE_TEST_KEY}\nbase_url: ${RAGSERVE_TEST_UNSET:-http://localhost:8000/v1}\n")
	out := string(expandEnvVars(in))

	want := "api_key: secret-key\nbase_url: http://localhost:8000/v1\n"
	if out != want {
		t.Errorf("expanded config:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "config")
	if err := os.Mkdir(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	yamlBody := `
http:
  port: 9090
database:
  path: restaurant.db
embedding:
  model: test-embed
generation:
  model: test-gen
  do_sample: false
`
	if err := os.WriteFile(filepath.Join(cfgDir, "test.yaml"), []byte(yamlBody), 0o600); err != nil {
		t.Fatal(err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(cwd) }()

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, expected 9090", cfg.HTTP.Port)
	}
	if cfg.Generation.DoSample == nil || *cfg.Generation.DoSample {
		t.Error("expected do_sample false to survive defaults")
	}
	if cfg.Generation.MaxLength != 250 {
		t.Errorf("expected defaulted MaxLength=250, got %d", cfg.Generation.MaxLength)
	}
}
