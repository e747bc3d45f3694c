package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")
	if cfg.General.DefaultLanguage != "it" {
		t.Fatalf("default language = %q", cfg.General.DefaultLanguage)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("server address = %q", cfg.Server.Address)
	}
	if cfg.Search.MaxQueries != 4 || cfg.Search.MaxSources != 6 {
		t.Fatalf("search limits = %d/%d", cfg.Search.MaxQueries, cfg.Search.MaxSources)
	}
	if cfg.Search.Timeout != 15*time.Second {
		t.Fatalf("search timeout = %s", cfg.Search.Timeout)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("llm model = %q", cfg.LLM.Model)
	}
	if cfg.Export.PublicPath != "/generated" {
		t.Fatalf("public path = %q", cfg.Export.PublicPath)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("LANGNERD_SEARCH_PROVIDER", "brave")
	t.Setenv("LANGNERD_GENERAL_DEFAULT_LANGUAGE", "en")

	cfg := LoadConfig("")
	if cfg.Search.Provider != "brave" {
		t.Fatalf("env override ignored, provider = %q", cfg.Search.Provider)
	}
	if cfg.General.DefaultLanguage != "en" {
		t.Fatalf("env override ignored, language = %q", cfg.General.DefaultLanguage)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	if err := (LLMConfig{Model: "gpt-4o-mini"}).Validate(); err == nil {
		t.Fatalf("missing llm api key must fail validation")
	}
	if err := (LLMConfig{APIKey: "k", Model: "gpt-4o-mini"}).Validate(); err != nil {
		t.Fatalf("valid llm config rejected: %v", err)
	}
	if err := (SearchConfig{Provider: "serper"}).Validate(); err == nil {
		t.Fatalf("missing search api key must fail validation")
	}
	if err := (ExportConfig{}).Validate(); err == nil {
		t.Fatalf("missing output dir must fail validation")
	}
	if err := (ExportConfig{OutputDir: "./generated"}).Validate(); err != nil {
		t.Fatalf("valid export config rejected: %v", err)
	}
}
