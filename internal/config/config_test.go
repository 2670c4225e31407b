package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_FuzzyThresholdOutOfRange(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Parser: ParserConfig{FuzzyThreshold: 120},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for fuzzy threshold above 100")
	}
}

func TestValidate_SynonymConfidenceOutOfRange(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Parser: ParserConfig{SynonymMinConfidence: 1.5},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for synonym confidence above 1")
	}
}

func TestValidate_TemperatureOutOfRange(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		LLM: LLMConfig{Temperature: 2.5},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for temperature above 2")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Parser.FuzzyThreshold != 85 {
		t.Errorf("expected FuzzyThreshold=85, got %d", cfg.Parser.FuzzyThreshold)
	}
	if cfg.Parser.MinFuzzyTokenLen != 3 {
		t.Errorf("expected MinFuzzyTokenLen=3, got %d", cfg.Parser.MinFuzzyTokenLen)
	}
	if cfg.Parser.SynonymMinConfidence != 0.7 {
		t.Errorf("expected SynonymMinConfidence=0.7, got %g", cfg.Parser.SynonymMinConfidence)
	}
	if cfg.Planner.ListLimit != 50 {
		t.Errorf("expected ListLimit=50, got %d", cfg.Planner.ListLimit)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected default model, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.TimeoutSec != 30 {
		t.Errorf("expected TimeoutSec=30, got %d", cfg.LLM.TimeoutSec)
	}
	if cfg.Cache.SchemaTTLSec != 0 {
		t.Errorf("expected SchemaTTLSec=0, got %d", cfg.Cache.SchemaTTLSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Parser:   ParserConfig{FuzzyThreshold: 90, MinFuzzyTokenLen: 4, SynonymMinConfidence: 0.8},
		Planner:  PlannerConfig{ListLimit: 25},
		LLM:      LLMConfig{Model: "custom-model", TimeoutSec: 5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Parser.FuzzyThreshold != 90 {
		t.Errorf("expected FuzzyThreshold=90, got %d", cfg.Parser.FuzzyThreshold)
	}
	if cfg.Planner.ListLimit != 25 {
		t.Errorf("expected ListLimit=25, got %d", cfg.Planner.ListLimit)
	}
	if cfg.LLM.Model != "custom-model" {
		t.Errorf("expected Model=custom-model, got %q", cfg.LLM.Model)
	}
}
