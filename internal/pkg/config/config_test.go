package config

import (
	"testing"
)

func validConfig() *Config {
	return &Config{
		AppHost:                "localhost",
		AppPort:                "4000",
		BaseURL:                "https://saturngames.example",
		SupabaseURL:            "https://abc.supabase.co",
		SupabaseAnonKey:        "anon-key",
		SupabaseServiceRoleKey: "service-role-key",
		StripeSecretKey:        "sk_test_123",
		StripeWebhookSecret:    "whsec_123",
		StripeAPIBase:          "https://api.stripe.com",
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "supabase url", mutate: func(c *Config) { c.SupabaseURL = "" }},
		{name: "anon key", mutate: func(c *Config) { c.SupabaseAnonKey = "" }},
		{name: "service role key", mutate: func(c *Config) { c.SupabaseServiceRoleKey = "" }},
		{name: "stripe secret", mutate: func(c *Config) { c.StripeSecretKey = "" }},
		{name: "webhook secret", mutate: func(c *Config) { c.StripeWebhookSecret = "" }},
		{name: "base url not a url", mutate: func(c *Config) { c.BaseURL = "not-a-url" }},
	}

	for _, tt := range tests {
		cfg := validConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tt.name)
		}
	}
}

func TestLoad_TrimsTrailingSlashes(t *testing.T) {
	t.Setenv("BASE_URL", "https://saturngames.example/")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_1")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "https://saturngames.example" {
		t.Fatalf("expected trimmed base url, got %q", cfg.BaseURL)
	}
	if cfg.SupabaseURL != "https://abc.supabase.co" {
		t.Fatalf("expected trimmed supabase url, got %q", cfg.SupabaseURL)
	}
	if cfg.StripeAPIBase != "https://api.stripe.com" {
		t.Fatalf("expected default stripe api base, got %q", cfg.StripeAPIBase)
	}
}
