package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(context.Background(),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"API_FIREBASE_PROJECT_ID":        "turboost-test",
			"API_SHIPPING_ORIGIN_CEP":        "01310100",
			"API_PAYMENTS_CHECKOUT_BASE_URL": "https://shop.example.com",
		}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "turboost-test" {
		t.Errorf("Firestore.ProjectID = %q, want fallback to Firebase project", cfg.Firestore.ProjectID)
	}
	if cfg.Payments.Currency != "BRL" {
		t.Errorf("Payments.Currency = %q, want BRL", cfg.Payments.Currency)
	}
	if len(cfg.Shipping.ServiceCodes) != 2 || cfg.Shipping.ServiceCodes[0] != "04014" {
		t.Errorf("Shipping.ServiceCodes = %v, want default SEDEX/PAC codes", cfg.Shipping.ServiceCodes)
	}
	if cfg.Security.Environment != "local" {
		t.Errorf("Security.Environment = %q, want local", cfg.Security.Environment)
	}
}

func TestLoadValidationFailure(t *testing.T) {
	_, err := Load(context.Background(),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithEnvMap(map[string]string{
			"API_FIREBASE_PROJECT_ID": "turboost-test",
		}),
	)
	if err == nil {
		t.Fatal("Load succeeded, want validation error")
	}

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	fields := validation.Fields()
	want := map[string]bool{"Shipping.OriginCEP": false, "Payments.CheckoutBaseURL": false}
	for _, field := range fields {
		if _, ok := want[field]; ok {
			want[field] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("ValidationError missing field %s (got %v)", field, fields)
		}
	}
}

func TestLoadResolvesSecretReferences(t *testing.T) {
	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if ref != "secret://projects/p/secrets/mp-token/versions/latest" {
			return "", errors.New("unexpected ref " + ref)
		}
		return "TEST-access-token", nil
	})

	cfg, err := Load(context.Background(),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithSecretResolver(resolver),
		WithEnvMap(map[string]string{
			"API_FIREBASE_PROJECT_ID":        "turboost-test",
			"API_SHIPPING_ORIGIN_CEP":        "01310100",
			"API_PAYMENTS_CHECKOUT_BASE_URL": "https://shop.example.com",
			"API_PAYMENTS_MP_ACCESS_TOKEN":   "sm://projects/p/secrets/mp-token/versions/latest",
		}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Payments.AccessToken != "TEST-access-token" {
		t.Errorf("Payments.AccessToken = %q, want resolved secret", cfg.Payments.AccessToken)
	}
}

func TestLoadRequiredSecretsMissing(t *testing.T) {
	_, err := Load(context.Background(),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithRequiredSecrets("Payments.AccessToken"),
		WithEnvMap(map[string]string{
			"API_FIREBASE_PROJECT_ID":        "turboost-test",
			"API_SHIPPING_ORIGIN_CEP":        "01310100",
			"API_PAYMENTS_CHECKOUT_BASE_URL": "https://shop.example.com",
		}),
	)
	if err == nil {
		t.Fatal("Load succeeded, want missing secrets error")
	}
	var missing *MissingSecretsError
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T, want *MissingSecretsError", err)
	}
	if len(missing.RedactedNames()) != 1 {
		t.Errorf("RedactedNames = %v, want one entry", missing.RedactedNames())
	}
}

func TestLoadDotEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "API_SERVER_PORT=9999\nAPI_PAYMENTS_CURRENCY=usd\n# comment line\nexport API_SHIPPING_ORIGIN_CEP=\"01310100\"\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(context.Background(),
		WithoutSystemEnv(),
		WithEnvFile(envFile),
		WithEnvMap(map[string]string{
			"API_FIREBASE_PROJECT_ID":        "turboost-test",
			"API_PAYMENTS_CHECKOUT_BASE_URL": "https://shop.example.com",
			"API_SERVER_PORT":                "7777",
		}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7777" {
		t.Errorf("Server.Port = %q, want explicit map to win over .env", cfg.Server.Port)
	}
	if cfg.Payments.Currency != "USD" {
		t.Errorf("Payments.Currency = %q, want USD from .env (uppercased)", cfg.Payments.Currency)
	}
	if cfg.Shipping.OriginCEP != "01310100" {
		t.Errorf("Shipping.OriginCEP = %q, want quoted export value", cfg.Shipping.OriginCEP)
	}
}
