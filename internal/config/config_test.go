package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/devport")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "5000" {
		t.Fatalf("expected default port 5000, got %q", cfg.HTTPPort)
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.StoreDriver)
	}
	if cfg.JWTTTL != 30*24*time.Hour {
		t.Fatalf("expected 30 day token ttl, got %v", cfg.JWTTTL)
	}
	if cfg.OTPTTL != 5*time.Minute || cfg.ResetCodeTTL != 10*time.Minute {
		t.Fatalf("unexpected code ttls: otp=%v reset=%v", cfg.OTPTTL, cfg.ResetCodeTTL)
	}
	if cfg.EmailFromName != "DevPort" {
		t.Fatalf("unexpected from name %q", cfg.EmailFromName)
	}
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/devport")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadConfig_MongoDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", " Mongo ")
	t.Setenv("MONGODB_URI", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without MONGODB_URI")
	}

	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver != StoreDriverMongo || cfg.MongoDatabase != "devport" {
		t.Fatalf("unexpected mongo config: %+v", cfg)
	}
}

func TestValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := &Config{StoreDriver: "sqlite", JWTTTL: time.Hour, OTPTTL: time.Minute, ResetCodeTTL: time.Minute}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
