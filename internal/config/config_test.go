package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	cfg := Load()

	if cfg.App.Name != "shopbill-api" {
		t.Errorf("App.Name = %q, want shopbill-api", cfg.App.Name)
	}
	if cfg.App.Port != "8080" {
		t.Errorf("App.Port = %q, want 8080", cfg.App.Port)
	}
	if cfg.App.Timezone != "Asia/Kolkata" {
		t.Errorf("App.Timezone = %q, want Asia/Kolkata", cfg.App.Timezone)
	}
	if cfg.Redis.Enabled {
		t.Error("Redis.Enabled should default to false")
	}
	if cfg.Printer.Type != "null" {
		t.Errorf("Printer.Type = %q, want null", cfg.Printer.Type)
	}
	if cfg.Printer.Width != 48 {
		t.Errorf("Printer.Width = %d, want 48", cfg.Printer.Width)
	}
}

func TestDSN(t *testing.T) {
	viper.Reset()
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     "5433",
		Name:     "shopbill",
		User:     "app",
		Password: "secret",
		SSLMode:  "require",
		Timezone: "Asia/Kolkata",
	}

	want := "host=db user=app password=secret dbname=shopbill port=5433 sslmode=require TimeZone=Asia/Kolkata"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_EXPIRY_HOURS", "2")

	cfg := Load()

	if cfg.App.Port != "9090" {
		t.Errorf("App.Port = %q, want 9090", cfg.App.Port)
	}
	if cfg.JWT.ExpiryHours.Hours() != 2 {
		t.Errorf("JWT.ExpiryHours = %v, want 2h", cfg.JWT.ExpiryHours)
	}
}
