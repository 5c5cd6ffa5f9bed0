package database

import (
	"testing"

	"github.com/Payphone-Digital/storefront/config"
)

func TestDSN(t *testing.T) {
	got := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "shop",
		Password: "secret",
		Name:     "storefront",
		SSLMode:  "disable",
	})

	want := "host=db port=5433 user=shop password=secret dbname=storefront sslmode=disable"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
