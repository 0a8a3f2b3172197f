package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := &Config{
		Host:     "db",
		Port:     "5432",
		User:     "shop",
		Password: "secret",
		DBName:   "storefront",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=shop password=secret dbname=storefront sslmode=disable", cfg.DSN())
}
