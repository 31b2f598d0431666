package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumencart/storefront-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}

func TestCartsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_carts.sql")

	checks := []string{
		"CREATE TABLE carts",
		"CREATE TABLE cart_lines",
		"CREATE UNIQUE INDEX carts_customer_active_key",
		"CREATE UNIQUE INDEX carts_session_active_key",
		"CREATE UNIQUE INDEX cart_lines_cart_product_key",
		"version bigint NOT NULL DEFAULT 1",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrdersMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE TABLE orders",
		"CREATE TABLE order_line_items",
		"CREATE UNIQUE INDEX orders_number_key",
		"CREATE UNIQUE INDEX orders_idempotency_key",
		"CHECK (total_cents >= 0)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
