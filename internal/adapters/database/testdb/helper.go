package testdb

import (
	"testing"

	"github.com/selivandex/menu-analytics/internal/adapters/config"
	"github.com/selivandex/menu-analytics/internal/adapters/database"
	"github.com/selivandex/menu-analytics/pkg/models"
)

// Setup opens a migrated in-memory SQLite store closed on test cleanup
func Setup(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(config.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close database: %v", err)
		}
	})

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// SeedSales inserts raw sales events
func SeedSales(t *testing.T, db *database.DB, records ...models.SalesRecord) {
	t.Helper()

	for _, r := range records {
		_, err := db.DB().Exec(
			"INSERT INTO sales_data (id, date, amount, item_name, order_number) VALUES (?, ?, ?, ?, ?)",
			r.ID, r.Date, r.Amount, r.ItemName, r.OrderNumber,
		)
		if err != nil {
			t.Fatalf("failed to seed sales record %s: %v", r.ID, err)
		}
	}
}

// SeedCosts inserts raw ingredient cost events
func SeedCosts(t *testing.T, db *database.DB, records ...models.CostRecord) {
	t.Helper()

	for _, r := range records {
		_, err := db.DB().Exec(
			"INSERT INTO market_historical_data (id, date, amount, ingredient_name) VALUES (?, ?, ?, ?)",
			r.ID, r.Date, r.Amount, r.IngredientName,
		)
		if err != nil {
			t.Fatalf("failed to seed cost record %s: %v", r.ID, err)
		}
	}
}

// Count returns the number of rows in a table
func Count(t *testing.T, db *database.DB, table string) int {
	t.Helper()

	var n int
	if err := db.DB().Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
