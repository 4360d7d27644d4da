package events

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/pkg/logger"
	"github.com/selivandex/menu-analytics/pkg/models"
)

const (
	driverClickHouse = "clickhouse"
	cutoffLayout     = "2006-01-02"
)

// Repository reads raw sales and ingredient cost events
// (from ClickHouse when available, otherwise from the primary SQL store)
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new event repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ReadSales returns sales records dated on or after since
func (r *Repository) ReadSales(ctx context.Context, since time.Time) ([]models.SalesRecord, error) {
	query := `
		SELECT id, date, amount, item_name, order_number
		FROM sales_data
		WHERE date >= ?
	`
	if r.db.DriverName() == driverClickHouse {
		query = `
			SELECT toString(id) AS id, toString(date) AS date, toString(amount) AS amount, item_name, order_number
			FROM sales_data
			WHERE date >= ?
		`
	}

	records := []models.SalesRecord{}
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), cutoff(since)); err != nil {
		return nil, fmt.Errorf("failed to query sales_data: %w", err)
	}

	logger.Info("fetched sales records",
		zap.Int("count", len(records)),
		zap.String("since", cutoff(since)),
		zap.String("driver", r.db.DriverName()),
	)

	return records, nil
}

// ReadCosts returns ingredient cost records dated on or after since
func (r *Repository) ReadCosts(ctx context.Context, since time.Time) ([]models.CostRecord, error) {
	query := `
		SELECT id, date, amount, ingredient_name
		FROM market_historical_data
		WHERE date >= ?
	`
	if r.db.DriverName() == driverClickHouse {
		query = `
			SELECT toString(id) AS id, toString(date) AS date, toString(amount) AS amount, ingredient_name
			FROM market_historical_data
			WHERE date >= ?
		`
	}

	records := []models.CostRecord{}
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), cutoff(since)); err != nil {
		return nil, fmt.Errorf("failed to query market_historical_data: %w", err)
	}

	logger.Info("fetched ingredient cost records",
		zap.Int("count", len(records)),
		zap.String("since", cutoff(since)),
		zap.String("driver", r.db.DriverName()),
	)

	return records, nil
}

// cutoff formats the lower bound as an ISO date so it compares correctly against text dates
func cutoff(since time.Time) string {
	return since.UTC().Format(cutoffLayout)
}
