package metrics

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/pkg/logger"
	"github.com/selivandex/menu-analytics/pkg/metrics"
)

// Repository stores metric rows
type Repository interface {
	// InsertBatch inserts rows into one table
	InsertBatch(ctx context.Context, tableName string, columns []string, values [][]any) error
}

// SQLRepository inserts metric rows through sqlx, on any supported driver
type SQLRepository struct {
	db *sqlx.DB
}

// NewSQLRepository creates new metrics repository
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// InsertBatch inserts rows with a single multi-row INSERT
func (r *SQLRepository) InsertBatch(ctx context.Context, tableName string, columns []string, values [][]any) error {
	if len(values) == 0 {
		return nil
	}
	if len(columns) == 0 {
		return fmt.Errorf("no columns for table %s", tableName)
	}

	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	placeholders := make([]string, len(values))
	args := make([]any, 0, len(values)*len(columns))

	for i, v := range values {
		if len(v) != len(columns) {
			return fmt.Errorf("row %d has wrong column count: expected %d, got %d", i, len(columns), len(v))
		}
		placeholders[i] = row
		args = append(args, v...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("insert into %s failed: %w", tableName, err)
	}

	logger.Debug("metrics batch inserted",
		zap.String("table", tableName),
		zap.Int("rows", len(values)),
	)

	return nil
}

// Writer implements metrics.Writer on top of a Repository
type Writer struct {
	repo Repository
}

// NewWriter creates new metrics writer with repository
func NewWriter(repo Repository) *Writer {
	return &Writer{repo: repo}
}

// Write converts metrics of one table into rows
func (w *Writer) Write(ctx context.Context, tableName string, batch []metrics.Metric) error {
	if len(batch) == 0 {
		return nil
	}

	values := make([][]any, len(batch))
	for i, m := range batch {
		values[i] = m.Values()
	}

	return w.repo.InsertBatch(ctx, tableName, batch[0].Columns(), values)
}

// Close is a no-op; the database is owned by the caller
func (w *Writer) Close() error {
	return nil
}
