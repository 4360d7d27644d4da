package metrics

import "context"

// Metric is a generic interface for any metric record
type Metric interface {
	// TableName returns the table this metric is stored in
	TableName() string
	// Columns returns column names in the same order as Values
	Columns() []string
	// Values returns metric values in the same order as columns
	Values() []any
}

// Writer writes metrics to storage
type Writer interface {
	// Write writes batch of metrics of one table
	Write(ctx context.Context, tableName string, metrics []Metric) error
	// Close closes writer and flushes any remaining data
	Close() error
}

// Recorder accepts metrics for later flushing
type Recorder interface {
	Add(metric Metric) error
}
