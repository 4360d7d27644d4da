package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/pkg/logger"
)

// BufferedMetrics batches metrics per table and flushes them on a ticker,
// when a table reaches the batch size, and on Close
type BufferedMetrics struct {
	writer      Writer
	buffer      map[string][]Metric
	flushTicker *time.Ticker
	stopCh      chan struct{}
	wg          sync.WaitGroup
	batchSize   int
	bufferMu    sync.Mutex
}

// BufferConfig configures metrics buffer
type BufferConfig struct {
	Writer        Writer
	BatchSize     int
	FlushInterval time.Duration
}

// NewBufferedMetrics creates new buffered metrics manager
func NewBufferedMetrics(cfg BufferConfig) *BufferedMetrics {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 10 * time.Second
	}

	bm := &BufferedMetrics{
		writer:      cfg.Writer,
		buffer:      make(map[string][]Metric),
		batchSize:   cfg.BatchSize,
		flushTicker: time.NewTicker(cfg.FlushInterval),
		stopCh:      make(chan struct{}),
	}

	bm.wg.Add(1)
	go bm.autoFlush()

	logger.Debug("metrics buffer initialized",
		zap.Int("batch_size", cfg.BatchSize),
		zap.Duration("flush_interval", cfg.FlushInterval),
	)

	return bm
}

// Add adds metric to buffer (thread-safe)
func (bm *BufferedMetrics) Add(metric Metric) error {
	if metric == nil {
		return fmt.Errorf("metric is nil")
	}

	tableName := metric.TableName()
	if tableName == "" {
		return fmt.Errorf("metric table name is empty")
	}

	bm.bufferMu.Lock()
	bm.buffer[tableName] = append(bm.buffer[tableName], metric)
	full := len(bm.buffer[tableName]) >= bm.batchSize
	bm.bufferMu.Unlock()

	if full {
		bm.wg.Add(1)
		go func() {
			defer bm.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := bm.Flush(ctx); err != nil {
				logger.Error("auto-flush failed", zap.Error(err))
			}
		}()
	}

	return nil
}

// Flush writes all buffered metrics
func (bm *BufferedMetrics) Flush(ctx context.Context) error {
	bm.bufferMu.Lock()
	toFlush := make(map[string][]Metric, len(bm.buffer))
	for table, batch := range bm.buffer {
		if len(batch) > 0 {
			toFlush[table] = batch
		}
	}
	bm.buffer = make(map[string][]Metric)
	bm.bufferMu.Unlock()

	var errs []error
	for tableName, batch := range toFlush {
		if err := bm.writer.Write(ctx, tableName, batch); err != nil {
			logger.Error("failed to flush metrics",
				zap.String("table", tableName),
				zap.Int("count", len(batch)),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", tableName, err))
			continue
		}
		logger.Debug("metrics flushed",
			zap.String("table", tableName),
			zap.Int("count", len(batch)),
		)
	}

	return errors.Join(errs...)
}

// Size returns current buffer size across all tables
func (bm *BufferedMetrics) Size() int {
	bm.bufferMu.Lock()
	defer bm.bufferMu.Unlock()

	total := 0
	for _, batch := range bm.buffer {
		total += len(batch)
	}
	return total
}

// Close stops the ticker, flushes what is left and closes the writer
func (bm *BufferedMetrics) Close(ctx context.Context) error {
	close(bm.stopCh)
	bm.flushTicker.Stop()
	bm.wg.Wait()

	flushErr := bm.Flush(ctx)
	return errors.Join(flushErr, bm.writer.Close())
}

func (bm *BufferedMetrics) autoFlush() {
	defer bm.wg.Done()

	for {
		select {
		case <-bm.flushTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := bm.Flush(ctx); err != nil {
				logger.Warn("periodic flush failed", zap.Error(err))
			}
			cancel()
		case <-bm.stopCh:
			return
		}
	}
}
