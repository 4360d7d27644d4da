package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/pkg/logger"
	"github.com/selivandex/menu-analytics/pkg/models"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseDay truncates a raw record date to its calendar day (UTC midnight)
func parseDay(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseAmount returns zero for unparseable amounts; ok reports whether parsing succeeded
func parseAmount(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// AggregateSales groups sales records into one row per calendar day, ascending
func AggregateSales(records []models.SalesRecord) ([]models.DailySales, models.DropStats) {
	stats := models.DropStats{Total: len(records)}
	byDay := make(map[time.Time]*models.DailySales)

	for _, rec := range records {
		day, ok := parseDay(rec.Date)
		if !ok {
			stats.BadDates++
			continue
		}

		amount, ok := parseAmount(rec.Amount)
		if !ok {
			stats.ZeroedAmounts++
		}

		agg, exists := byDay[day]
		if !exists {
			agg = &models.DailySales{Date: day, TotalSales: decimal.Zero}
			byDay[day] = agg
		}
		agg.TotalSales = agg.TotalSales.Add(amount)
		if rec.OrderNumber != "" {
			agg.TransactionCount++
		}
		agg.ItemsSold = append(agg.ItemsSold, rec.ItemName)
	}

	daily := make([]models.DailySales, 0, len(byDay))
	for _, agg := range byDay {
		daily = append(daily, *agg)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date.Before(daily[j].Date) })

	if stats.BadDates > 0 || stats.ZeroedAmounts > 0 {
		logger.Warn("sales records dropped or coerced during aggregation",
			zap.Int("bad_dates", stats.BadDates),
			zap.Int("zeroed_amounts", stats.ZeroedAmounts),
		)
	}

	return daily, stats
}

// AggregateCosts pivots cost records into a day x ingredient matrix of mean costs.
// Ingredient names are compared exactly; "Tomato" and "tomato" are separate columns.
func AggregateCosts(records []models.CostRecord) (models.CostMatrix, models.DropStats) {
	stats := models.DropStats{Total: len(records)}

	type acc struct {
		sum   decimal.Decimal
		count int64
	}
	sums := make(map[time.Time]map[string]*acc)
	ingredients := make(map[string]struct{})

	for _, rec := range records {
		day, ok := parseDay(rec.Date)
		if !ok {
			stats.BadDates++
			continue
		}

		amount, ok := parseAmount(rec.Amount)
		if !ok {
			stats.ZeroedAmounts++
		}

		row, exists := sums[day]
		if !exists {
			row = make(map[string]*acc)
			sums[day] = row
		}
		a, exists := row[rec.IngredientName]
		if !exists {
			a = &acc{sum: decimal.Zero}
			row[rec.IngredientName] = a
		}
		a.sum = a.sum.Add(amount)
		a.count++
		ingredients[rec.IngredientName] = struct{}{}
	}

	matrix := models.CostMatrix{
		Cells: make(map[time.Time]map[string]float64, len(sums)),
	}
	for day, row := range sums {
		cells := make(map[string]float64, len(row))
		for name, a := range row {
			cells[name] = a.sum.Div(decimal.NewFromInt(a.count)).InexactFloat64()
		}
		matrix.Cells[day] = cells
		matrix.Dates = append(matrix.Dates, day)
	}
	sort.Slice(matrix.Dates, func(i, j int) bool { return matrix.Dates[i].Before(matrix.Dates[j]) })

	for name := range ingredients {
		matrix.Ingredients = append(matrix.Ingredients, name)
	}
	sort.Strings(matrix.Ingredients)

	if stats.BadDates > 0 || stats.ZeroedAmounts > 0 {
		logger.Warn("cost records dropped or coerced during aggregation",
			zap.Int("bad_dates", stats.BadDates),
			zap.Int("zeroed_amounts", stats.ZeroedAmounts),
		)
	}

	return matrix, stats
}

// Join inner-joins daily sales with the cost matrix on date equality.
// Rows are returned in ascending date order.
func Join(sales []models.DailySales, costs models.CostMatrix) ([]models.JoinedRow, error) {
	if len(sales) == 0 {
		return nil, fmt.Errorf("sales: %w", ErrDataUnavailable)
	}
	if len(costs.Dates) == 0 {
		return nil, fmt.Errorf("ingredient costs: %w", ErrDataUnavailable)
	}

	joined := make([]models.JoinedRow, 0, len(sales))
	for _, day := range sales {
		cells, ok := costs.Cells[day.Date]
		if !ok {
			continue
		}

		row := models.JoinedRow{
			Date:             day.Date,
			TotalSales:       day.TotalSales.InexactFloat64(),
			TransactionCount: day.TransactionCount,
			ItemsSold:        day.ItemsSold,
			Costs:            make(map[string]float64, len(cells)),
		}
		for name, v := range cells {
			row.Costs[name] = v
		}
		joined = append(joined, row)
	}

	if len(joined) == 0 {
		return nil, ErrJoinEmpty
	}

	sort.Slice(joined, func(i, j int) bool { return joined[i].Date.Before(joined[j].Date) })

	logger.Info("joined sales and cost data",
		zap.Int("days", len(joined)),
		zap.Int("ingredients", len(costs.Ingredients)),
	)

	return joined, nil
}
