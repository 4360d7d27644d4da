package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is a single point-of-sale event as it is stored upstream.
// Date and Amount are kept raw; parsing happens during aggregation so that
// malformed rows can be counted instead of failing the whole fetch.
type SalesRecord struct {
	ID          string `db:"id"`
	Date        string `db:"date"`
	Amount      string `db:"amount"`
	ItemName    string `db:"item_name"`
	OrderNumber string `db:"order_number"`
}

// CostRecord is a single ingredient cost observation from the market feed
type CostRecord struct {
	ID             string `db:"id"`
	Date           string `db:"date"`
	Amount         string `db:"amount"`
	IngredientName string `db:"ingredient_name"`
}

// DailySales is the per-day aggregate of sales records
type DailySales struct {
	Date             time.Time
	TotalSales       decimal.Decimal
	TransactionCount int
	ItemsSold        []string // encounter order within the day
}

// CostMatrix is the daily ingredient cost pivot.
// Cells holds date -> ingredient -> mean cost; a missing key means the
// ingredient had no record that day.
type CostMatrix struct {
	Dates       []time.Time // ascending
	Ingredients []string    // sorted, case-sensitive exact names
	Cells       map[time.Time]map[string]float64
}

// Cost returns the cell for date/ingredient and whether it exists
func (m CostMatrix) Cost(date time.Time, ingredient string) (float64, bool) {
	row, ok := m.Cells[date]
	if !ok {
		return 0, false
	}
	v, ok := row[ingredient]
	return v, ok
}

// JoinedRow is one day present in both the sales and cost aggregates
type JoinedRow struct {
	Date             time.Time
	TotalSales       float64
	TransactionCount int
	ItemsSold        []string
	Costs            map[string]float64 // absent key = no cost record that day
}

// DropStats reports how many raw records were excluded or coerced during aggregation
type DropStats struct {
	Total         int `json:"total"`
	BadDates      int `json:"bad_dates"`
	ZeroedAmounts int `json:"zeroed_amounts"`
}
