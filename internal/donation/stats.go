package donation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DayTotal is the donated amount for one day of a month.
type DayTotal struct {
	Day    int             `json:"day"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthlyStats aggregates donations for the admin chart.
type MonthlyStats struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	ByDay []DayTotal      `json:"by_day"`
	Total decimal.Decimal `json:"total"`
}

// StatsForMonth sums counted donations per day of the given calendar month.
// A donation's effective date is its settlement time, falling back to its
// creation time while it is still pending.
func (s *Service) StatsForMonth(ctx context.Context, year, month int) (MonthlyStats, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	donations, err := s.repo.ListCountedBetween(ctx, from, to)
	if err != nil {
		return MonthlyStats{}, err
	}

	daysInMonth := to.AddDate(0, 0, -1).Day()
	byDay := make([]DayTotal, daysInMonth)
	for i := range byDay {
		byDay[i] = DayTotal{Day: i + 1, Amount: decimal.Zero}
	}

	total := decimal.Zero
	for _, don := range donations {
		effective := don.CreatedAt
		if don.PaidAt != nil {
			effective = *don.PaidAt
		}
		day := effective.Day()
		byDay[day-1].Amount = byDay[day-1].Amount.Add(don.Amount)
		total = total.Add(don.Amount)
	}

	return MonthlyStats{Year: year, Month: month, ByDay: byDay, Total: total}, nil
}
