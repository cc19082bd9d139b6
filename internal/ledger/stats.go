package ledger

import (
	"context"
	"sort"
	"time"

	"money-tracking/internal/balance"
	"money-tracking/internal/models"
)

// DailyStat is the income and expense of one day.
type DailyStat struct {
	Date string `json:"date"` // YYYY-MM-DD
	balance.Totals
	Net int64 `json:"net"`
}

// CategoryStat is the income and expense booked on one category.
type CategoryStat struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	balance.Totals
	Net int64 `json:"net"`
}

// MonthlyStats summarizes one calendar month. Transfers are excluded.
type MonthlyStats struct {
	Month      string         `json:"month"` // YYYY-MM
	Daily      []DailyStat    `json:"daily"`
	ByCategory []CategoryStat `json:"by_category"`
	Total      balance.Totals `json:"total"`
	Net        int64          `json:"net"`
}

// MonthlyStats computes daily and per-category totals for the month that
// contains month (UTC).
func (s *Service) MonthlyStats(ctx context.Context, month time.Time) (*MonthlyStats, error) {
	month = month.UTC()
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	db := s.read(ctx)
	var txs []models.Transaction
	if err := timeWindow(db.Model(&models.Transaction{}), start, end).
		Where("transfer_id IS NULL").
		Order("created_at ASC").Find(&txs).Error; err != nil {
		return nil, storage("load month", err)
	}

	var cats []models.Category
	if err := db.Unscoped().Select("id", "name").Find(&cats).Error; err != nil {
		return nil, storage("load category names", err)
	}
	catNames := make(map[string]string, len(cats))
	for _, c := range cats {
		catNames[c.ID] = c.Name
	}

	byDay := map[string][]models.Transaction{}
	byCat := map[string][]models.Transaction{}
	for _, t := range txs {
		day := t.CreatedAt.UTC().Format("2006-01-02")
		byDay[day] = append(byDay[day], t)
		cat := ""
		if t.CategoryID != nil {
			cat = *t.CategoryID
		}
		byCat[cat] = append(byCat[cat], t)
	}

	out := &MonthlyStats{
		Month:      start.Format("2006-01"),
		Daily:      make([]DailyStat, 0, len(byDay)),
		ByCategory: make([]CategoryStat, 0, len(byCat)),
		Total:      balance.Aggregate(txs),
	}
	out.Net = out.Total.Net()
	for day, list := range byDay {
		tot := balance.Aggregate(list)
		out.Daily = append(out.Daily, DailyStat{Date: day, Totals: tot, Net: tot.Net()})
	}
	sort.Slice(out.Daily, func(i, j int) bool { return out.Daily[i].Date < out.Daily[j].Date })

	for id, list := range byCat {
		tot := balance.Aggregate(list)
		out.ByCategory = append(out.ByCategory, CategoryStat{
			CategoryID:   id,
			CategoryName: catNames[id],
			Totals:       tot,
			Net:          tot.Net(),
		})
	}
	sort.Slice(out.ByCategory, func(i, j int) bool {
		a, b := out.ByCategory[i], out.ByCategory[j]
		if a.Expense != b.Expense {
			return a.Expense > b.Expense
		}
		return a.CategoryID < b.CategoryID
	})
	return out, nil
}
