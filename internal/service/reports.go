package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"posledger/backend/internal/domain"
	"posledger/backend/internal/store"
)

const dayLayout = "2006-01-02"

// SalesSummary counts and sums the sales whose sale_date falls on any
// calendar day from startDate through endDate, both inclusive, in UTC.
func (s *Service) SalesSummary(ctx context.Context, startDate string, endDate string) (domain.SalesSummary, error) {
	period, err := parsePeriod(startDate, endDate)
	if err != nil {
		return domain.SalesSummary{}, err
	}

	var summary domain.SalesSummary
	key := fmt.Sprintf("sales-summary:%s:%s", startDate, endDate)
	gen, hit := s.cachedReport(ctx, key, &summary)
	if hit {
		return summary, nil
	}

	totals, err := s.repo.SalesTotals(ctx, period)
	if err != nil {
		return domain.SalesSummary{}, err
	}

	summary = domain.SalesSummary{
		TotalSales:  totals.Count,
		TotalAmount: totals.TotalAmount,
		AverageSale: averageSale(totals),
		PeriodStart: startDate,
		PeriodEnd:   endDate,
	}
	s.storeReport(ctx, gen, key, summary)
	return summary, nil
}

// BestSellingProducts ranks products by units sold in the same day range as
// SalesSummary. Ties go to the lower product id.
func (s *Service) BestSellingProducts(ctx context.Context, startDate string, endDate string) ([]domain.BestSellingProduct, error) {
	period, err := parsePeriod(startDate, endDate)
	if err != nil {
		return nil, err
	}

	var ranking []domain.BestSellingProduct
	key := fmt.Sprintf("best-sellers:%s:%s", startDate, endDate)
	gen, hit := s.cachedReport(ctx, key, &ranking)
	if hit {
		return ranking, nil
	}

	ranking, err = s.repo.BestSellingProducts(ctx, period)
	if err != nil {
		return nil, err
	}
	if ranking == nil {
		ranking = []domain.BestSellingProduct{}
	}
	s.storeReport(ctx, gen, key, ranking)
	return ranking, nil
}

func (s *Service) InventoryReport(ctx context.Context) ([]domain.InventoryReportItem, error) {
	var report []domain.InventoryReportItem
	const key = "inventory"
	gen, hit := s.cachedReport(ctx, key, &report)
	if hit {
		return report, nil
	}

	report, err := s.repo.InventoryReport(ctx)
	if err != nil {
		return nil, err
	}
	if report == nil {
		report = []domain.InventoryReportItem{}
	}
	s.storeReport(ctx, gen, key, report)
	return report, nil
}

func averageSale(totals domain.SalesTotals) decimal.Decimal {
	if totals.Count == 0 {
		return decimal.Zero
	}
	return totals.TotalAmount.Div(decimal.NewFromInt(totals.Count)).Round(2)
}

// cachedReport returns the cache generation the caller must pass to
// storeReport. Cache errors degrade to a miss.
func (s *Service) cachedReport(ctx context.Context, key string, dest any) (int64, bool) {
	gen, err := s.reports.Generation(ctx)
	if err != nil {
		s.logger.Warn("report cache unavailable", zap.String("key", key), zap.Error(err))
		return -1, false
	}
	hit, err := s.reports.Get(ctx, gen, key, dest)
	if err != nil {
		s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		return gen, false
	}
	return gen, hit
}

func (s *Service) storeReport(ctx context.Context, gen int64, key string, value any) {
	if gen < 0 {
		return
	}
	if err := s.reports.Set(ctx, gen, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// parsePeriod turns two inclusive calendar days into [start 00:00, end+1 00:00).
func parsePeriod(startDate string, endDate string) (domain.ReportPeriod, error) {
	if strings.TrimSpace(startDate) == "" {
		return domain.ReportPeriod{}, store.Invalid("start_date", "is required")
	}
	if strings.TrimSpace(endDate) == "" {
		return domain.ReportPeriod{}, store.Invalid("end_date", "is required")
	}

	open, err := parseOpenPeriod(startDate, endDate)
	if err != nil {
		return domain.ReportPeriod{}, err
	}
	return domain.ReportPeriod{From: *open.from, To: *open.to}, nil
}

type openPeriod struct {
	from *time.Time
	to   *time.Time
}

// parseOpenPeriod is parsePeriod with either bound optional.
func parseOpenPeriod(startDate string, endDate string) (openPeriod, error) {
	var period openPeriod
	if strings.TrimSpace(startDate) != "" {
		start, err := parseDay("start_date", startDate)
		if err != nil {
			return period, err
		}
		period.from = &start
	}
	if strings.TrimSpace(endDate) != "" {
		end, err := parseDay("end_date", endDate)
		if err != nil {
			return period, err
		}
		next := end.AddDate(0, 0, 1)
		period.to = &next
	}
	if period.from != nil && period.to != nil && !period.from.Before(*period.to) {
		return period, store.Invalid("start_date", "must not be after end_date")
	}
	return period, nil
}

// parseDay accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the start
// of that UTC calendar day.
func parseDay(field string, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if day, err := time.Parse(dayLayout, raw); err == nil {
		return day, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, store.Invalid(field, "must be a date in YYYY-MM-DD form")
	}
	ts = ts.UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}
