package services

import (
	"context"
	"fmt"
	"time"

	"duitku/internal/cache"
	"duitku/internal/core"
	"duitku/internal/log"
	"duitku/internal/storage"
)

// filteredExpenseLimit caps report listings.
const filteredExpenseLimit = 100

// DashboardSummary is the headline spending view for a user's scope.
type DashboardSummary struct {
	Today      core.Money `json:"today"`
	ThisWeek   core.Money `json:"thisWeek"`
	ThisMonth  core.Money `json:"thisMonth"`
	MonthCount int64      `json:"monthCount"`
}

// ReportsService runs every aggregation over the caller's family scope and
// memoizes dashboard reads behind a short-TTL LRU.
type ReportsService struct {
	storage *storage.SQLiteRepository
	family  *FamilyService
	cache   *cache.LRUCache[any]
	logger  *log.Logger
}

func NewReportsService(storage *storage.SQLiteRepository, family *FamilyService, logger *log.Logger) *ReportsService {
	return &ReportsService{
		storage: storage,
		family:  family,
		cache:   cache.NewLRUCache[any](512, 2*time.Minute),
		logger:  logger.WithComponent(log.ComponentReports),
	}
}

// Cache exposes the read cache so a cache.Manager can sweep it.
func (s *ReportsService) Cache() cache.Cleaner { return s.cache }

// InvalidateUsers drops every cached read belonging to the given users.
func (s *ReportsService) InvalidateUsers(userIDs []int64) {
	for _, id := range userIDs {
		s.cache.DeletePrefix(fmt.Sprintf("u%d:", id))
	}
}

// SumByCategory groups scope expenses by category label, largest first.
func (s *ReportsService) SumByCategory(ctx context.Context, userID int64, f core.ReportFilters) ([]core.CategoryTotal, error) {
	scope, err := s.family.Scope(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals, err := s.storage.SumExpensesByCategory(ctx, scope, f)
	if err != nil {
		return nil, fmt.Errorf("aggregate by category: %w", err)
	}
	return totals, nil
}

// SummaryTotal returns the filtered grand total and row count.
func (s *ReportsService) SummaryTotal(ctx context.Context, userID int64, f core.ReportFilters) (core.Money, int64, error) {
	scope, err := s.family.Scope(ctx, userID)
	if err != nil {
		return core.Money{}, 0, err
	}
	total, count, err := s.storage.ExpenseSummary(ctx, scope, f)
	if err != nil {
		return core.Money{}, 0, fmt.Errorf("aggregate summary: %w", err)
	}
	return total, count, nil
}

// Dashboard returns today / this-week / this-month spending for the scope.
// Weeks start on Sunday, matching the insight comparator.
func (s *ReportsService) Dashboard(ctx context.Context, userID int64, ref time.Time) (DashboardSummary, error) {
	today := core.DateOf(ref)
	key := fmt.Sprintf("u%d:dash:%s", userID, today.String())
	if v, ok := s.cache.Get(key); ok {
		return v.(DashboardSummary), nil
	}

	scope, err := s.family.Scope(ctx, userID)
	if err != nil {
		return DashboardSummary{}, err
	}

	weekStart := today.AddDays(-int(today.Weekday()))
	monthStart := core.NewDate(today.Year(), int(today.Month()), 1)

	var out DashboardSummary
	if out.Today, err = s.storage.SumExpenses(ctx, scope, today, today); err != nil {
		return DashboardSummary{}, fmt.Errorf("dashboard today total: %w", err)
	}
	if out.ThisWeek, err = s.storage.SumExpenses(ctx, scope, weekStart, today); err != nil {
		return DashboardSummary{}, fmt.Errorf("dashboard week total: %w", err)
	}
	out.ThisMonth, out.MonthCount, err = s.storage.ExpenseSummary(ctx, scope, core.ReportFilters{From: monthStart, To: today})
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("dashboard month total: %w", err)
	}

	s.cache.Set(key, out)
	return out, nil
}

// ChartData returns zero-filled chart buckets for the range ending at ref.
func (s *ReportsService) ChartData(ctx context.Context, userID int64, r core.TimeRange, ref time.Time) ([]core.BucketTotal, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("u%d:chart:%s:%s", userID, r, core.DateOf(ref).String())
	if v, ok := s.cache.Get(key); ok {
		return v.([]core.BucketTotal), nil
	}

	scope, err := s.family.Scope(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, to := core.ChartWindow(r, ref)
	days, err := s.storage.DailyExpenseTotals(ctx, scope, from, to)
	if err != nil {
		return nil, fmt.Errorf("chart data: %w", err)
	}

	buckets := core.BuildChartBuckets(r, ref, days)
	s.cache.Set(key, buckets)
	return buckets, nil
}

// SpendingInsight compares the current period against the one before it and
// names the biggest current-period category.
func (s *ReportsService) SpendingInsight(ctx context.Context, userID int64, r core.TimeRange, ref time.Time) (core.Insight, error) {
	if err := r.Validate(); err != nil {
		return core.Insight{}, err
	}

	key := fmt.Sprintf("u%d:insight:%s:%s", userID, r, core.DateOf(ref).String())
	if v, ok := s.cache.Get(key); ok {
		return v.(core.Insight), nil
	}

	scope, err := s.family.Scope(ctx, userID)
	if err != nil {
		return core.Insight{}, err
	}

	curFrom, curTo, prevFrom, prevTo := core.InsightPeriods(r, ref)

	current, err := s.storage.SumExpenses(ctx, scope, curFrom, curTo)
	if err != nil {
		return core.Insight{}, fmt.Errorf("insight current total: %w", err)
	}
	previous, err := s.storage.SumExpenses(ctx, scope, prevFrom, prevTo)
	if err != nil {
		return core.Insight{}, fmt.Errorf("insight previous total: %w", err)
	}

	insight := core.Insight{
		PercentageChange: core.PercentChange(current, previous),
		CurrentTotal:     current,
	}

	byCategory, err := s.storage.SumExpensesByCategory(ctx, scope, core.ReportFilters{From: curFrom, To: curTo})
	if err != nil {
		return core.Insight{}, fmt.Errorf("insight top category: %w", err)
	}
	if len(byCategory) > 0 && byCategory[0].Total.Cents > 0 {
		top := byCategory[0].Category
		insight.TopCategory = &top
	}

	s.cache.Set(key, insight)
	return insight, nil
}

// FilteredExpenses lists the scope's expenses matching the filters, newest
// first, capped at 100 rows.
func (s *ReportsService) FilteredExpenses(ctx context.Context, userID int64, f core.ReportFilters) ([]storage.ExpenseWithCategory, error) {
	scope, err := s.family.Scope(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.storage.FilteredExpenses(ctx, scope, f, filteredExpenseLimit)
	if err != nil {
		return nil, fmt.Errorf("filtered expenses: %w", err)
	}
	return rows, nil
}
