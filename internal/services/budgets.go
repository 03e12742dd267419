package services

import (
	"context"
	"fmt"

	"duitku/internal/core"
	"duitku/internal/log"
	"duitku/internal/storage"
)

// BudgetService manages monthly per-category spending limits.
type BudgetService struct {
	storage *storage.SQLiteRepository
	family  *FamilyService
	logger  *log.Logger
}

func NewBudgetService(storage *storage.SQLiteRepository, family *FamilyService, logger *log.Logger) *BudgetService {
	return &BudgetService{
		storage: storage,
		family:  family,
		logger:  logger.WithComponent(log.ComponentLedger),
	}
}

// Save upserts a budget: the same (category, year, month) key overwrites
// the amount instead of creating a duplicate. The category must belong to
// the caller.
func (s *BudgetService) Save(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	if _, err := s.storage.GetCategory(ctx, b.UserID, b.CategoryID); err != nil {
		return core.Budget{}, err
	}

	saved, err := s.storage.SaveBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}

	s.logger.InfoContext(ctx, "Budget saved",
		log.FieldUserID, saved.UserID,
		log.FieldCategory, saved.CategoryID,
		"year", saved.Year,
		"month", saved.Month,
		log.FieldAmountCents, saved.Amount.Cents)
	return saved, nil
}

// List returns the caller's budgets for the month with family-scope spending
// progress per category.
func (s *BudgetService) List(ctx context.Context, userID int64, year, month int) ([]storage.BudgetProgress, error) {
	if month < 1 || month > 12 {
		return nil, core.ErrInvalidMonth
	}

	scope, err := s.family.Scope(ctx, userID)
	if err != nil {
		return nil, err
	}

	budgets, err := s.storage.ListBudgets(ctx, userID, scope, year, month)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, id int64) error {
	return s.storage.DeleteBudget(ctx, userID, id)
}
