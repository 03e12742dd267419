package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"duitku/internal/auth"
	"duitku/internal/core"
	"duitku/internal/log"
	"duitku/internal/storage"
)

type testEnv struct {
	repo      *storage.SQLiteRepository
	identity  *IdentityService
	family    *FamilyService
	reports   *ReportsService
	ledger    *LedgerService
	recurring *RecurringService
	budgets   *BudgetService
	goals     *GoalService
	catalog   *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	family := NewFamilyService(repo, logger)
	reports := NewReportsService(repo, family, logger)

	return &testEnv{
		repo:      repo,
		identity:  NewIdentityService(repo, tokens, logger),
		family:    family,
		reports:   reports,
		ledger:    NewLedgerService(repo, nil, family, reports, logger),
		recurring: NewRecurringService(repo, nil, family, reports, logger),
		budgets:   NewBudgetService(repo, family, logger),
		goals:     NewGoalService(repo, logger),
		catalog:   NewCatalogService(repo, logger),
	}
}

func (env *testEnv) user(t *testing.T, name, email, familyName string) core.User {
	t.Helper()
	u, _, err := env.identity.Register(context.Background(), name, email, "password123", familyName)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

func (env *testEnv) category(t *testing.T, userID int64, name string) core.Category {
	t.Helper()
	c, err := env.catalog.CreateCategory(context.Background(), core.Category{UserID: userID, Name: name})
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

func (env *testEnv) expense(t *testing.T, userID int64, categoryID *int64, cents int64, date core.Date) core.Expense {
	t.Helper()
	e, err := env.ledger.CreateExpense(context.Background(), core.Expense{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     core.Money{Cents: cents},
		Date:       date,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return e
}
