package services

import (
	"context"
	"errors"
	"testing"

	"duitku/internal/core"
)

func TestCreateExpenseValidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.user(t, "Budi", "budi@example.com", "")

	if _, err := env.ledger.CreateExpense(ctx, core.Expense{
		UserID: u.ID, Amount: core.Money{Cents: 0}, Date: core.NewDate(2025, 3, 9),
	}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}

	if _, err := env.ledger.CreateExpense(ctx, core.Expense{
		UserID: u.ID, Amount: core.Money{Cents: 100},
	}); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("missing date: got %v, want ErrInvalidDate", err)
	}
}

func TestFamilySeesButCannotModify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.user(t, "Budi", "budi@example.com", "Keluarga")
	member := env.user(t, "Sari", "sari@example.com", "Keluarga")

	e := env.expense(t, owner.ID, nil, 10000, core.NewDate(2025, 3, 9))

	// The member's list shows the owner's row.
	expenses, err := env.ledger.ListExpenses(ctx, member.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(expenses) != 1 || expenses[0].ID != e.ID {
		t.Fatalf("expenses = %+v", expenses)
	}

	// But writes stay owner-only.
	e.UserID = member.ID
	e.Description = "hijacked"
	if _, err := env.ledger.UpdateExpense(ctx, e); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-member update: got %v, want ErrNotFound", err)
	}
	if err := env.ledger.DeleteExpense(ctx, member.ID, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-member delete: got %v, want ErrNotFound", err)
	}
}

func TestUpdateExpenseReturnsFreshRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := env.user(t, "Budi", "budi@example.com", "")
	e := env.expense(t, u.ID, nil, 10000, core.NewDate(2025, 3, 9))

	e.Amount = core.Money{Cents: 12500}
	e.Description = "Makan siang"
	updated, err := env.ledger.UpdateExpense(ctx, e)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Amount.Cents != 12500 || updated.Description != "Makan siang" {
		t.Errorf("updated = %+v", updated)
	}
}

func TestIncomeRequiresSource(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "Budi", "budi@example.com", "")

	if _, err := env.ledger.CreateIncome(context.Background(), core.Income{
		UserID: u.ID, Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 3, 9),
	}); !errors.Is(err, core.ErrEmptySource) {
		t.Errorf("got %v, want ErrEmptySource", err)
	}
}
