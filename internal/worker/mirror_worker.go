package worker

import (
	"context"
	"errors"
	"fmt"

	"duitku/internal/amqp"
	"duitku/internal/core"
	"duitku/internal/log"
	"duitku/internal/sheets"
	"duitku/internal/storage"
)

// RowAppender is the slice of the sheets client the worker needs.
type RowAppender interface {
	Append(ctx context.Context, row sheets.Row) (string, error)
}

// MirrorWorker copies ledger rows into the family spreadsheet. It reacts to
// AMQP messages and periodically sweeps for rows whose messages got lost.
type MirrorWorker struct {
	storage   *storage.SQLiteRepository
	appender  RowAppender
	batchSize int
	logger    *log.Logger
}

func NewMirrorWorker(storage *storage.SQLiteRepository, appender RowAppender, batchSize int, logger *log.Logger) *MirrorWorker {
	return &MirrorWorker{
		storage:   storage,
		appender:  appender,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMessage mirrors the ledger row a queue message points at. A row that
// no longer exists is treated as done so the message is not redelivered
// forever.
func (w *MirrorWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionMessage) error {
	switch msg.Kind {
	case core.KindExpense:
		return w.mirrorExpense(ctx, msg.ID)
	case core.KindIncome:
		return w.mirrorIncome(ctx, msg.ID)
	default:
		w.logger.WarnContext(ctx, "Dropping message with unknown kind",
			log.FieldKind, string(msg.Kind),
			"id", msg.ID)
		return nil
	}
}

func (w *MirrorWorker) mirrorExpense(ctx context.Context, id int64) error {
	expense, err := w.storage.ExpenseForMirror(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		w.logger.WarnContext(ctx, "Expense vanished before mirroring", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}

	ref, err := w.appender.Append(ctx, sheets.Row{
		Date:        expense.Date,
		Kind:        core.KindExpense,
		Description: expense.Description,
		Category:    expense.CategoryName,
		Amount:      expense.Amount,
		CreatedBy:   expense.CreatedBy,
	})
	if err != nil {
		return fmt.Errorf("append expense row: %w", err)
	}

	if err := w.storage.MarkExpenseSynced(ctx, id); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}

	w.logger.InfoContext(ctx, "Expense mirrored",
		"id", id,
		"sheet_ref", ref)
	return nil
}

func (w *MirrorWorker) mirrorIncome(ctx context.Context, id int64) error {
	income, err := w.storage.IncomeForMirror(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		w.logger.WarnContext(ctx, "Income vanished before mirroring", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load income: %w", err)
	}

	ref, err := w.appender.Append(ctx, sheets.Row{
		Date:        income.Date,
		Kind:        core.KindIncome,
		Description: income.Description,
		Category:    income.Source,
		Amount:      income.Amount,
		CreatedBy:   income.CreatedBy,
	})
	if err != nil {
		return fmt.Errorf("append income row: %w", err)
	}

	if err := w.storage.MarkIncomeSynced(ctx, id); err != nil {
		return fmt.Errorf("mark income synced: %w", err)
	}

	w.logger.InfoContext(ctx, "Income mirrored",
		"id", id,
		"sheet_ref", ref)
	return nil
}

// ProcessPending mirrors rows the queue never delivered. It is the backstop
// for lost messages, run on an interval by the worker binary.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	expenses, err := w.storage.UnsyncedExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("load unsynced expenses: %w", err)
	}
	incomes, err := w.storage.UnsyncedIncomes(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("load unsynced incomes: %w", err)
	}

	if len(expenses) == 0 && len(incomes) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "Processing pending mirror rows",
		"expenses", len(expenses),
		"incomes", len(incomes))

	for _, e := range expenses {
		if err := w.mirrorExpense(ctx, e.ID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to mirror pending expense",
				"id", e.ID,
				log.FieldError, err)
		}
	}
	for _, in := range incomes {
		if err := w.mirrorIncome(ctx, in.ID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to mirror pending income",
				"id", in.ID,
				log.FieldError, err)
		}
	}
	return nil
}
