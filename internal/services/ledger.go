package services

import (
	"context"
	"fmt"

	"duitku/internal/amqp"
	"duitku/internal/core"
	"duitku/internal/log"
	"duitku/internal/storage"
)

// LedgerService orchestrates expense and income writes: validate, persist,
// publish a mirror message, drop stale report caches.
type LedgerService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	family     *FamilyService
	reports    *ReportsService
	logger     *log.Logger
}

func NewLedgerService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, family *FamilyService, reports *ReportsService, logger *log.Logger) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
		family:     family,
		reports:    reports,
		logger:     logger.WithComponent(log.ComponentLedger),
	}
}

func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense created",
		log.FieldUserID, created.UserID,
		log.FieldAmountCents, created.Amount.Cents,
		log.FieldDate, created.Date.String())

	s.publishMirror(ctx, core.KindExpense, created.ID)
	s.invalidateScope(ctx, created.UserID)
	return created, nil
}

func (s *LedgerService) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	return s.storage.GetExpense(ctx, userID, id)
}

func (s *LedgerService) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	scope, err := s.family.Scope(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.storage.ListExpenses(ctx, scope)
}

// UpdateExpense rewrites a row the caller owns. Family members can see each
// other's expenses but never modify them.
func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	if err := s.storage.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, err
	}

	s.publishMirror(ctx, core.KindExpense, e.ID)
	s.invalidateScope(ctx, e.UserID)
	return s.storage.GetExpense(ctx, e.UserID, e.ID)
}

func (s *LedgerService) DeleteExpense(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateScope(ctx, userID)
	return nil
}

func (s *LedgerService) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	created, err := s.storage.CreateIncome(ctx, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}

	s.logger.InfoContext(ctx, "Income created",
		log.FieldUserID, created.UserID,
		log.FieldAmountCents, created.Amount.Cents,
		log.FieldDate, created.Date.String())

	s.publishMirror(ctx, core.KindIncome, created.ID)
	s.invalidateScope(ctx, created.UserID)
	return created, nil
}

func (s *LedgerService) GetIncome(ctx context.Context, userID, id int64) (core.Income, error) {
	return s.storage.GetIncome(ctx, userID, id)
}

func (s *LedgerService) ListIncomes(ctx context.Context, userID int64) ([]core.Income, error) {
	scope, err := s.family.Scope(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.storage.ListIncomes(ctx, scope)
}

func (s *LedgerService) UpdateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	if err := s.storage.UpdateIncome(ctx, in); err != nil {
		return core.Income{}, err
	}

	s.publishMirror(ctx, core.KindIncome, in.ID)
	s.invalidateScope(ctx, in.UserID)
	return s.storage.GetIncome(ctx, in.UserID, in.ID)
}

func (s *LedgerService) DeleteIncome(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteIncome(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateScope(ctx, userID)
	return nil
}

// publishMirror queues the row for the spreadsheet mirror. Failures are
// logged, never surfaced: the write already committed locally.
func (s *LedgerService) publishMirror(ctx context.Context, kind core.TransactionKind, id int64) {
	if s.amqpClient == nil {
		return
	}
	msg := amqp.NewTransactionMessage(kind, id)
	if err := s.amqpClient.PublishTransaction(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish mirror message",
			log.FieldKind, string(kind),
			"id", id,
			log.FieldError, err)
	}
}

// invalidateScope drops cached report reads for everyone who can see this
// user's data.
func (s *LedgerService) invalidateScope(ctx context.Context, userID int64) {
	if s.reports == nil {
		return
	}
	scope, err := s.family.Scope(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to resolve scope for cache invalidation",
			log.FieldUserID, userID,
			log.FieldError, err)
		scope = []int64{userID}
	}
	s.reports.InvalidateUsers(scope)
}
