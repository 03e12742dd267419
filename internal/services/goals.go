package services

import (
	"context"
	"fmt"

	"duitku/internal/core"
	"duitku/internal/log"
	"duitku/internal/storage"
)

// GoalService manages savings goals. Goals are strictly personal; family
// scope never applies.
type GoalService struct {
	storage *storage.SQLiteRepository
	logger  *log.Logger
}

func NewGoalService(storage *storage.SQLiteRepository, logger *log.Logger) *GoalService {
	return &GoalService{
		storage: storage,
		logger:  logger.WithComponent(log.ComponentLedger),
	}
}

func (s *GoalService) Create(ctx context.Context, g core.FinancialGoal) (core.FinancialGoal, error) {
	if err := g.Validate(); err != nil {
		return core.FinancialGoal{}, err
	}

	created, err := s.storage.CreateGoal(ctx, g)
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("create goal: %w", err)
	}

	s.logger.InfoContext(ctx, "Goal created",
		log.FieldUserID, created.UserID,
		"target_cents", created.Target.Cents)
	return created, nil
}

func (s *GoalService) List(ctx context.Context, userID int64) ([]core.FinancialGoal, error) {
	return s.storage.ListGoals(ctx, userID)
}

func (s *GoalService) Get(ctx context.Context, userID, id int64) (core.FinancialGoal, error) {
	return s.storage.GetGoal(ctx, userID, id)
}

func (s *GoalService) Update(ctx context.Context, g core.FinancialGoal) (core.FinancialGoal, error) {
	if err := g.Validate(); err != nil {
		return core.FinancialGoal{}, err
	}
	if err := s.storage.UpdateGoal(ctx, g); err != nil {
		return core.FinancialGoal{}, err
	}
	return s.storage.GetGoal(ctx, g.UserID, g.ID)
}

// AddSavings atomically adds to a goal's saved amount.
func (s *GoalService) AddSavings(ctx context.Context, userID, id int64, amount core.Money) (core.FinancialGoal, error) {
	if err := amount.Validate(); err != nil {
		return core.FinancialGoal{}, err
	}

	goal, err := s.storage.AddSavings(ctx, userID, id, amount)
	if err != nil {
		return core.FinancialGoal{}, err
	}

	s.logger.InfoContext(ctx, "Savings added to goal",
		log.FieldUserID, userID,
		"goal_id", id,
		log.FieldAmountCents, amount.Cents)
	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, id int64) error {
	return s.storage.DeleteGoal(ctx, userID, id)
}
