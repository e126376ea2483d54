package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"usina-backend/internal/cache"
	"usina-backend/internal/models"
	"usina-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// GoalService manages the distribution goal registry. Every write invalidates
// the cached active-goal list so the allocator sees changes promptly.
type GoalService struct {
	goals      *repositories.DistributionGoalRepository
	franchises *repositories.FranchiseRepository
}

func NewGoalService(goals *repositories.DistributionGoalRepository, franchises *repositories.FranchiseRepository) *GoalService {
	return &GoalService{goals: goals, franchises: franchises}
}

func (s *GoalService) Create(ctx context.Context, req *models.CreateDistributionGoalRequest) (*models.DistributionGoal, error) {
	if req.DailyGoal < 1 {
		return nil, fmt.Errorf("%w: daily_goal must be at least 1", ErrValidation)
	}

	franchise, err := s.franchises.Get(ctx, req.FranchiseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: franchise %d", ErrNotFound, req.FranchiseID)
		}
		return nil, err
	}

	goal := &models.DistributionGoal{
		FranchiseID: req.FranchiseID,
		DailyGoal:   req.DailyGoal,
		Priority:    req.Priority,
		IsActive:    true,
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		if errors.Is(err, repositories.ErrDuplicateActiveGoal) {
			return nil, ErrDuplicateGoal
		}
		return nil, err
	}
	goal.FranchiseName = franchise.Name

	cache.InvalidateActiveGoals(ctx)
	return goal, nil
}

func (s *GoalService) Get(ctx context.Context, id int) (*models.DistributionGoal, error) {
	goal, err := s.goals.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: goal %d", ErrNotFound, id)
	}
	return goal, err
}

func (s *GoalService) List(ctx context.Context) ([]*models.DistributionGoal, error) {
	return s.goals.List(ctx)
}

// ListActive serves the dashboard's hot path through the short-TTL cache;
// the allocator itself always reads the repository directly.
func (s *GoalService) ListActive(ctx context.Context) ([]*models.DistributionGoal, error) {
	if data, ok := cache.GetActiveGoals(ctx); ok {
		var goals []*models.DistributionGoal
		if err := json.Unmarshal(data, &goals); err == nil {
			return goals, nil
		}
	}

	goals, err := s.goals.ListActiveOrdered(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(goals); err == nil {
		cache.SetActiveGoals(ctx, data)
	}
	return goals, nil
}

func (s *GoalService) Update(ctx context.Context, id int, req *models.UpdateDistributionGoalRequest) (*models.DistributionGoal, error) {
	goal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DailyGoal < 1 {
		return nil, fmt.Errorf("%w: daily_goal must be at least 1", ErrValidation)
	}
	goal.DailyGoal = req.DailyGoal
	if req.Priority > 0 {
		goal.Priority = req.Priority
	}
	if req.IsActive != nil {
		goal.IsActive = *req.IsActive
	}

	if err := s.goals.Update(ctx, goal); err != nil {
		if errors.Is(err, repositories.ErrDuplicateActiveGoal) {
			return nil, ErrDuplicateGoal
		}
		return nil, err
	}

	cache.InvalidateActiveGoals(ctx)
	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, id int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.goals.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateActiveGoals(ctx)
	return nil
}

// Reorder moves a goal one step up or down in priority
func (s *GoalService) Reorder(ctx context.Context, id int, direction string) error {
	if direction != "up" && direction != "down" {
		return fmt.Errorf("%w: direction must be 'up' or 'down'", ErrValidation)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.goals.SwapPriority(ctx, id, direction); err != nil {
		return err
	}
	cache.InvalidateActiveGoals(ctx)
	return nil
}
