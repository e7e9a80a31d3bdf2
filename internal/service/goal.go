package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// GoalStore persists learning goals.
type GoalStore interface {
	Create(ctx context.Context, g *model.LearningGoal) error
	Get(ctx context.Context, id, userID string) (*model.LearningGoal, error)
	Update(ctx context.Context, g *model.LearningGoal) error
	List(ctx context.Context, userID string) ([]model.LearningGoal, error)
}

// GoalService manages weekly learning goals.
type GoalService struct {
	goals  GoalStore
	logger *logger.Logger
}

// NewGoalService creates a goal service.
func NewGoalService(goals GoalStore, log *logger.Logger) *GoalService {
	return &GoalService{goals: goals, logger: log.Named("goals")}
}

// Create adds a goal for the user.
func (s *GoalService) Create(ctx context.Context, userID string, req model.LearningGoalRequest) (*model.LearningGoal, error) {
	g := &model.LearningGoal{UserID: userID}
	applyGoal(g, req)
	if err := s.goals.Create(ctx, g); err != nil {
		return nil, err
	}
	s.logger.Debug("goal created", zap.String("user_id", userID), zap.String("week", g.Week))
	return g, nil
}

// Update replaces the fields of a goal owned by the user.
func (s *GoalService) Update(ctx context.Context, userID, id string, req model.LearningGoalRequest) (*model.LearningGoal, error) {
	g, err := s.goals.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	applyGoal(g, req)
	if err := s.goals.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// List returns the user's goals ordered by week.
func (s *GoalService) List(ctx context.Context, userID string) ([]model.LearningGoal, error) {
	out, err := s.goals.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.LearningGoal{}
	}
	return out, nil
}

// applyGoal copies req onto g. A goal whose completed hours reach a
// positive target is marked completed unless a status was given.
func applyGoal(g *model.LearningGoal, req model.LearningGoalRequest) {
	g.Week = req.Week
	g.Skill = strings.TrimSpace(req.Skill)
	g.TargetHours = req.TargetHours
	g.CompletedHours = req.CompletedHours
	switch {
	case req.Status != "":
		g.Status = req.Status
	case g.TargetHours > 0 && g.CompletedHours >= g.TargetHours:
		g.Status = model.GoalCompleted
	case g.CompletedHours > 0:
		g.Status = model.GoalInProgress
	default:
		g.Status = model.GoalNotStarted
	}
}
