package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillbridge/skillbridge-api/internal/model"
)

// WeeklyGoals sums a user's learning goals for one ISO week.
type WeeklyGoals struct {
	Week           string
	TargetHours    float64
	CompletedHours float64
	CompletedGoals int64
	TotalGoals     int64
}

// GoalStore persists weekly learning goals.
type GoalStore struct {
	db *gorm.DB
}

// NewGoalStore creates a goal store.
func NewGoalStore(db *gorm.DB) *GoalStore {
	return &GoalStore{db: db}
}

// Create inserts a goal.
func (s *GoalStore) Create(ctx context.Context, g *model.LearningGoal) error {
	if g.ID == "" {
		g.ID = newID()
	}
	if g.Status == "" {
		g.Status = model.GoalNotStarted
	}
	return translate(s.db.WithContext(ctx).Create(g).Error)
}

// Get loads a goal owned by userID.
func (s *GoalStore) Get(ctx context.Context, id, userID string) (*model.LearningGoal, error) {
	var g model.LearningGoal
	if err := s.db.WithContext(ctx).First(&g, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

// Update saves every field of g.
func (s *GoalStore) Update(ctx context.Context, g *model.LearningGoal) error {
	return translate(s.db.WithContext(ctx).Save(g).Error)
}

// List returns a user's goals ordered by week.
func (s *GoalStore) List(ctx context.Context, userID string) ([]model.LearningGoal, error) {
	var out []model.LearningGoal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("week ASC, created_at ASC").
		Find(&out).Error
	return out, err
}

// WeeklyProgress groups goals created since the given time by week.
func (s *GoalStore) WeeklyProgress(ctx context.Context, userID string, since time.Time) ([]WeeklyGoals, error) {
	var rows []WeeklyGoals
	err := s.db.WithContext(ctx).
		Model(&model.LearningGoal{}).
		Select(
			"week, SUM(target_hours) AS target_hours, SUM(completed_hours) AS completed_hours, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed_goals, COUNT(*) AS total_goals",
			model.GoalCompleted,
		).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Group("week").
		Order("week ASC").
		Scan(&rows).Error
	return rows, err
}

// DeleteByUser removes every goal of a user.
func (s *GoalStore) DeleteByUser(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.LearningGoal{}).Error
}
