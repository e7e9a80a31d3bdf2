package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillbridge/skillbridge-api/internal/model"
)

// AnalysisStore persists analysis runs.
type AnalysisStore struct {
	db *gorm.DB
}

// NewAnalysisStore creates an analysis store.
func NewAnalysisStore(db *gorm.DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

// Create inserts an analysis.
func (s *AnalysisStore) Create(ctx context.Context, a *model.Analysis) error {
	if a.ID == "" {
		a.ID = newID()
	}
	if a.Status == "" {
		a.Status = model.AnalysisPending
	}
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

// Update saves every field of a.
func (s *AnalysisStore) Update(ctx context.Context, a *model.Analysis) error {
	return translate(s.db.WithContext(ctx).Save(a).Error)
}

// Get loads an analysis owned by userID.
func (s *AnalysisStore) Get(ctx context.Context, id, userID string) (*model.Analysis, error) {
	var a model.Analysis
	err := s.db.WithContext(ctx).First(&a, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// LatestForResume returns the newest analysis of a resume in any status.
func (s *AnalysisStore) LatestForResume(ctx context.Context, resumeID, userID string) (*model.Analysis, error) {
	var a model.Analysis
	err := s.db.WithContext(ctx).
		Where("resume_id = ? AND user_id = ?", resumeID, userID).
		Order("created_at DESC").
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// LatestCompletedForResume returns the newest completed analysis of a resume.
func (s *AnalysisStore) LatestCompletedForResume(ctx context.Context, resumeID, userID string) (*model.Analysis, error) {
	return s.latestCompleted(ctx, "resume_id = ? AND user_id = ?", resumeID, userID)
}

// CompletedSince returns a completed analysis of the resume created after since.
func (s *AnalysisStore) CompletedSince(ctx context.Context, resumeID, userID string, since time.Time) (*model.Analysis, error) {
	return s.latestCompleted(ctx, "resume_id = ? AND user_id = ? AND created_at >= ?", resumeID, userID, since)
}

// LatestCompleted returns the user's newest completed analysis.
func (s *AnalysisStore) LatestCompleted(ctx context.Context, userID string) (*model.Analysis, error) {
	return s.latestCompleted(ctx, "user_id = ?", userID)
}

func (s *AnalysisStore) latestCompleted(ctx context.Context, query string, args ...any) (*model.Analysis, error) {
	var a model.Analysis
	err := s.db.WithContext(ctx).
		Where(query, args...).
		Where("status = ?", model.AnalysisCompleted).
		Order("created_at DESC").
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// DeleteByResume removes every analysis of a resume.
func (s *AnalysisStore) DeleteByResume(ctx context.Context, resumeID string) error {
	return s.db.WithContext(ctx).Where("resume_id = ?", resumeID).Delete(&model.Analysis{}).Error
}

// DeleteByUser removes every analysis of a user.
func (s *AnalysisStore) DeleteByUser(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Analysis{}).Error
}
