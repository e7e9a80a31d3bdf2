package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillbridge/skillbridge-api/internal/model"
)

// HistoryStore persists dashboard snapshots of completed analyses.
type HistoryStore struct {
	db *gorm.DB
}

// NewHistoryStore creates a history store.
func NewHistoryStore(db *gorm.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Create inserts a history entry.
func (s *HistoryStore) Create(ctx context.Context, h *model.AnalysisHistory) error {
	if h.ID == "" {
		h.ID = newID()
	}
	if h.Status == "" {
		h.Status = model.HistoryActive
	}
	if h.AnalysisDate.IsZero() {
		h.AnalysisDate = time.Now().UTC()
	}
	return translate(s.db.WithContext(ctx).Create(h).Error)
}

// ActiveSince returns active entries dated on or after since, oldest first.
func (s *HistoryStore) ActiveSince(ctx context.Context, userID string, since time.Time) ([]model.AnalysisHistory, error) {
	var out []model.AnalysisHistory
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND analysis_date >= ?", userID, model.HistoryActive, since).
		Order("analysis_date ASC").
		Find(&out).Error
	return out, err
}

// Recent returns the newest active entries with their analyses.
func (s *HistoryStore) Recent(ctx context.Context, userID string, limit int) ([]model.AnalysisHistory, error) {
	var out []model.AnalysisHistory
	err := s.db.WithContext(ctx).
		Preload("Analysis").
		Where("user_id = ? AND status = ?", userID, model.HistoryActive).
		Order("analysis_date DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Active returns every active entry with its analysis, newest first.
func (s *HistoryStore) Active(ctx context.Context, userID string) ([]model.AnalysisHistory, error) {
	return s.Recent(ctx, userID, -1)
}

// Get loads an entry owned by userID with its analysis.
func (s *HistoryStore) Get(ctx context.Context, id, userID string) (*model.AnalysisHistory, error) {
	var h model.AnalysisHistory
	err := s.db.WithContext(ctx).
		Preload("Analysis").
		First(&h, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

// Delete removes an entry owned by userID.
func (s *HistoryStore) Delete(ctx context.Context, id, userID string) error {
	res := s.db.WithContext(ctx).Delete(&model.AnalysisHistory{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByUser removes every entry of a user.
func (s *HistoryStore) DeleteByUser(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.AnalysisHistory{}).Error
}
