package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skillbridge/skillbridge-api/internal/model"
)

// ResumeStore persists uploaded resume metadata.
type ResumeStore struct {
	db *gorm.DB
}

// NewResumeStore creates a resume store.
func NewResumeStore(db *gorm.DB) *ResumeStore {
	return &ResumeStore{db: db}
}

// Create inserts a resume.
func (s *ResumeStore) Create(ctx context.Context, r *model.Resume) error {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.UploadDate.IsZero() {
		r.UploadDate = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = model.ResumeUploaded
	}
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

// Get loads a resume owned by userID.
func (s *ResumeStore) Get(ctx context.Context, id, userID string) (*model.Resume, error) {
	var r model.Resume
	err := s.db.WithContext(ctx).First(&r, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// ListByUser returns a user's resumes, newest first.
func (s *ResumeStore) ListByUser(ctx context.Context, userID string) ([]model.Resume, error) {
	var out []model.Resume
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("upload_date DESC").
		Find(&out).Error
	return out, err
}

// SetStatus moves a resume to status.
func (s *ResumeStore) SetStatus(ctx context.Context, id string, status model.ResumeStatus) error {
	res := s.db.WithContext(ctx).Model(&model.Resume{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a resume owned by userID.
func (s *ResumeStore) Delete(ctx context.Context, id, userID string) error {
	res := s.db.WithContext(ctx).Delete(&model.Resume{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByUser removes every resume of a user and returns them.
func (s *ResumeStore) DeleteByUser(ctx context.Context, userID string) ([]model.Resume, error) {
	var out []model.Resume
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Find(&out).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&model.Resume{}).Error
	})
	return out, err
}
