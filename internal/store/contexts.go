package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillbridge/skillbridge-api/internal/model"
)

// ContextStore persists per-user chat context with versioned writes.
type ContextStore struct {
	db *gorm.DB
}

// NewContextStore creates a context store.
func NewContextStore(db *gorm.DB) *ContextStore {
	return &ContextStore{db: db}
}

// Get loads the context of a user.
func (s *ContextStore) Get(ctx context.Context, userID string) (*model.UserContext, error) {
	var uc model.UserContext
	if err := s.db.WithContext(ctx).First(&uc, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &uc, nil
}

// GetOrCreate loads the context of a user, inserting a default one first
// when none exists. Concurrent first calls converge on one row.
func (s *ContextStore) GetOrCreate(ctx context.Context, userID string) (*model.UserContext, error) {
	uc, err := s.Get(ctx, userID)
	if err == nil {
		return uc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	fresh := model.NewUserContext(userID)
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(fresh).Error
	if err != nil {
		return nil, translate(err)
	}
	return s.Get(ctx, userID)
}

// Save writes uc only if the stored version still equals uc.Version, then
// advances uc.Version. A lost race returns ErrVersionConflict.
func (s *ContextStore) Save(ctx context.Context, uc *model.UserContext) error {
	next := *uc
	next.Version = uc.Version + 1
	next.UpdatedAt = time.Now().UTC()

	res := s.db.WithContext(ctx).
		Model(&model.UserContext{}).
		Where("user_id = ? AND version = ?", uc.UserID, uc.Version).
		Select("preferences", "conversation_history", "context_memory", "performance", "response_cache", "version", "updated_at").
		Updates(&next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	uc.Version = next.Version
	uc.UpdatedAt = next.UpdatedAt
	return nil
}

// Delete removes the context of a user.
func (s *ContextStore) Delete(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserContext{}).Error
}
