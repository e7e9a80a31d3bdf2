package store

import (
	"context"
	"slices"

	"gorm.io/gorm"

	"github.com/skillbridge/skillbridge-api/internal/model"
)

// ChatStore persists chat turns. Turns are append-only.
type ChatStore struct {
	db *gorm.DB
}

// NewChatStore creates a chat store.
func NewChatStore(db *gorm.DB) *ChatStore {
	return &ChatStore{db: db}
}

// Create inserts a turn.
func (s *ChatStore) Create(ctx context.Context, t *model.ChatTurn) error {
	if t.ID == "" {
		t.ID = newID()
	}
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

// History returns the newest limit turns of a user, oldest first. An empty
// sessionID matches every session.
func (s *ChatStore) History(ctx context.Context, userID, sessionID string, limit int) ([]model.ChatTurn, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if sessionID != "" {
		q = q.Where("session_id = ?", sessionID)
	}

	var out []model.ChatTurn
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// DeleteByUser removes every turn of a user.
func (s *ChatStore) DeleteByUser(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.ChatTurn{}).Error
}
