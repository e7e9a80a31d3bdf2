package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/cache"
	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/internal/store"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// DefaultUpdateAttempts bounds the reload-and-reapply loop of Update.
const DefaultUpdateAttempts = 3

// ContextStore persists user contexts with versioned writes.
type ContextStore interface {
	GetOrCreate(ctx context.Context, userID string) (*model.UserContext, error)
	Save(ctx context.Context, uc *model.UserContext) error
	Delete(ctx context.Context, userID string) error
}

// ContextCacheStats describes the context cache.
type ContextCacheStats struct {
	ContextCacheSize int `json:"contextCacheSize"`
}

// ContextService loads and updates per-user personalization state.
type ContextService struct {
	store    ContextStore
	cache    cache.Cache[string, *model.UserContext]
	attempts int
	logger   *logger.Logger
}

// NewContextService creates a context service. c may be nil to disable
// caching.
func NewContextService(s ContextStore, c cache.Cache[string, *model.UserContext], log *logger.Logger) *ContextService {
	return &ContextService{
		store:    s,
		cache:    c,
		attempts: DefaultUpdateAttempts,
		logger:   log.Named("context"),
	}
}

// Get returns a copy of the user's context, creating it on first use.
func (s *ContextService) Get(ctx context.Context, userID string) (*model.UserContext, error) {
	return s.load(ctx, userID, true)
}

func (s *ContextService) load(ctx context.Context, userID string, useCache bool) (*model.UserContext, error) {
	if useCache && s.cache != nil {
		if uc, ok := s.cache.Get(ctx, userID); ok && uc != nil {
			return uc.Clone(), nil
		}
	}
	uc, err := s.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load context: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, userID, uc.Clone())
	}
	return uc, nil
}

// Update applies fn to the user's context and saves it. When another
// writer saved first, the context is reloaded and fn applied again, up to
// the attempt bound. fn must be safe to call more than once.
func (s *ContextService) Update(ctx context.Context, userID string, fn func(uc *model.UserContext) error) (*model.UserContext, error) {
	for attempt := 1; ; attempt++ {
		uc, err := s.load(ctx, userID, attempt == 1)
		if err != nil {
			return nil, err
		}
		if err := fn(uc); err != nil {
			return nil, err
		}

		err = s.store.Save(ctx, uc)
		if err == nil {
			if s.cache != nil {
				s.cache.Set(ctx, userID, uc.Clone())
			}
			return uc, nil
		}

		if s.cache != nil {
			s.cache.Delete(ctx, userID)
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, fmt.Errorf("save context: %w", err)
		}
		if attempt >= s.attempts {
			return nil, fmt.Errorf("save context after %d attempts: %w", attempt, err)
		}
		s.logger.Debug("context version conflict, retrying",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt),
		)
	}
}

// Preferences returns the user's stored preferences.
func (s *ContextService) Preferences(ctx context.Context, userID string) (model.Preferences, error) {
	uc, err := s.Get(ctx, userID)
	if err != nil {
		return model.Preferences{}, err
	}
	return uc.Preferences, nil
}

// UpdatePreferences merges upd into the user's preferences. Remembered
// replies are dropped because they were shaped by the old preferences.
func (s *ContextService) UpdatePreferences(ctx context.Context, userID string, upd model.PreferencesUpdate) (model.Preferences, error) {
	uc, err := s.Update(ctx, userID, func(uc *model.UserContext) error {
		upd.Apply(&uc.Preferences)
		uc.ForgetReplies()
		return nil
	})
	if err != nil {
		return model.Preferences{}, err
	}
	s.logger.Info("preferences updated", zap.String("user_id", userID))
	return uc.Preferences, nil
}

// RecordFeedback folds a 1-5 satisfaction rating into the user's running
// average.
func (s *ContextService) RecordFeedback(ctx context.Context, userID string, rating int) (model.Performance, error) {
	if rating < 1 || rating > 5 {
		return model.Performance{}, fmt.Errorf("rating %d out of range", rating)
	}
	uc, err := s.Update(ctx, userID, func(uc *model.UserContext) error {
		uc.RecordSatisfaction(rating)
		return nil
	})
	if err != nil {
		return model.Performance{}, err
	}
	return uc.Performance, nil
}

// Insights summarizes the user's context.
func (s *ContextService) Insights(ctx context.Context, userID string) (model.Insights, error) {
	uc, err := s.Get(ctx, userID)
	if err != nil {
		return model.Insights{}, err
	}
	return uc.Insights(), nil
}

// Delete removes the user's context.
func (s *ContextService) Delete(ctx context.Context, userID string) error {
	if s.cache != nil {
		s.cache.Delete(ctx, userID)
	}
	return s.store.Delete(ctx, userID)
}

// CacheStats reports the size of the context cache.
func (s *ContextService) CacheStats(ctx context.Context) ContextCacheStats {
	if s.cache == nil {
		return ContextCacheStats{}
	}
	return ContextCacheStats{ContextCacheSize: s.cache.Len(ctx)}
}

// ClearCache drops every cached context.
func (s *ContextService) ClearCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Purge(ctx)
	}
}
