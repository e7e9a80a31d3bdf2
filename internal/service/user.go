package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/internal/store"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// UserService reads and edits profiles.
type UserService struct {
	users  UserStore
	logger *logger.Logger
}

// NewUserService creates a user service.
func NewUserService(users UserStore, log *logger.Logger) *UserService {
	return &UserService{users: users, logger: log.Named("user")}
}

// Profile returns the user's account.
func (s *UserService) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.users.Get(ctx, userID)
}

// UpdateProfile applies a validated profile update. Optional fields left
// empty keep their stored value.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != u.Email {
		other, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != u.ID:
			return nil, ErrEmailTaken
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	u.FirstName = strings.TrimSpace(req.FirstName)
	u.LastName = strings.TrimSpace(req.LastName)
	u.Email = email
	u.Education = strings.TrimSpace(req.Education)

	skills := make([]string, 0, len(req.Skills))
	for _, sk := range req.Skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			skills = append(skills, sk)
		}
	}
	u.Skills = skills

	setIf(&u.Phone, req.Phone)
	setIf(&u.Location, req.Location)
	setIf(&u.Bio, req.Bio)
	setIf(&u.Experience, req.Experience)
	setIf(&u.Address, req.Address)
	setIf(&u.Province, req.Province)
	setIf(&u.District, req.District)
	setIf(&u.City, req.City)

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Info("profile updated",
		zap.String("user_id", userID),
		zap.Int("profile_completion", u.ProfileCompletion()),
	)
	return u, nil
}

func setIf(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
