package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/internal/store"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

// Account defaults for new registrations.
const (
	DefaultProvince = "province3"
	DefaultCountry  = "Nepal"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

// TokenIssuer signs bearer tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Cascade removes one kind of user-owned data on account deletion.
type Cascade struct {
	Name   string
	Delete func(ctx context.Context, userID string) error
}

// AuthService registers and authenticates accounts.
type AuthService struct {
	users    UserStore
	tokens   TokenIssuer
	cascades []Cascade
	hashCost int
	logger   *logger.Logger
}

// NewAuthService creates an auth service. cascades run in order when an
// account is deleted.
func NewAuthService(users UserStore, tokens TokenIssuer, cascades []Cascade, log *logger.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		cascades: cascades,
		hashCost: bcrypt.DefaultCost,
		logger:   log.Named("auth"),
	}
}

// Register creates an account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("look up email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		City:         strings.TrimSpace(req.City),
		District:     strings.TrimSpace(req.District),
		Province:     req.Province,
		Country:      req.Country,
		Skills:       []string{},
		Settings: model.UserSettings{
			Currency:   "NPR",
			DateFormat: "DD-MM-YYYY",
			Timezone:   "Asia/Kathmandu",
		},
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if u.Province == "" {
		u.Province = DefaultProvince
	}
	if u.Country == "" {
		u.Country = DefaultCountry
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID))
	return s.respond(u)
}

// Login checks credentials and signs a token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !checkPassword(u.PasswordHash, req.Password) {
		s.logger.Info("login rejected", zap.String("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}
	return s.respond(u)
}

// Me returns the account of userID.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	return s.users.Get(ctx, userID)
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req model.ChangePasswordRequest) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(u.PasswordHash, req.CurrentPassword) {
		return ErrWrongPassword
	}
	if checkPassword(u.PasswordHash, req.NewPassword) {
		return ErrSamePassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}

// DeleteAccount removes the account and, best-effort, everything it owns.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string, req model.DeleteAccountRequest) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(u.PasswordHash, req.Password) {
		return ErrWrongPassword
	}

	log := s.logger.With(zap.String("user_id", userID))
	for _, c := range s.cascades {
		if err := c.Delete(ctx, userID); err != nil {
			log.Warn("failed to delete user data", zap.String("data", c.Name), zap.Error(err))
		}
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	log.Info("account deleted")
	return nil
}

func (s *AuthService) respond(u *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &model.AuthResponse{User: u, Token: token}, nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
