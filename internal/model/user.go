// Package model defines the records and wire types of the SkillBridge API.
package model

import (
	"time"

	"gorm.io/datatypes"
)

// Role is an account role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserSettings are regional display settings stored with the account.
type UserSettings struct {
	Currency   string `json:"currency"`
	DateFormat string `json:"dateFormat"`
	Timezone   string `json:"timezone"`
}

// User is a registered account.
type User struct {
	ID           string                      `json:"id" gorm:"primaryKey;size:36"`
	Name         string                      `json:"name" gorm:"size:50;not null"`
	Email        string                      `json:"email" gorm:"size:254;uniqueIndex;not null"`
	PasswordHash string                      `json:"-" gorm:"not null"`
	Role         Role                        `json:"role" gorm:"size:16;default:user"`
	FirstName    string                      `json:"firstName,omitempty" gorm:"size:50"`
	LastName     string                      `json:"lastName,omitempty" gorm:"size:50"`
	Phone        string                      `json:"phone" gorm:"size:20"`
	Address      string                      `json:"address" gorm:"size:200"`
	City         string                      `json:"city" gorm:"size:50"`
	District     string                      `json:"district" gorm:"size:50"`
	Province     string                      `json:"province" gorm:"size:16"`
	Country      string                      `json:"country" gorm:"size:64"`
	Location     string                      `json:"location,omitempty" gorm:"size:100"`
	Bio          string                      `json:"bio,omitempty" gorm:"size:500"`
	Skills       datatypes.JSONSlice[string] `json:"skills"`
	Experience   string                      `json:"experience,omitempty" gorm:"size:32"`
	Education    string                      `json:"education,omitempty" gorm:"size:200"`
	Settings     UserSettings                `json:"preferences" gorm:"serializer:json"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

// ProfileCompletion is the share of optional profile fields the user filled, 0-100.
func (u *User) ProfileCompletion() int {
	fields := []bool{
		u.Name != "",
		u.Email != "",
		u.Phone != "",
		u.Address != "",
		u.City != "",
		u.District != "",
		u.Province != "",
		u.FirstName != "",
		u.LastName != "",
		u.Location != "",
		u.Bio != "",
		len(u.Skills) > 0,
		u.Experience != "",
		u.Education != "",
	}
	filled := 0
	for _, ok := range fields {
		if ok {
			filled++
		}
	}
	return filled * 100 / len(fields)
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password"`
	Role     Role   `json:"role" validate:"omitempty,oneof=user admin"`
	Phone    string `json:"phone" validate:"required,npphone"`
	Address  string `json:"address" validate:"required,max=200"`
	City     string `json:"city" validate:"required,max=50"`
	District string `json:"district" validate:"required,max=50"`
	Province string `json:"province" validate:"omitempty,oneof=province1 province2 province3 province4 province5 province6 province7"`
	Country  string `json:"country" validate:"omitempty,max=64"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the body of PUT /api/auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,password"`
}

// DeleteAccountRequest is the body of DELETE /api/auth/delete-account.
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the account and a bearer token.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UpdateProfileRequest is the body of PUT /api/user/update-profile.
type UpdateProfileRequest struct {
	FirstName  string   `json:"firstName" validate:"required,min=2,max=50"`
	LastName   string   `json:"lastName" validate:"required,min=2,max=50"`
	Email      string   `json:"email" validate:"required,email"`
	Phone      string   `json:"phone" validate:"omitempty,npphone"`
	Location   string   `json:"location" validate:"max=100"`
	Bio        string   `json:"bio" validate:"max=500"`
	Skills     []string `json:"skills" validate:"required,min=1,dive,required"`
	Experience string   `json:"experience" validate:"omitempty,experience"`
	Education  string   `json:"education" validate:"required,max=200"`
	Address    string   `json:"address" validate:"max=200"`
	Province   string   `json:"province" validate:"omitempty,oneof=province1 province2 province3 province4 province5 province6 province7"`
	District   string   `json:"district" validate:"max=50"`
	City       string   `json:"city" validate:"max=50"`
}
