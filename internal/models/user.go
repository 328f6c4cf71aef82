package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	FirstName       string    `db:"first_name" json:"firstName"`
	LastName        string    `db:"last_name" json:"lastName"`
	Bio             string    `db:"bio" json:"bio"`
	City            string    `db:"city" json:"city"`
	ProfileImageURL string    `db:"profile_image_url" json:"profileImageUrl"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

type SignupInput struct {
	Email     string `json:"email" binding:"required" validate:"required,email,max=255"`
	Password  string `json:"password" binding:"required" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	City      string `json:"city" validate:"max=100"`
	Bio       string `json:"bio" validate:"max=1000"`
}

// ProfileUpdate carries a partial profile update; nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName       *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName        *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Bio             *string `json:"bio" validate:"omitempty,max=1000"`
	City            *string `json:"city" validate:"omitempty,max=100"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitempty,url,max=2048"`
}

func (u *ProfileUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Bio == nil && u.City == nil && u.ProfileImageURL == nil
}

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, update *ProfileUpdate) (*User, error)
	// DiscoverUsers pages through users who are neither userID nor one of its friends.
	DiscoverUsers(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*User, int, error)
	// SearchUsers matches term against names and email, excluding userID and its friends.
	SearchUsers(ctx context.Context, userID uuid.UUID, term string, limit int) ([]*User, error)
}
