package service

import (
	"context"
	"time"

	"ecommerce-backend/internal/models"
)

type RegisterInput struct {
	Email    string
	Username string
	Password string
	Phone    string
	Address  string
}

type LoginInput struct {
	Username string
	Password string
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type UpdateProfileInput struct {
	Phone   *string
	Address *string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, in LoginInput) (*TokenPair, error)
	// Ротация: старый refresh отзывается, выдаётся новая пара
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error

	Me(ctx context.Context) (*models.User, error)
	UpdateMe(ctx context.Context, in UpdateProfileInput) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error)
}
