package repository

import (
	"context"
	"errors"
	"time"

	"ecommerce-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// Создаёт или обновляет профиль пользователя (1:1)
	UpsertProfile(ctx context.Context, p *models.UserProfile) error
	List(ctx context.Context, limit, offset int) ([]models.User, int64, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&u, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&cnt).Error
	return cnt > 0, err
}

func (r *userRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&cnt).Error
	return cnt > 0, err
}

func (r *userRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *userRepo) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"phone", "address"}),
		}).
		Create(p).Error
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var list []models.User
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Preload("Profile").Find(&list).Error
	return list, total, err
}

type RefreshRepo interface {
	Create(ctx context.Context, t *models.RefreshToken) error
	GetActiveByHash(ctx context.Context, hash string, now time.Time) (*models.RefreshToken, error)
	RevokeByHash(ctx context.Context, hash string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type refreshRepo struct{ db *gorm.DB }

func NewRefreshRepo(db *gorm.DB) RefreshRepo { return &refreshRepo{db: db} }

func (r *refreshRepo) Create(ctx context.Context, t *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *refreshRepo) GetActiveByHash(ctx context.Context, hash string, now time.Time) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := r.db.WithContext(ctx).
		First(&t, "hash = ? AND revoked = false AND expires_at > ?", hash, now).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *refreshRepo) RevokeByHash(ctx context.Context, hash string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("hash = ? AND revoked = false", hash).
		Update("revoked", true)
	return tx.RowsAffected > 0, tx.Error
}

func (r *refreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Exec("DELETE FROM refresh_tokens WHERE expires_at < ?", now)
	return tx.RowsAffected, tx.Error
}
