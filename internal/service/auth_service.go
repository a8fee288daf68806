package service

import (
	"context"
	"time"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type authService struct {
	repo   *repository.Repository
	hasher PasswordHasher
	tokens TokenProvider
	tasks  TaskQueue
	cfg    AuthConfig
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(repo *repository.Repository, hasher PasswordHasher, tokens TokenProvider, tasks TaskQueue, cfg AuthConfig, log *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		tasks:  tasks,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if exists, err := s.repo.Users.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrUserAlreadyExists
	}
	if exists, err := s.repo.Users.ExistsByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    in.Email,
		Username: in.Username,
		Password: hash,
		Role:     models.RoleCustomer,
	}
	if err := s.repo.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		UserID:  user.ID,
		Phone:   in.Phone,
		Address: in.Address,
	}
	if err := s.repo.Users.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	user.Profile = profile

	if err := s.tasks.EnqueueWelcomeEmail(ctx, user.ID); err != nil {
		s.log.Warn("не удалось поставить задачу приветственного письма", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	s.log.Info("пользователь зарегистрирован", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *authService) issuePair(ctx context.Context, userID uuid.UUID, role models.Role) (*TokenPair, error) {
	access, exp, err := s.tokens.SignAccess(ctx, userID, string(role), s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}

	opaque, hash, refreshExp, err := s.tokens.NewRefresh(ctx, userID, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}

	// В хранилище только хеш, сам токен уходит клиенту
	if err := s.repo.Refresh.Create(ctx, &models.RefreshToken{
		UserID:    userID,
		Hash:      hash,
		ExpiresAt: refreshExp,
	}); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: opaque,
		ExpiresAt:    exp,
	}, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*TokenPair, error) {
	user, err := s.repo.Users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Compare(user.Password, in.Password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.log.Info("пользователь вошёл", zap.String("user_id", user.ID.String()))
	return pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	hash := HashRefreshToken(refreshToken)

	stored, err := s.repo.Refresh.GetActiveByHash(ctx, hash, s.now())
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrRefreshInvalid
	}

	if _, err := s.repo.Refresh.RevokeByHash(ctx, hash); err != nil {
		return nil, err
	}

	user, err := s.repo.Users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrRefreshInvalid
	}

	return s.issuePair(ctx, user.ID, user.Role)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	revoked, err := s.repo.Refresh.RevokeByHash(ctx, HashRefreshToken(refreshToken))
	if err != nil {
		return err
	}
	if !revoked {
		return ErrRefreshInvalid
	}
	return nil
}

func (s *authService) Me(ctx context.Context) (*models.User, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) UpdateMe(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	profile := &models.UserProfile{UserID: userID}
	if user.Profile != nil {
		*profile = *user.Profile
	}
	if in.Phone != nil {
		profile.Phone = *in.Phone
	}
	if in.Address != nil {
		profile.Address = *in.Address
	}

	if err := s.repo.Users.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.Users.List(ctx, limit, offset)
}
