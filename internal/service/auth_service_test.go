package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecommerce-backend/internal/models"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockUserRepo
type MockUserRepo struct {
	CreateFunc           func(ctx context.Context, u *models.User) error
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsernameFunc    func(ctx context.Context, username string) (*models.User, error)
	ExistsByEmailFunc    func(ctx context.Context, email string) (bool, error)
	ExistsByUsernameFunc func(ctx context.Context, username string) (bool, error)
	UpdateFieldsFunc     func(ctx context.Context, id uuid.UUID, fields map[string]any) error
	UpsertProfileFunc    func(ctx context.Context, p *models.UserProfile) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]models.User, int64, error)
}

func (m *MockUserRepo) Create(ctx context.Context, u *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, nil
}

func (m *MockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *MockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.ExistsByUsernameFunc != nil {
		return m.ExistsByUsernameFunc(ctx, username)
	}
	return false, nil
}

func (m *MockUserRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if m.UpdateFieldsFunc != nil {
		return m.UpdateFieldsFunc(ctx, id, fields)
	}
	return nil
}

func (m *MockUserRepo) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	if m.UpsertProfileFunc != nil {
		return m.UpsertProfileFunc(ctx, p)
	}
	return nil
}

func (m *MockUserRepo) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, 0, nil
}

// MockRefreshRepo
type MockRefreshRepo struct {
	CreateFunc          func(ctx context.Context, t *models.RefreshToken) error
	GetActiveByHashFunc func(ctx context.Context, hash string, now time.Time) (*models.RefreshToken, error)
	RevokeByHashFunc    func(ctx context.Context, hash string) (bool, error)
	DeleteExpiredFunc   func(ctx context.Context, now time.Time) (int64, error)
}

func (m *MockRefreshRepo) Create(ctx context.Context, t *models.RefreshToken) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	return nil
}

func (m *MockRefreshRepo) GetActiveByHash(ctx context.Context, hash string, now time.Time) (*models.RefreshToken, error) {
	if m.GetActiveByHashFunc != nil {
		return m.GetActiveByHashFunc(ctx, hash, now)
	}
	return nil, nil
}

func (m *MockRefreshRepo) RevokeByHash(ctx context.Context, hash string) (bool, error) {
	if m.RevokeByHashFunc != nil {
		return m.RevokeByHashFunc(ctx, hash)
	}
	return false, nil
}

func (m *MockRefreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx, now)
	}
	return 0, nil
}

// FakeHasher — без настоящего bcrypt, хватит префикса
type FakeHasher struct{}

func (FakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (FakeHasher) Compare(hash, password string) bool   { return hash == "hashed:"+password }

// FakeTokens — детерминированный провайдер токенов
type FakeTokens struct {
	counter int
}

func (f *FakeTokens) SignAccess(ctx context.Context, sub uuid.UUID, role string, ttl time.Duration) (string, time.Time, error) {
	return "access-" + sub.String(), time.Now().Add(ttl), nil
}

func (f *FakeTokens) NewRefresh(ctx context.Context, sub uuid.UUID, ttl time.Duration) (string, string, time.Time, error) {
	f.counter++
	opaque := "refresh-" + uuid.NewString()
	return opaque, service.HashRefreshToken(opaque), time.Now().Add(ttl), nil
}

func (f *FakeTokens) ParseAndValidateAccess(ctx context.Context, token string) (*service.Claims, error) {
	return nil, errors.New("not implemented")
}

func newAuthService(users *MockUserRepo, refresh *MockRefreshRepo, queue *MockTaskQueue) service.AuthService {
	repos := &repository.Repository{Users: users, Refresh: refresh}
	return service.NewAuthService(repos, FakeHasher{}, &FakeTokens{}, queue, service.AuthConfig{
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
	}, zap.NewNop())
}

func TestAuthService_Register(t *testing.T) {
	userID := uuid.New()
	var created *models.User
	var profile *models.UserProfile

	users := &MockUserRepo{
		CreateFunc: func(ctx context.Context, u *models.User) error {
			u.ID = userID
			created = u
			return nil
		},
		UpsertProfileFunc: func(ctx context.Context, p *models.UserProfile) error {
			profile = p
			return nil
		},
	}
	queue := &MockTaskQueue{}
	svc := newAuthService(users, &MockRefreshRepo{}, queue)

	user, err := svc.Register(context.Background(), service.RegisterInput{
		Email:    "jane@example.com",
		Username: "jane",
		Password: "secret1",
		Phone:    "254700000001",
		Address:  "Nairobi",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if created == nil || created.Password != "hashed:secret1" {
		t.Fatalf("password must be stored hashed, got %+v", created)
	}
	if user.Role != models.RoleCustomer {
		t.Fatalf("new users are customers, got %s", user.Role)
	}
	if profile == nil || profile.UserID != userID || profile.Phone != "254700000001" {
		t.Fatalf("profile must be created, got %+v", profile)
	}
	if len(queue.WelcomeEmails) != 1 || queue.WelcomeEmails[0] != userID {
		t.Fatalf("welcome email must be enqueued, got %v", queue.WelcomeEmails)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	users := &MockUserRepo{
		ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) { return true, nil },
	}
	svc := newAuthService(users, &MockRefreshRepo{}, &MockTaskQueue{})

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Email:    "jane@example.com",
		Username: "jane",
		Password: "secret1",
	})
	if !errors.Is(err, service.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	userID := uuid.New()
	users := &MockUserRepo{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			if username != "jane" {
				return nil, nil
			}
			return &models.User{ID: userID, Username: "jane", Password: "hashed:secret1", Role: models.RoleCustomer}, nil
		},
	}

	var stored *models.RefreshToken
	refresh := &MockRefreshRepo{
		CreateFunc: func(ctx context.Context, tok *models.RefreshToken) error {
			stored = tok
			return nil
		},
	}
	svc := newAuthService(users, refresh, &MockTaskQueue{})

	pair, err := svc.Login(context.Background(), service.LoginInput{Username: "jane", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("token pair must be issued, got %+v", pair)
	}
	if stored == nil {
		t.Fatalf("refresh token must be persisted")
	}
	if stored.Hash == pair.RefreshToken {
		t.Fatalf("storage must keep the hash, not the token itself")
	}
	if stored.Hash != service.HashRefreshToken(pair.RefreshToken) {
		t.Fatalf("stored hash must match the issued token")
	}

	if _, err := svc.Login(context.Background(), service.LoginInput{Username: "jane", Password: "wrong"}); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), service.LoginInput{Username: "nobody", Password: "secret1"}); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestAuthService_Refresh_Rotation(t *testing.T) {
	userID := uuid.New()
	oldOpaque := "refresh-old"
	oldHash := service.HashRefreshToken(oldOpaque)

	users := &MockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{ID: userID, Role: models.RoleCustomer}, nil
		},
	}

	var revoked []string
	refresh := &MockRefreshRepo{
		GetActiveByHashFunc: func(ctx context.Context, hash string, now time.Time) (*models.RefreshToken, error) {
			if hash == oldHash {
				return &models.RefreshToken{UserID: userID, Hash: hash, ExpiresAt: now.Add(time.Hour)}, nil
			}
			return nil, nil
		},
		RevokeByHashFunc: func(ctx context.Context, hash string) (bool, error) {
			revoked = append(revoked, hash)
			return true, nil
		},
	}
	svc := newAuthService(users, refresh, &MockTaskQueue{})

	pair, err := svc.Refresh(context.Background(), oldOpaque)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if pair.RefreshToken == oldOpaque {
		t.Fatalf("rotation must issue a new refresh token")
	}
	if len(revoked) != 1 || revoked[0] != oldHash {
		t.Fatalf("old token must be revoked, got %v", revoked)
	}

	if _, err := svc.Refresh(context.Background(), "refresh-unknown"); !errors.Is(err, service.ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}
