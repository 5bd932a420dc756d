package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-jobs/internal/domain/entity"
	"github.com/ignatzorin/freelance-jobs/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-jobs/internal/pkg/apperror"
)

// mockUserRepository реализует UserRepository для тестов.
type mockUserRepository struct {
	usersByEmail map[string]*entity.User
	usersByID    map[uuid.UUID]*entity.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		usersByEmail: make(map[string]*entity.User),
		usersByID:    make(map[uuid.UUID]*entity.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if _, ok := m.usersByEmail[user.Email]; ok {
		return apperror.New(apperror.ErrCodeConflict, "email занят")
	}
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (m *mockUserRepository) UpdateUserType(ctx context.Context, id uuid.UUID, userType valueobject.UserType) error {
	user, ok := m.usersByID[id]
	if !ok {
		return apperror.ErrUserNotFound
	}
	user.UserType = userType
	return nil
}

func (m *mockUserRepository) ListFreelancers(ctx context.Context, limit int) ([]*entity.User, error) {
	var result []*entity.User
	for _, u := range m.usersByID {
		if u.UserType == valueobject.UserTypeFreelancer {
			result = append(result, u)
		}
	}
	return result, nil
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newMockUserRepository()
	tokens := NewTokenManager("access-secret", time.Minute)
	svc := NewAuthService(repo, tokens)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		Email:    "Test@Example.com",
		Password: "password123",
		UserType: "freelancer",
		Skills:   []string{"Go", "PostgreSQL"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.User.ID)
	assert.Equal(t, "test@example.com", res.User.Email)
	assert.Equal(t, "test", res.User.DisplayName)
	assert.Equal(t, valueobject.UserTypeFreelancer, res.User.UserType)
	assert.NotEqual(t, "password123", res.User.PasswordHash)

	loginRes, err := svc.Login(ctx, LoginInput{Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NotEmpty(t, loginRes.Token.Token)

	userID, userType, err := tokens.ParseAccess(loginRes.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)
	assert.Equal(t, "freelancer", userType)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newMockUserRepository(), NewTokenManager("s", time.Minute))
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "dup@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "dup@example.com", Password: "password123"})
	assert.True(t, apperror.IsConflict(err))
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := NewAuthService(newMockUserRepository(), NewTokenManager("s", time.Minute))
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "bad-email", Password: "password123"})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "short"})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password123", UserType: "admin"})
	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc := NewAuthService(newMockUserRepository(), NewTokenManager("s", time.Minute))
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "user@example.com", Password: "password124"})
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.CodeOf(err))

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.Equal(t, apperror.ErrCodeUnauthorized, apperror.CodeOf(err))
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	user := &entity.User{ID: uuid.New(), UserType: valueobject.UserTypeClient}
	token, err := NewTokenManager("one", time.Minute).Issue(user)
	require.NoError(t, err)

	_, _, err = NewTokenManager("two", time.Minute).ParseAccess(token.Token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", -time.Minute)
	token, err := m.Issue(&entity.User{ID: uuid.New()})
	require.NoError(t, err)

	_, _, err = m.ParseAccess(token.Token)
	assert.Error(t, err)
}
