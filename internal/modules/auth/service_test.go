package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodgram/internal/domain"
	"foodgram/internal/pkg/apperr"
	jwtsvc "foodgram/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, t *domain.AuthToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTokenRepo) DeleteByHash(ctx context.Context, hash string) error {
	args := m.Called(ctx, hash)
	return args.Error(0)
}

func newUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &domain.User{ID: 7, Email: "cook@example.com", Username: "cook", PasswordHash: hash}
}

func TestLoginStoresTokenHash(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepo)
	tokens := new(mockTokenRepo)
	jwt := jwtsvc.New("secret", time.Hour)

	users.On("GetByEmail", ctx, "cook@example.com").Return(newUser(t, "s3cret-pass"), nil)

	var stored *domain.AuthToken
	tokens.On("Create", ctx, mock.AnythingOfType("*domain.AuthToken")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.AuthToken) }).
		Return(nil)

	svc := NewService(users, tokens, jwt, time.Hour)
	token, err := svc.Login(ctx, LoginRequest{Email: "Cook@Example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := jwt.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)

	require.NotNil(t, stored)
	assert.Equal(t, int64(7), stored.UserID)
	assert.Equal(t, jwtsvc.HashToken(token), stored.TokenHash)
	assert.WithinDuration(t, time.Now().Add(time.Hour), stored.ExpiresAt, time.Minute)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepo)
	tokens := new(mockTokenRepo)

	users.On("GetByEmail", ctx, "cook@example.com").Return(newUser(t, "s3cret-pass"), nil)
	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	svc := NewService(users, tokens, jwtsvc.New("secret", time.Hour), time.Hour)

	_, err := svc.Login(ctx, LoginRequest{Email: "cook@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, errInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, errInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "not-an-email", Password: "x"})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginStorageFailure(t *testing.T) {
	ctx := context.Background()
	users := new(mockUserRepo)
	users.On("GetByEmail", ctx, "cook@example.com").Return(nil, errors.New("connection reset"))

	svc := NewService(users, new(mockTokenRepo), jwtsvc.New("secret", time.Hour), time.Hour)
	_, err := svc.Login(ctx, LoginRequest{Email: "cook@example.com", Password: "x"})
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}

func TestLogoutDeletesByHash(t *testing.T) {
	ctx := context.Background()
	tokens := new(mockTokenRepo)
	tokens.On("DeleteByHash", ctx, jwtsvc.HashToken("raw-token")).Return(nil).Once()

	svc := NewService(new(mockUserRepo), tokens, jwtsvc.New("secret", time.Hour), time.Hour)
	require.NoError(t, svc.Logout(ctx, "raw-token"))
	tokens.AssertExpectations(t)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
}
