package service

import (
	"context"
	"testing"

	"mrtrack/internal/model"
	"mrtrack/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userFixture struct {
	users  *fakeUserRepo
	tokens *fakeRefreshTokenRepo
	svc    UserService
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		users:  &fakeUserRepo{},
		tokens: &fakeRefreshTokenRepo{},
	}
	f.svc = NewUserService(f.users, f.tokens, nil)
	return f
}

func (f *userFixture) seedUser(t *testing.T, email, password, role, status string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{
		Name:     "Test User",
		Email:    email,
		Password: string(hash),
		Role:     role,
		Status:   status,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func TestRegisterStartsPendingMR(t *testing.T) {
	f := newUserFixture(t)

	res, err := f.svc.Register(context.Background(), RegisterRequest{
		Name: "Asha Rao", Email: "asha@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleMR, res.Role)
	assert.Equal(t, model.UserStatusPending, res.Status)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newUserFixture(t)
	f.seedUser(t, "asha@example.com", "secret1", model.RoleMR, model.UserStatusActive)

	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Name: "Asha Rao", Email: "asha@example.com", Password: "secret1",
	})
	assert.True(t, apperror.IsConflict(err))
}

func TestCreateUserIsActiveImmediately(t *testing.T) {
	f := newUserFixture(t)

	res, err := f.svc.CreateUser(context.Background(), CreateUserRequest{
		Name: "Admin Two", Email: "admin2@example.com", Password: "secret1", Role: model.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, res.Role)
	assert.Equal(t, model.UserStatusActive, res.Status)

	_, err = f.svc.CreateUser(context.Background(), CreateUserRequest{
		Name: "Bad", Email: "bad@example.com", Password: "secret1", Role: "superuser",
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestLoginIssuesTokenPair(t *testing.T) {
	f := newUserFixture(t)
	f.seedUser(t, "asha@example.com", "secret1", model.RoleMR, model.UserStatusActive)

	res, err := f.svc.Login(context.Background(), LoginRequest{Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Len(t, f.tokens.tokens, 1)
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	f := newUserFixture(t)
	f.seedUser(t, "asha@example.com", "secret1", model.RoleMR, model.UserStatusActive)

	_, errWrongPassword := f.svc.Login(context.Background(), LoginRequest{Email: "asha@example.com", Password: "nope"})
	_, errUnknownEmail := f.svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "secret1"})

	assert.ErrorIs(t, errWrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknownEmail, ErrInvalidCredentials)
}

func TestLoginGatesNonActiveStatuses(t *testing.T) {
	f := newUserFixture(t)
	f.seedUser(t, "pending@example.com", "secret1", model.RoleMR, model.UserStatusPending)
	f.seedUser(t, "inactive@example.com", "secret1", model.RoleMR, model.UserStatusInactive)
	f.seedUser(t, "rejected@example.com", "secret1", model.RoleMR, model.UserStatusRejected)

	_, err := f.svc.Login(context.Background(), LoginRequest{Email: "pending@example.com", Password: "secret1"})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.Login(context.Background(), LoginRequest{Email: "inactive@example.com", Password: "secret1"})
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "deactivated")

	// Each refused status carries its own message, and none issues a token
	_, err = f.svc.Login(context.Background(), LoginRequest{Email: "rejected@example.com", Password: "secret1"})
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "rejected")
	assert.Empty(t, f.tokens.tokens)
}

func TestRefreshTokenRotates(t *testing.T) {
	f := newUserFixture(t)
	f.seedUser(t, "asha@example.com", "secret1", model.RoleMR, model.UserStatusActive)
	ctx := context.Background()

	first, err := f.svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	second, err := f.svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Single use: the consumed token cannot be replayed
	_, err = f.svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: first.RefreshToken})
	assert.True(t, apperror.IsNotFound(err))
}

func TestRefreshTokenRejectsDeactivatedAccount(t *testing.T) {
	f := newUserFixture(t)
	user := f.seedUser(t, "asha@example.com", "secret1", model.RoleMR, model.UserStatusActive)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	user.Status = model.UserStatusInactive

	_, err = f.svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: res.RefreshToken})
	assert.True(t, apperror.IsValidation(err))
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	f := newUserFixture(t)
	f.seedUser(t, "asha@example.com", "secret1", model.RoleMR, model.UserStatusActive)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, res.RefreshToken))
	assert.Empty(t, f.tokens.tokens)

	_, err = f.svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: res.RefreshToken})
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateUserChecksEmailUniqueness(t *testing.T) {
	f := newUserFixture(t)
	user := f.seedUser(t, "asha@example.com", "secret1", model.RoleMR, model.UserStatusActive)
	f.seedUser(t, "taken@example.com", "secret1", model.RoleMR, model.UserStatusActive)

	_, err := f.svc.UpdateUser(context.Background(), user.ID, UpdateUserRequest{Email: "taken@example.com"})
	assert.True(t, apperror.IsConflict(err))

	res, err := f.svc.UpdateUser(context.Background(), user.ID, UpdateUserRequest{Name: "Asha R.", Region: "West"})
	require.NoError(t, err)
	assert.Equal(t, "Asha R.", res.Name)
	assert.Equal(t, "West", res.Region)
	assert.Equal(t, "asha@example.com", res.Email)
}
