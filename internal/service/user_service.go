package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"time"

	"mrtrack/internal/model"
	"mrtrack/internal/repository"
	"mrtrack/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on any login failure so callers cannot
// distinguish a wrong password from an unknown email.
var ErrInvalidCredentials = errors.New("invalid email or password")

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// DTOs for Request validation
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Region   string `json:"region"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
	Region   string `json:"region"`
}

type UpdateUserRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email" binding:"omitempty,email"`
	Region string `json:"region"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Region    string    `json:"region"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error)
}

type userService struct {
	users     repository.UserRepository
	tokens    repository.RefreshTokenRepository
	publisher Publisher
}

// NewUserService returns a new instance of UserService
func NewUserService(users repository.UserRepository, tokens repository.RefreshTokenRepository, publisher Publisher) UserService {
	return &userService{users: users, tokens: tokens, publisher: publisher}
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		Region:    user.Region,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

// Register self-registers an MR account. The role is fixed and the account
// starts pending, entering the admin approval queue before it can log in.
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Conflict("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to hash password")
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     model.RoleMR,
		Status:   model.UserStatusPending,
		Region:   req.Region,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperror.Unavailable(err, "failed to create user")
	}

	publishApprovalEvent(s.publisher, model.KindUser, user.ID, "submitted")
	return mapToResponse(user), nil
}

// CreateUser is the admin path: the role is caller-chosen and the account is
// active immediately, skipping the approval queue.
func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if req.Role != model.RoleAdmin && req.Role != model.RoleMR {
		return nil, apperror.Validation("invalid role: must be admin or mr")
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Conflict("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to hash password")
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     req.Role,
		Status:   model.UserStatusActive,
		Region:   req.Region,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperror.Unavailable(err, "failed to create user")
	}

	return mapToResponse(user), nil
}

// Login authenticates by email and password. Non-active accounts are refused
// here, not filtered downstream: a pending or rejected MR never gets a token.
func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	switch user.Status {
	case model.UserStatusActive:
		// proceed
	case model.UserStatusPending:
		return nil, apperror.Validation("account is pending admin approval")
	case model.UserStatusInactive:
		return nil, apperror.Validation("account has been deactivated")
	case model.UserStatusRejected:
		return nil, apperror.Validation("account registration was rejected")
	default:
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken rotates a valid refresh token into a fresh token pair
func (s *userService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	row, err := s.tokens.GetValid(ctx, req.RefreshToken)
	if err != nil {
		return nil, apperror.NotFound("refresh token is invalid or expired")
	}

	user, err := s.users.GetByID(ctx, row.UserID)
	if err != nil {
		return nil, apperror.NotFound("user not found")
	}
	if user.Status != model.UserStatusActive {
		return nil, apperror.Validation("account is no longer active")
	}

	// Single-use tokens: the old one is gone whether or not issuing succeeds
	if err := s.tokens.DeleteByToken(ctx, req.RefreshToken); err != nil {
		return nil, apperror.Unavailable(err, "failed to rotate refresh token")
	}

	return s.issueTokens(ctx, user)
}

// Logout invalidates the presented refresh token
func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.tokens.DeleteByToken(ctx, refreshToken); err != nil {
		return apperror.Unavailable(err, "failed to invalidate refresh token")
	}
	return nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrUnavailable(err, "user")
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Unavailable(err, "failed to list users")
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapToResponse(&users[i]))
	}
	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrUnavailable(err, "user")
	}

	if req.Email != "" && req.Email != user.Email {
		if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
			return nil, apperror.Conflict("email already exists")
		}
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Region != "" {
		user.Region = req.Region
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperror.Unavailable(err, "failed to update user")
	}
	return mapToResponse(user), nil
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	accessToken, err := signAccessToken(user)
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to generate token")
	}

	refreshToken, err := randomToken()
	if err != nil {
		return nil, apperror.Unavailable(err, "failed to generate refresh token")
	}
	row := &model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return nil, apperror.Unavailable(err, "failed to store refresh token")
	}

	return &TokenResponse{Token: accessToken, RefreshToken: refreshToken}, nil
}

func signAccessToken(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
	})

	// Same fallback strategy as the auth middleware
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}
	return token.SignedString([]byte(secret))
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
