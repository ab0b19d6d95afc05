package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ghorihut-backend/config"
	"ghorihut-backend/internal/domain"
	"ghorihut-backend/pkg/logger"
	"ghorihut-backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase struct {
	userRepo domain.UserRepository
	cfg      *config.Config
}

func NewAuthUsecase(userRepo domain.UserRepository, cfg *config.Config) *AuthUsecase {
	return &AuthUsecase{userRepo: userRepo, cfg: cfg}
}

type RegisterReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is what every successful login/refresh hands back.
type TokenPair struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         *domain.User `json:"user"`
}

func (u *AuthUsecase) Register(ctx context.Context, req RegisterReq) (*TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	if existing, _ := u.userRepo.GetByEmail(ctx, email); existing != nil {
		return nil, fmt.Errorf("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           utils.GenerateUUID(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         "customer",
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	logger.WithContext(ctx).Info().Str("user_id", user.ID).Msg("New account registered")
	return u.issueTokens(ctx, user)
}

func (u *AuthUsecase) Login(ctx context.Context, req LoginReq) (*TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	return u.issueTokens(ctx, user)
}

// Refresh rotates a refresh token: the presented token is revoked and a
// fresh pair is issued. A revoked or expired token is rejected outright.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := u.userRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}
	if stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return nil, fmt.Errorf("refresh token expired")
	}

	user, err := u.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("account not found")
	}

	if err := u.userRepo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return u.issueTokens(ctx, user)
}

func (u *AuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return u.userRepo.RevokeRefreshToken(ctx, refreshToken)
}

func (u *AuthUsecase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return u.userRepo.GetByID(ctx, userID)
}

func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID, firstName, lastName, phone string) (*domain.User, error) {
	return u.userRepo.UpdateProfile(ctx, userID, firstName, lastName, phone)
}

func (u *AuthUsecase) AddAddress(ctx context.Context, addr *domain.Address) error {
	if strings.TrimSpace(addr.City) == "" {
		return fmt.Errorf("city is required")
	}
	if addr.Country == "" {
		addr.Country = "BD"
	}
	addr.ID = utils.GenerateUUID()
	return u.userRepo.AddAddress(ctx, addr)
}

func (u *AuthUsecase) GetAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	return u.userRepo.GetAddresses(ctx, userID)
}

func (u *AuthUsecase) DeleteAddress(ctx context.Context, id, userID string) error {
	return u.userRepo.DeleteAddress(ctx, id, userID)
}

func (u *AuthUsecase) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	return u.userRepo.GetAll(ctx, limit, offset)
}

func (u *AuthUsecase) issueTokens(ctx context.Context, user *domain.User) (*TokenPair, error) {
	access, err := utils.GenerateJWT(user.ID, user.Email, user.Role, u.cfg.AccessTokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	refresh := &domain.RefreshToken{
		Token:     utils.GenerateUUID(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(u.cfg.RefreshTokenExpiry),
	}
	if err := u.userRepo.SaveRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh.Token, User: user}, nil
}
