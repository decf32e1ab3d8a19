package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/menuwise/backend/internal/logger"
	"github.com/pageza/menuwise/backend/internal/models"
	"github.com/pageza/menuwise/backend/internal/types"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	expiry    time.Duration
	log       *zap.Logger
}

func NewAuthService(db *gorm.DB, jwtSecret string, expiry time.Duration, log *zap.Logger) *AuthService {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		expiry:    expiry,
		log:       logger.OrNop(log),
	}
}

// Register creates a user and returns it with a signed token. The profile is
// not created here; it appears with the first preference write.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.AppUser, string, error) {
	email = normalizeEmail(email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AppUser{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if count > 0 {
		return nil, "", fmt.Errorf("user %w", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.AppUser{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.AppUser
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.GenerateToken(&user)
}

func (s *AuthService) GenerateToken(user *models.AppUser) (string, error) {
	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		UserID: user.ID,
		Email:  user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
