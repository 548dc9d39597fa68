package authn

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/simp-lee/consolekit/internal/domain"
)

// Service defines the authentication operations.
type Service interface {
	Login(ctx context.Context, username, password string) (*TokenResponse, error)
	Profile(ctx context.Context, operatorID uint) (*ProfileResponse, error)
	Parse(token string) (uint, error)
}

// authService implements Service.
type authService struct {
	db          *gorm.DB
	secret      []byte
	tokenExpiry time.Duration
	now         func() time.Time
}

// NewService creates an auth Service signing tokens with secret.
func NewService(db *gorm.DB, secret string, tokenExpiry time.Duration) Service {
	return &authService{
		db:          db,
		secret:      []byte(secret),
		tokenExpiry: tokenExpiry,
		now:         time.Now,
	}
}

// Login authenticates an operator by username and password and returns a
// signed HS256 token.
func (s *authService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	var op Operator
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&op).Error
	if err != nil {
		// Don't reveal whether the account exists.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.NewAppError(domain.TagDatabase, "database error", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	expiresAt := s.now().Add(s.tokenExpiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(op.ID), 10),
		"iat": s.now().Unix(),
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, domain.NewAppError(domain.TagInternalServer, "failed to generate token", err)
	}

	return &TokenResponse{Token: signed, ExpiresAt: expiresAt.Unix()}, nil
}

// Profile returns the operator's profile in the shape the console consumes.
func (s *authService) Profile(ctx context.Context, operatorID uint) (*ProfileResponse, error) {
	var op Operator
	if err := s.db.WithContext(ctx).First(&op, operatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.NewAppError(domain.TagDatabase, "database error", err)
	}
	return &ProfileResponse{
		ID:         strconv.FormatUint(uint64(op.ID), 10),
		Name:       op.Name,
		Email:      op.Email,
		Role:       op.Role,
		LocationID: op.LocationID,
	}, nil
}

// Parse validates a token and returns the operator ID it carries. An expired
// token maps to the session-expired tag so clients tear the session down.
func (s *authService) Parse(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, domain.NewAppError(domain.TagSessionExpired, "session expired", err)
		}
		return 0, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, domain.ErrUnauthorized
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, domain.ErrUnauthorized
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ErrUnauthorized
	}
	return uint(id), nil
}

// EnsureOperator creates the seed account when it does not exist yet.
func EnsureOperator(db *gorm.DB, username, password, name, email, role, locationID string) error {
	var count int64
	if err := db.Model(&Operator{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Create(&Operator{
		Username:     username,
		Name:         name,
		Email:        email,
		Role:         role,
		LocationID:   locationID,
		PasswordHash: string(hash),
	}).Error
}
