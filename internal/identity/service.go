package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type ServiceConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// Service is the identity collaborator: account registration, credential
// checks, and the JWT tokens the API layer uses to establish user_id.
type Service struct {
	repo   UserRepository
	cfg    ServiceConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo UserRepository, cfg ServiceConfig, logger *slog.Logger) *Service {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	return &Service{
		repo:   repo,
		cfg:    cfg,
		logger: logger.With("component", "identity"),
		now:    time.Now,
	}
}

func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:        uuid.New().String(),
		Username:  username,
		Email:     email,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, user, string(hash)); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Login verifies credentials and returns a signed token plus the account.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	user, hash, err := s.repo.GetCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, pg.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("Failed to stamp last login", "user_id", user.ID, "error", err)
	}
	user.LastLogin = now

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *Service) generateToken(user *User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// VerifyToken parses and validates a JWT, returning the user id it carries.
func (s *Service) VerifyToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
