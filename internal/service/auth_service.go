package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"parkhub/internal/apperr"
	"parkhub/internal/auth"
	"parkhub/internal/db"
	"parkhub/internal/repository"
)

type AuthService struct {
	users     *repository.UserRepository
	jwtSecret string
}

func NewAuthService(users *repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret}
}

func (s *AuthService) Register(ctx context.Context, username, email, phone, password string) (*db.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "username, email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, username, email, phone, string(hash))
}

// Login checks the credentials and issues a JWT. Unknown user and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", apperr.New(apperr.Validation, "username and password are required")
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return "", apperr.New(apperr.Unauthorized, "bad username or password")
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", apperr.New(apperr.Unauthorized, "bad username or password")
	}
	return auth.GenerateToken(s.jwtSecret, user)
}

// ListUsers returns all registered non-admin users, for the admin view.
func (s *AuthService) ListUsers(ctx context.Context) ([]db.User, error) {
	return s.users.ListRegular(ctx)
}
