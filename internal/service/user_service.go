package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eshop-api/internal/domain"
	"eshop-api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 12

	// TokenExpiration is the fixed lifetime of issued access tokens
	TokenExpiration = 24 * time.Hour
)

var (
	// ErrInvalidCredentials is returned on a password mismatch. The
	// message is deliberately generic: it must not reveal which of
	// email/password was wrong.
	ErrInvalidCredentials = errors.New("invalid credential")
)

// Claims represents the JWT claims embedded in issued tokens
type Claims struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// UserService defines the interface for user business logic
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Create(ctx context.Context, user *domain.User, rawPassword string) (*domain.User, error)
	Update(ctx context.Context, id primitive.ObjectID, user *domain.User, rawPassword string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type userService struct {
	userRepo  repository.UserRepository
	jwtSecret string
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository, jwtSecret string) UserService {
	return &userService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// List returns all users projected to the safe field subset
func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

// Get returns one user by ID
func (s *userService) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// Create hashes the raw password with a per-call random salt and persists
// the user. Admin create and self-service registration share this path.
func (s *userService) Create(ctx context.Context, user *domain.User, rawPassword string) (*domain.User, error) {
	hash, err := s.hashPassword(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Update replaces the user's fields. The password hash is re-derived only
// when a new raw password is supplied; otherwise the stored hash is
// carried over unchanged.
func (s *userService) Update(ctx context.Context, id primitive.ObjectID, user *domain.User, rawPassword string) (*domain.User, error) {
	existing, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if rawPassword != "" {
		hash, err := s.hashPassword(rawPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	} else {
		user.PasswordHash = existing.PasswordHash
	}

	return s.userRepo.Update(ctx, id, user)
}

// Login verifies the credentials and issues a signed token embedding the
// user's identity and admin flag.
func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, user, nil
}

// Delete removes one user
func (s *userService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.userRepo.Delete(ctx, id)
}

// Count returns the total user count
func (s *userService) Count(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

func (s *userService) hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *userService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:  user.ID.Hex(),
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
