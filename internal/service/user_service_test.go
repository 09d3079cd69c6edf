package service

import (
	"context"
	"testing"
	"time"

	"eshop-api/internal/domain"
	"eshop-api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Mock repository for testing
type mockUserRepository struct {
	users map[primitive.ObjectID]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[primitive.ObjectID]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	users := []*domain.User{}
	for _, u := range m.users {
		summary := *u
		summary.PasswordHash = ""
		users = append(users, &summary)
	}
	return users, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, exists := m.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) Update(ctx context.Context, id primitive.ObjectID, user *domain.User) (*domain.User, error) {
	existing, exists := m.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	updated := *user
	updated.ID = existing.ID
	m.users[id] = &updated
	result := updated
	return &result, nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, exists := m.users[id]; !exists {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func TestCreate_HashesPassword(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, "test-secret")
	ctx := context.Background()

	user, err := svc.Create(ctx, &domain.User{Name: "Ada", Email: "ada@example.com"}, "correct horse battery")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse battery", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse battery")))

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
}

func TestLogin_RoundTrip(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, "test-secret")
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.User{Name: "Ada", Email: "ada@example.com", IsAdmin: true}, "s3cret-pass")
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, created.ID, user.ID)
}

func TestLogin_TokenClaims(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, "test-secret")
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.User{Name: "Ada", Email: "ada@example.com", IsAdmin: true}, "s3cret-pass")
	require.NoError(t, err)

	tokenString, _, err := svc.Login(ctx, "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, created.ID.Hex(), claims.UserID)
	assert.True(t, claims.IsAdmin)

	// Fixed 1-day expiry
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, TokenExpiration.Seconds(), remaining.Seconds(), 60)
}

func TestLogin_WrongPasswordIsGeneric(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, "test-secret")
	ctx := context.Background()

	_, err := svc.Create(ctx, &domain.User{Name: "Ada", Email: "ada@example.com"}, "right-password")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	// The error must not hint at which credential was wrong
	assert.NotContains(t, err.Error(), "password")
	assert.NotContains(t, err.Error(), "email")
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewUserService(newMockUserRepository(), "test-secret")

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUpdate_WithoutPasswordRetainsHash(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, "test-secret")
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.User{Name: "Ada", Email: "ada@example.com"}, "original-pass")
	require.NoError(t, err)
	originalHash := created.PasswordHash

	updated, err := svc.Update(ctx, created.ID, &domain.User{Name: "Ada Lovelace", Email: "ada@example.com"}, "")
	require.NoError(t, err)
	assert.Equal(t, originalHash, updated.PasswordHash)

	// Login with the original password still succeeds after the update
	_, _, err = svc.Login(ctx, "ada@example.com", "original-pass")
	assert.NoError(t, err)
}

func TestUpdate_WithPasswordRehashes(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, "test-secret")
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.User{Name: "Ada", Email: "ada@example.com"}, "original-pass")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &domain.User{Name: "Ada", Email: "ada@example.com"}, "new-pass")
	require.NoError(t, err)
	assert.NotEqual(t, created.PasswordHash, updated.PasswordHash)

	_, _, err = svc.Login(ctx, "ada@example.com", "new-pass")
	assert.NoError(t, err)
	_, _, err = svc.Login(ctx, "ada@example.com", "original-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdate_AbsentUser(t *testing.T) {
	svc := NewUserService(newMockUserRepository(), "test-secret")

	_, err := svc.Update(context.Background(), primitive.NewObjectID(), &domain.User{Name: "X", Email: "x@example.com"}, "")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestDelete_Idempotent(t *testing.T) {
	repo := newMockUserRepository()
	svc := NewUserService(repo, "test-secret")
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.User{Name: "Ada", Email: "ada@example.com"}, "pass-word")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), repository.ErrUserNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), repository.ErrUserNotFound)
}

// Property: registering with any password then logging in with that same
// password succeeds, and any other password fails with the generic error
func TestProperty_RegisterLoginRoundTrip(t *testing.T) {
	// bcrypt at cost 12 is deliberately slow; keep the run count small
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10
	properties := gopter.NewProperties(parameters)

	properties.Property("same password logs in, different password does not", prop.ForAll(
		func(password, other string) bool {
			if password == "" || password == other {
				return true // not a meaningful case
			}
			// bcrypt rejects inputs longer than 72 bytes
			if len(password) > 72 || len(other) > 72 {
				return true
			}

			repo := newMockUserRepository()
			svc := NewUserService(repo, "test-secret")
			ctx := context.Background()

			if _, err := svc.Create(ctx, &domain.User{Name: "P", Email: "p@example.com"}, password); err != nil {
				return false
			}

			if _, _, err := svc.Login(ctx, "p@example.com", password); err != nil {
				return false
			}

			_, _, err := svc.Login(ctx, "p@example.com", other)
			return err == ErrInvalidCredentials
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
