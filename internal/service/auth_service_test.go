package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
	appErrors "github.com/tintin4303/uniplanner-sub000/pkg/errors"
)

type userRepoStub struct {
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	tokens       map[string]*models.RefreshToken
	revokedAll   []string
}

func newUserRepoStub() *userRepoStub {
	return &userRepoStub{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[string]*models.User),
		tokens:       make(map[string]*models.RefreshToken),
	}
}

func (s *userRepoStub) addUser(email, password string, active bool) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test User",
		Active:       active,
	}
	s.usersByEmail[email] = user
	s.usersByID[user.ID] = user
	return user
}

func (s *userRepoStub) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *userRepoStub) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := s.usersByID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *userRepoStub) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.usersByEmail[user.Email] = user
	s.usersByID[user.ID] = user
	return nil
}

func (s *userRepoStub) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	if user, ok := s.usersByID[id]; ok {
		user.LastLogin = &ts
	}
	return nil
}

func (s *userRepoStub) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	s.revokedAll = append(s.revokedAll, userID)
	for _, token := range s.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (s *userRepoStub) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	s.tokens[token.Token] = token
	return nil
}

func (s *userRepoStub) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := s.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (s *userRepoStub) RevokeRefreshToken(_ context.Context, id string, revokedAt time.Time) error {
	for _, token := range s.tokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func newAuthFixture(repo *userRepoStub) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "uniplanner",
	})
}

func TestAuthServiceRegisterCreatesAccount(t *testing.T) {
	repo := newUserRepoStub()
	svc := newAuthFixture(repo)

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "Student@Example.COM",
		Password: "secret123",
		FullName: "  Pat Doe  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", info.Email)
	assert.Equal(t, "Pat Doe", info.FullName)

	stored, ok := repo.usersByEmail["student@example.com"]
	require.True(t, ok)
	assert.True(t, stored.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newUserRepoStub()
	repo.addUser("student@example.com", "secret123", true)
	svc := newAuthFixture(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "student@example.com",
		Password: "secret123",
		FullName: "Pat Doe",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginIssuesTokens(t *testing.T) {
	repo := newUserRepoStub()
	user := repo.addUser("student@example.com", "secret123", true)
	svc := newAuthFixture(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "student@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)
	require.Contains(t, repo.tokens, resp.RefreshToken)
	assert.NotNil(t, repo.usersByID[user.ID].LastLogin)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newUserRepoStub()
	repo.addUser("student@example.com", "secret123", true)
	svc := newAuthFixture(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "student@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	repo := newUserRepoStub()
	repo.addUser("student@example.com", "secret123", false)
	svc := newAuthFixture(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "student@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshTokenRotates(t *testing.T) {
	repo := newUserRepoStub()
	repo.addUser("student@example.com", "secret123", true)
	svc := newAuthFixture(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "student@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)
	assert.False(t, repo.tokens[refreshed.RefreshToken].Revoked)
}

func TestAuthServiceRefreshTokenExpired(t *testing.T) {
	repo := newUserRepoStub()
	user := repo.addUser("student@example.com", "secret123", true)
	repo.tokens["stale"] = &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	svc := newAuthFixture(repo)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutRevokesToken(t *testing.T) {
	repo := newUserRepoStub()
	user := repo.addUser("student@example.com", "secret123", true)
	svc := newAuthFixture(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "student@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken, user.ID))
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)

	err = svc.Logout(context.Background(), login.RefreshToken, "someone-else")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenBadSecret(t *testing.T) {
	repo := newUserRepoStub()
	repo.addUser("student@example.com", "secret123", true)
	issuer := newAuthFixture(repo)

	login, err := issuer.Login(context.Background(), models.LoginRequest{
		Email:    "student@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	verifier := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "other-secret"})
	_, err = verifier.ValidateToken(login.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
