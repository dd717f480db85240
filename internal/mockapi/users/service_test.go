package users

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mediahub/internal/common"
)

var testParams = &argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func newService() *Service {
	return NewService(NewInMemoryRepository(), "secret", time.Hour).WithHashParams(testParams)
}

func TestRegisterThenLogin(t *testing.T) {
	s := newService()
	ctx := context.Background()

	reg, err := s.Register(ctx, "Jane Doe", "Jane@Example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, reg.Token)
	require.NotEmpty(t, reg.UserID)

	got, err := s.Login(ctx, "jane@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, got.UserID)

	uid, err := s.UserID(got.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, uid)
}

func TestRegister_Duplicate(t *testing.T) {
	s := newService()
	ctx := context.Background()

	_, err := s.Register(ctx, "A", "a@example.com", "password1")
	require.NoError(t, err)

	_, err = s.Register(ctx, "B", " A@example.com ", "password2")
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newService()
	ctx := context.Background()

	_, err := s.Register(ctx, "A", "a@example.com", "password1")
	require.NoError(t, err)

	_, err = s.Login(ctx, "a@example.com", "wrong")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = s.Login(ctx, "nobody@example.com", "password1")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestIssueToken_Expired(t *testing.T) {
	s := newService()

	tok, err := s.IssueToken("u1", -time.Minute)
	require.NoError(t, err)

	_, err = s.UserID(tok)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestRepository_CancelledContext(t *testing.T) {
	r := NewInMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Create(ctx, &User{Email: "a@example.com"})
	require.ErrorIs(t, err, context.Canceled)

	_, err = r.GetUserByEmail(ctx, "a@example.com")
	require.ErrorIs(t, err, context.Canceled)
}
