package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alumniconnect/backend/internal/domain"
	"github.com/alumniconnect/backend/internal/identity"
	"github.com/alumniconnect/backend/internal/repository/memory"
)

func newAuthEnv(t *testing.T) (*AuthService, *identity.Resolver) {
	t.Helper()
	resolver := identity.NewResolver("test-secret", time.Hour)
	return NewAuthService(memory.NewUserRepo(), resolver), resolver
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an approved student by default", func(t *testing.T) {
		req := require.New(t)
		svc, resolver := newAuthEnv(t)

		resp, err := svc.Register(ctx, RegisterInput{
			Email:    "sara@example.com",
			FullName: "Sara Novak",
			Password: "Str0ng!pass",
		})

		req.NoError(err)
		req.Equal(domain.RoleStudent, resp.User.Role)
		req.True(resp.User.IsApproved)
		req.NotEqual("Str0ng!pass", resp.User.PasswordHash)

		id, err := resolver.ResolveToken(resp.AccessToken)
		req.NoError(err)
		req.Equal(resp.User.ID, id.UserID)
		req.Equal(domain.RoleStudent, id.Role)
	})

	t.Run("alumni start unapproved", func(t *testing.T) {
		svc, _ := newAuthEnv(t)
		resp, err := svc.Register(ctx, RegisterInput{
			Email:    "ivan@example.com",
			FullName: "Ivan Horvat",
			Password: "Str0ng!pass",
			Role:     domain.RoleAlumni,
		})
		require.NoError(t, err)
		assert.False(t, resp.User.IsApproved)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		svc, _ := newAuthEnv(t)
		_, err := svc.Register(ctx, RegisterInput{
			Email:    "x@example.com",
			FullName: "X",
			Password: "Str0ng!pass",
			Role:     "wizard",
		})
		require.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		req := require.New(t)
		svc, _ := newAuthEnv(t)
		input := RegisterInput{Email: "sara@example.com", FullName: "Sara", Password: "Str0ng!pass"}

		_, err := svc.Register(ctx, input)
		req.NoError(err)

		_, err = svc.Register(ctx, input)
		req.ErrorIs(err, ErrEmailTaken)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	svc, resolver := newAuthEnv(t)

	registered, err := svc.Register(ctx, RegisterInput{
		Email:    "sara@example.com",
		FullName: "Sara Novak",
		Password: "Str0ng!pass",
	})
	req.NoError(err)

	t.Run("exchanges valid credentials for a token", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginInput{Email: "sara@example.com", Password: "Str0ng!pass"})
		require.NoError(t, err)
		require.Equal(t, registered.User.ID, resp.User.ID)

		id, err := resolver.ResolveToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, id.UserID)
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Email: "sara@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCreds)

		_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Str0ng!pass"})
		assert.ErrorIs(t, err, ErrInvalidCreds)
	})
}

func TestPasswordHashing(t *testing.T) {
	req := require.New(t)

	hash, err := hashPassword("Str0ng!pass")
	req.NoError(err)
	req.True(verifyPassword("Str0ng!pass", hash))
	req.False(verifyPassword("other", hash))
	req.False(verifyPassword("Str0ng!pass", "not-a-hash"))

	// Fresh salt per hash.
	other, err := hashPassword("Str0ng!pass")
	req.NoError(err)
	req.NotEqual(hash, other)
}
