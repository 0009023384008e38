package service_test

import (
	"context"
	"testing"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/service"
	"anoa.com/perpustakaan/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := service.NewAuthService(env.userRepo)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		resp, err := svc.Login(ctx, dto.LoginRequest{
			Email:    "librarian@test.local",
			Password: "rahasia123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, model.RoleLibrarian, resp.User.Role)
		require.Len(t, resp.User.Libraries, 1)
		assert.Equal(t, env.library.ID.String(), resp.User.Libraries[0].ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, dto.LoginRequest{
			Email:    "librarian@test.local",
			Password: "salah",
		})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, dto.LoginRequest{
			Email:    "nobody@test.local",
			Password: "rahasia123",
		})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("disabled account", func(t *testing.T) {
		env.member.IsActive = false
		require.NoError(t, env.userRepo.Save(ctx, env.member))

		_, err := svc.Login(ctx, dto.LoginRequest{
			Email:    "member@test.local",
			Password: "rahasia123",
		})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}
