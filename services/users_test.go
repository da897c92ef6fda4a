package services

import (
	"context"
	"errors"
	"testing"

	"bookswap/db"
	"bookswap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	setupTestDB(t)
	us := NewUserService()

	token, err := us.Register(context.Background(), &models.User{
		Username: "reader",
		Email:    "reader@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Пароль в базе хеширован
	user, err := us.GetUserByToken(context.Background(), token)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", user.Password)

	// Вход по username и по email
	_, _, err = us.Login(context.Background(), "reader", "secret123")
	require.NoError(t, err)
	logged, newToken, err := us.Login(context.Background(), "reader@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, newToken)

	_, _, err = us.Login(context.Background(), "reader", "wrongpass")
	assert.True(t, errors.Is(err, ErrPermissionDenied))
}

func TestRegisterDuplicate(t *testing.T) {
	setupTestDB(t)
	us := NewUserService()

	_, err := us.Register(context.Background(), &models.User{
		Username: "reader", Email: "reader@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = us.Register(context.Background(), &models.User{
		Username: "reader", Email: "other@example.com", Password: "secret123",
	})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = us.Register(context.Background(), &models.User{
		Username: "other", Email: "reader@example.com", Password: "secret123",
	})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestLoginInvalidatesOldToken(t *testing.T) {
	setupTestDB(t)
	us := NewUserService()

	oldToken, err := us.Register(context.Background(), &models.User{
		Username: "reader", Password: "secret123",
	})
	require.NoError(t, err)

	_, newToken, err := us.Login(context.Background(), "reader", "secret123")
	require.NoError(t, err)

	_, err = us.GetUserByToken(context.Background(), oldToken)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	_, err = us.GetUserByToken(context.Background(), newToken)
	assert.NoError(t, err)
}

func TestLogout(t *testing.T) {
	setupTestDB(t)
	us := NewUserService()

	token, err := us.Register(context.Background(), &models.User{
		Username: "reader", Password: "secret123",
	})
	require.NoError(t, err)

	user, err := us.GetUserByToken(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, us.Logout(context.Background(), user.ID))
	_, err = us.GetUserByToken(context.Background(), token)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
}

func TestUpdateUser(t *testing.T) {
	setupTestDB(t)
	us := NewUserService()

	_, err := us.Register(context.Background(), &models.User{
		Username: "reader", Password: "secret123",
	})
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.ORM.Where("username = ?", "reader").First(&user).Error)

	updated, err := us.UpdateUser(context.Background(), user.ID, map[string]interface{}{
		"first_name": "Paul",
		"last_name":  "Atreides",
	})
	require.NoError(t, err)
	assert.Equal(t, "Paul", updated.FirstName)
	assert.Equal(t, "Atreides", updated.LastName)
}
