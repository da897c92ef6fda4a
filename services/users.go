package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookswap/db"
	"bookswap/models"

	"golang.org/x/crypto/argon2"
	"gorm.io/gorm"
)

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

func verifyPassword(password, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(hash) == parts[1]
}

// Register создает пользователя с хешированным паролем и выдает токен сессии
func (us *UserService) Register(ctx context.Context, user *models.User) (string, error) {
	if user.Username == "" || user.Password == "" {
		return "", fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	var alreadyExists int64
	err := db.GetReadOnlyDB(ctx).Model(&models.User{}).
		Where("username = ? OR (email <> '' AND email = ?)", user.Username, user.Email).
		Count(&alreadyExists).Error
	if err != nil {
		return "", fmt.Errorf("failed to check user: %w", err)
	}
	if alreadyExists > 0 {
		return "", fmt.Errorf("%w: user already exists", ErrValidation)
	}

	passwordHash, err := hashPassword(user.Password)
	if err != nil {
		return "", err
	}
	user.Password = passwordHash
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	if err := db.GetWriteDB(ctx).Create(user).Error; err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return us.issueToken(ctx, user.ID)
}

// Login проверяет пароль по username или email и выдает новый токен
func (us *UserService) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", ErrPermissionDenied)
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if !verifyPassword(password, user.Password) {
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrPermissionDenied)
	}

	// Старые токены удаляем: одна активная сессия на пользователя
	_ = us.Logout(ctx, user.ID)

	token, err := us.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Logout удаляет токены пользователя
func (us *UserService) Logout(ctx context.Context, userID int64) error {
	return db.GetWriteDB(ctx).Where("user_id = ?", userID).Delete(&models.UserTokens{}).Error
}

// GetUserByToken возвращает пользователя по токену сессии
func (us *UserService) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrValidation)
	}
	var userToken models.UserTokens
	err := db.GetReadOnlyDB(ctx).Where("token = ?", token).First(&userToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid token", ErrPermissionDenied)
		}
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	var user models.User
	if err := db.GetReadOnlyDB(ctx).First(&user, userToken.UserID).Error; err != nil {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return &user, nil
}

// GetUser возвращает пользователя по ID
func (us *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// UpdateUser обновляет основные поля пользователя
func (us *UserService) UpdateUser(ctx context.Context, userID int64, updates map[string]interface{}) (*models.User, error) {
	updates["updated_at"] = time.Now()
	err := db.GetWriteDB(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return us.GetUser(ctx, userID)
}

func (us *UserService) issueToken(ctx context.Context, userID int64) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	err := db.GetWriteDB(ctx).Create(&models.UserTokens{
		UserID: userID,
		Token:  token,
	}).Error
	if err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}
