package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookswap/db"
	"bookswap/models"

	"gorm.io/gorm"
)

type ProfileService struct{}

func NewProfileService() *ProfileService {
	return &ProfileService{}
}

// GetOrCreate возвращает профиль пользователя, создавая пустой при первом обращении
func (ps *ProfileService) GetOrCreate(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := db.GetReadOnlyDB(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile = models.UserProfile{UserID: userID, CreatedAt: time.Now()}
	if err := db.GetWriteDB(ctx).Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return &profile, nil
}

// Update обновляет поля профиля пользователя
func (ps *ProfileService) Update(ctx context.Context, userID int64, updates map[string]interface{}) (*models.UserProfile, error) {
	if _, err := ps.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	err := db.GetWriteDB(ctx).Model(&models.UserProfile{}).
		Where("user_id = ?", userID).Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return ps.GetOrCreate(ctx, userID)
}
