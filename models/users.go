package models

import (
	"time"
)

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:60;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:255;uniqueIndex" json:"email"`
	FirstName string    `gorm:"size:255" json:"first_name"`
	LastName  string    `gorm:"size:255" json:"last_name"`
	Password  string    `gorm:"size:255" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserProfile - расширенный профиль пользователя (телефон, адрес, био и т.д.)
type UserProfile struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64     `gorm:"uniqueIndex" json:"user_id"`
	Phone           string    `gorm:"size:15" json:"phone"`
	Address         string    `gorm:"type:text" json:"address"`
	PreferredGenres string    `gorm:"size:500" json:"preferred_genres"`
	Bio             string    `gorm:"type:text" json:"bio"`
	Location        string    `gorm:"size:200" json:"location"`
	Website         string    `gorm:"size:255" json:"website"`
	CreatedAt       time.Time `json:"created_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

type UserTokens struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64  `gorm:"index:user_token_idx,unique" json:"user_id"`
	Token  string `gorm:"size:255;index:user_token_idx,unique" json:"token"`
}

func (UserTokens) TableName() string {
	return "user_tokens"
}

type Migration struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:60;uniqueIndex" json:"name"`
	AppliedAt time.Time `gorm:"autoCreateTime" json:"applied_at"`
}
