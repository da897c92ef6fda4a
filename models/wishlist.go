package models

import "time"

// Wishlist - запись списка желаний: свободный текст названия/автора/ISBN.
// Уникальность по (user_id, title, author).
type Wishlist struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index:wishlist_user_title_author,unique" json:"user_id"`
	Title     string    `gorm:"size:200;index:wishlist_user_title_author,unique" json:"title"`
	Author    string    `gorm:"size:100;index:wishlist_user_title_author,unique" json:"author"`
	ISBN      string    `gorm:"size:13" json:"isbn"`
	CreatedAt time.Time `json:"created_at"`
}

func (Wishlist) TableName() string {
	return "wishlist"
}
