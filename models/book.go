package models

import "time"

// Availability - состояние доступности книги
type Availability string

const (
	BookAvailable   Availability = "available"
	BookBorrowed    Availability = "borrowed"
	BookUnavailable Availability = "unavailable"
)

// LendingType - как владелец готов отдавать книгу
type LendingType string

const (
	LendingOnly  LendingType = "lending"
	SwappingOnly LendingType = "swapping"
	LendingBoth  LendingType = "both"
)

// Condition - состояние экземпляра
const (
	ConditionNew     = "new"
	ConditionLikeNew = "like_new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
)

// Book - книга, выставленная владельцем на обмен или выдачу.
// Availability == "borrowed" тогда и только тогда, когда по книге есть
// активный (принятый и не возвращенный) займ.
type Book struct {
	ID              int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID         int64        `gorm:"index" json:"owner_id"`
	Title           string       `gorm:"size:200" json:"title"`
	Author          string       `gorm:"size:100" json:"author"`
	ISBN            string       `gorm:"size:13" json:"isbn"`
	Genre           string       `gorm:"size:100;index" json:"genre"`
	Description     string       `gorm:"type:text" json:"description"`
	Condition       string       `gorm:"size:10" json:"condition"`
	LendingType     LendingType  `gorm:"size:10" json:"lending_type"`
	Availability    Availability `gorm:"size:15;index;default:available" json:"availability"`
	PublicationYear *int         `json:"publication_year,omitempty"`
	CoverImageURL   string       `gorm:"size:500" json:"cover_image_url"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}
