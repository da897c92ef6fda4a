package models

import "time"

// BookLoan - запись о выдаче книги. Создается ровно один раз на заявку,
// в момент перехода заявки в статус accepted.
type BookLoan struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	BookRequestID int64      `gorm:"uniqueIndex" json:"book_request_id"`
	DueDate       time.Time  `json:"due_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	Returned      bool       `gorm:"default:false" json:"returned"`
	Rating        *int       `json:"rating,omitempty"`
	Review        string     `gorm:"type:text" json:"review"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (BookLoan) TableName() string {
	return "book_loans"
}

// LoanInfo - займ с данными книги и заявки для выдачи наружу
type LoanInfo struct {
	ID          int64      `json:"id"`
	BookID      int64      `json:"book_id"`
	BookTitle   string     `json:"book_title"`
	BookAuthor  string     `json:"book_author"`
	RequesterID int64      `json:"requester_id"`
	OwnerID     int64      `json:"owner_id"`
	DueDate     time.Time  `json:"due_date"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
	Returned    bool       `json:"returned"`
	Rating      *int       `json:"rating,omitempty"`
	Review      string     `json:"review"`
}
