package models

import "time"

// RequestStatus - статус заявки на книгу
// Жизненный цикл: pending -> accepted -> completed,
// либо pending -> declined / cancelled
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestDeclined  RequestStatus = "declined"
	RequestCompleted RequestStatus = "completed"
	RequestCancelled RequestStatus = "cancelled"
)

// RequestType - тип заявки
type RequestType string

const (
	RequestBorrow RequestType = "borrow"
	RequestSwap   RequestType = "swap"
)

// BookRequest - заявка пользователя на чужую книгу.
// Все переходы статуса выполняются только через LendingService.
type BookRequest struct {
	ID          int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	BookID      int64         `gorm:"index" json:"book_id"`
	RequesterID int64         `gorm:"index" json:"requester_id"`
	RequestType RequestType   `gorm:"size:10" json:"request_type"`
	Status      RequestStatus `gorm:"size:10;index;default:pending" json:"status"`
	Message     string        `gorm:"type:text" json:"message"`
	SwapBookID  *int64        `json:"swap_book_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (BookRequest) TableName() string {
	return "book_requests"
}

// RequestInfo - заявка с данными книги для выдачи наружу
type RequestInfo struct {
	ID          int64         `json:"id"`
	BookID      int64         `json:"book_id"`
	BookTitle   string        `json:"book_title"`
	BookAuthor  string        `json:"book_author"`
	RequesterID int64         `json:"requester_id"`
	RequestType RequestType   `json:"request_type"`
	Status      RequestStatus `json:"status"`
	Message     string        `json:"message"`
	CreatedAt   time.Time     `json:"created_at"`
}
