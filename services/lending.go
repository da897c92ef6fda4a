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

// LoanPeriodDays - срок выдачи книги в днях
const LoanPeriodDays = 14

// LendingService - единственная точка, через которую меняются статусы
// BookRequest/Book/BookLoan. Принимает actorID явно: никакого глобального
// "текущего пользователя" на этом уровне нет.
type LendingService struct{}

func NewLendingService() *LendingService {
	return &LendingService{}
}

// SubmitRequest создает заявку на книгу со статусом pending.
// Доступность книги не меняется. Заявка на собственную книгу и повторные
// pending-заявки не запрещаются.
func (ls *LendingService) SubmitRequest(ctx context.Context, actorID, bookID int64, requestType models.RequestType, swapBookID *int64, message string) (*models.BookRequest, error) {
	if requestType != models.RequestBorrow && requestType != models.RequestSwap {
		return nil, fmt.Errorf("%w: unknown request type %q", ErrValidation, requestType)
	}

	var book models.Book
	err := db.GetReadOnlyDB(ctx).First(&book, bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: book %d", ErrNotFound, bookID)
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	// Книга для обмена должна существовать и принадлежать заявителю
	if swapBookID != nil {
		var swapBook models.Book
		err = db.GetReadOnlyDB(ctx).First(&swapBook, *swapBookID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: swap book %d", ErrNotFound, *swapBookID)
			}
			return nil, fmt.Errorf("failed to load swap book: %w", err)
		}
		if swapBook.OwnerID != actorID {
			return nil, fmt.Errorf("%w: swap book must belong to requester", ErrValidation)
		}
	}

	request := &models.BookRequest{
		BookID:      bookID,
		RequesterID: actorID,
		RequestType: requestType,
		Status:      models.RequestPending,
		Message:     message,
		SwapBookID:  swapBookID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create book request: %w", err)
	}

	notifyLendingEvent(ctx, book.OwnerID, "request_received",
		fmt.Sprintf("New %s request for %q", requestType, book.Title), request.ID)

	return request, nil
}

// AcceptRequest подтверждает заявку. Только владелец книги, только из
// статуса pending и только пока книга available. Все эффекты выполняются
// одной транзакцией: заявка -> accepted, книга -> borrowed, остальные
// pending-заявки по этой книге -> declined, создается BookLoan со сроком
// now + 14 дней. Проверки статуса повторяются условными UPDATE внутри
// транзакции, чтобы два одновременных accept не прошли оба.
func (ls *LendingService) AcceptRequest(ctx context.Context, actorID, requestID int64) (*models.BookLoan, error) {
	var loan *models.BookLoan
	var requesterID int64
	var bookTitle string

	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.BookRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: request %d", ErrNotFound, requestID)
			}
			return fmt.Errorf("failed to load request: %w", err)
		}

		var book models.Book
		if err := tx.First(&book, request.BookID).Error; err != nil {
			return fmt.Errorf("failed to load book: %w", err)
		}

		if book.OwnerID != actorID {
			return fmt.Errorf("%w: only the book owner can accept requests", ErrPermissionDenied)
		}
		if request.Status != models.RequestPending {
			return fmt.Errorf("%w: request is no longer pending", ErrInvalidState)
		}
		if book.Availability != models.BookAvailable {
			return fmt.Errorf("%w: book is no longer available", ErrInvalidState)
		}

		// Условные UPDATE: проигравший гонку увидит 0 строк и откатится
		res := tx.Model(&models.BookRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestPending).
			Updates(map[string]interface{}{"status": models.RequestAccepted, "updated_at": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("failed to accept request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: request is no longer pending", ErrInvalidState)
		}

		res = tx.Model(&models.Book{}).
			Where("id = ? AND availability = ?", book.ID, models.BookAvailable).
			Update("availability", models.BookBorrowed)
		if res.Error != nil {
			return fmt.Errorf("failed to mark book as borrowed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: book is no longer available", ErrInvalidState)
		}

		// Отклоняем все остальные pending-заявки по этой книге
		err := tx.Model(&models.BookRequest{}).
			Where("book_id = ? AND status = ? AND id <> ?", book.ID, models.RequestPending, request.ID).
			Updates(map[string]interface{}{"status": models.RequestDeclined, "updated_at": time.Now()}).Error
		if err != nil {
			return fmt.Errorf("failed to decline competing requests: %w", err)
		}

		loan = &models.BookLoan{
			BookRequestID: request.ID,
			DueDate:       time.Now().AddDate(0, 0, LoanPeriodDays),
			Returned:      false,
			CreatedAt:     time.Now(),
		}
		if err := tx.Create(loan).Error; err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}

		requesterID = request.RequesterID
		bookTitle = book.Title
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifyLendingEvent(ctx, requesterID, "request_accepted",
		fmt.Sprintf("Your request for %q was accepted", bookTitle), requestID)

	return loan, nil
}

// DeclineRequest отклоняет заявку. Только владелец книги, только из pending.
// Книга и другие заявки не затрагиваются.
func (ls *LendingService) DeclineRequest(ctx context.Context, actorID, requestID int64) error {
	var requesterID int64
	var bookTitle string

	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.BookRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: request %d", ErrNotFound, requestID)
			}
			return fmt.Errorf("failed to load request: %w", err)
		}

		var book models.Book
		if err := tx.First(&book, request.BookID).Error; err != nil {
			return fmt.Errorf("failed to load book: %w", err)
		}

		if book.OwnerID != actorID {
			return fmt.Errorf("%w: only the book owner can decline requests", ErrPermissionDenied)
		}
		if request.Status != models.RequestPending {
			return fmt.Errorf("%w: request is no longer pending", ErrInvalidState)
		}

		res := tx.Model(&models.BookRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestPending).
			Updates(map[string]interface{}{"status": models.RequestDeclined, "updated_at": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("failed to decline request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: request is no longer pending", ErrInvalidState)
		}

		requesterID = request.RequesterID
		bookTitle = book.Title
		return nil
	})
	if err != nil {
		return err
	}

	notifyLendingEvent(ctx, requesterID, "request_declined",
		fmt.Sprintf("Your request for %q was declined", bookTitle), requestID)

	return nil
}

// CancelRequest отменяет собственную заявку. Только заявитель, только из pending.
func (ls *LendingService) CancelRequest(ctx context.Context, actorID, requestID int64) error {
	return db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.BookRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: request %d", ErrNotFound, requestID)
			}
			return fmt.Errorf("failed to load request: %w", err)
		}

		if request.RequesterID != actorID {
			return fmt.Errorf("%w: only the requester can cancel a request", ErrPermissionDenied)
		}
		if request.Status != models.RequestPending {
			return fmt.Errorf("%w: request is no longer pending", ErrInvalidState)
		}

		res := tx.Model(&models.BookRequest{}).
			Where("id = ? AND status = ?", request.ID, models.RequestPending).
			Updates(map[string]interface{}{"status": models.RequestCancelled, "updated_at": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("failed to cancel request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: request is no longer pending", ErrInvalidState)
		}
		return nil
	})
}

// ReturnBook закрывает займ. Вернуть может заявитель или владелец книги.
// Повторный возврат отклоняется, а не игнорируется. Эффекты одной
// транзакцией: returned = true, return_date = now, книга -> available,
// заявка -> completed; опциональные rating (1-5) и review сохраняются.
func (ls *LendingService) ReturnBook(ctx context.Context, actorID, loanID int64, rating *int, review string) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	var ownerID int64
	var bookTitle string

	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var loan models.BookLoan
		if err := tx.First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: loan %d", ErrNotFound, loanID)
			}
			return fmt.Errorf("failed to load loan: %w", err)
		}

		var request models.BookRequest
		if err := tx.First(&request, loan.BookRequestID).Error; err != nil {
			return fmt.Errorf("failed to load request: %w", err)
		}

		var book models.Book
		if err := tx.First(&book, request.BookID).Error; err != nil {
			return fmt.Errorf("failed to load book: %w", err)
		}

		if request.RequesterID != actorID && book.OwnerID != actorID {
			return fmt.Errorf("%w: only the borrower or the book owner can return a loan", ErrPermissionDenied)
		}
		if loan.Returned {
			return fmt.Errorf("%w: loan is already returned", ErrInvalidState)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"returned":    true,
			"return_date": now,
		}
		if rating != nil {
			updates["rating"] = *rating
			updates["review"] = review
		}
		res := tx.Model(&models.BookLoan{}).
			Where("id = ? AND returned = ?", loan.ID, false).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to close loan: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: loan is already returned", ErrInvalidState)
		}

		err := tx.Model(&models.Book{}).Where("id = ?", book.ID).
			Update("availability", models.BookAvailable).Error
		if err != nil {
			return fmt.Errorf("failed to mark book as available: %w", err)
		}

		err = tx.Model(&models.BookRequest{}).Where("id = ?", request.ID).
			Updates(map[string]interface{}{"status": models.RequestCompleted, "updated_at": now}).Error
		if err != nil {
			return fmt.Errorf("failed to complete request: %w", err)
		}

		ownerID = book.OwnerID
		bookTitle = book.Title
		return nil
	})
	if err != nil {
		return err
	}

	notifyLendingEvent(ctx, ownerID, "book_returned",
		fmt.Sprintf("%q was returned", bookTitle), loanID)

	return nil
}

// MyRequests возвращает заявки, отправленные пользователем
func (ls *LendingService) MyRequests(ctx context.Context, userID int64) ([]models.RequestInfo, error) {
	var requests []models.RequestInfo
	err := db.GetReadOnlyDB(ctx).
		Table("book_requests r").
		Joins("JOIN books b ON b.id = r.book_id").
		Where("r.requester_id = ?", userID).
		Select("r.id, r.book_id, b.title AS book_title, b.author AS book_author, r.requester_id, r.request_type, r.status, r.message, r.created_at").
		Order("r.created_at DESC").
		Scan(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get requests: %w", err)
	}
	return requests, nil
}

// IncomingRequests возвращает входящие pending-заявки на книги владельца
func (ls *LendingService) IncomingRequests(ctx context.Context, ownerID int64) ([]models.RequestInfo, error) {
	var requests []models.RequestInfo
	err := db.GetReadOnlyDB(ctx).
		Table("book_requests r").
		Joins("JOIN books b ON b.id = r.book_id").
		Where("b.owner_id = ? AND r.status = ?", ownerID, models.RequestPending).
		Select("r.id, r.book_id, b.title AS book_title, b.author AS book_author, r.requester_id, r.request_type, r.status, r.message, r.created_at").
		Order("r.created_at DESC").
		Scan(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get incoming requests: %w", err)
	}
	return requests, nil
}

// MyLoans возвращает займы пользователя как заемщика
func (ls *LendingService) MyLoans(ctx context.Context, userID int64) ([]models.LoanInfo, error) {
	return ls.loans(ctx, "r.requester_id = ?", userID)
}

// MyLentBooks возвращает займы по книгам пользователя как владельца
func (ls *LendingService) MyLentBooks(ctx context.Context, ownerID int64) ([]models.LoanInfo, error) {
	return ls.loans(ctx, "b.owner_id = ?", ownerID)
}

func (ls *LendingService) loans(ctx context.Context, cond string, arg int64) ([]models.LoanInfo, error) {
	var loans []models.LoanInfo
	err := db.GetReadOnlyDB(ctx).
		Table("book_loans l").
		Joins("JOIN book_requests r ON r.id = l.book_request_id").
		Joins("JOIN books b ON b.id = r.book_id").
		Where(cond, arg).
		Select("l.id, b.id AS book_id, b.title AS book_title, b.author AS book_author, r.requester_id, b.owner_id, l.due_date, l.return_date, l.returned, l.rating, l.review").
		Order("l.created_at DESC").
		Scan(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}
	return loans, nil
}
