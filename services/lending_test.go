package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookswap/db"
	"bookswap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB инициализирует тестовую базу данных SQLite в памяти
func setupTestDB(t *testing.T) {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAll(database))
	db.ORM = database
}

func createTestUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "testpassword",
		FirstName: "Test",
		LastName:  "User",
	}
	require.NoError(t, db.ORM.Create(user).Error)
	return user
}

func createTestBook(t *testing.T, ownerID int64, title string) *models.Book {
	t.Helper()
	book := &models.Book{
		OwnerID:      ownerID,
		Title:        title,
		Author:       "Test Author",
		Genre:        "Fiction",
		Condition:    models.ConditionGood,
		LendingType:  models.LendingOnly,
		Availability: models.BookAvailable,
	}
	require.NoError(t, db.ORM.Create(book).Error)
	return book
}

func submitTestRequest(t *testing.T, requesterID, bookID int64) *models.BookRequest {
	t.Helper()
	request, err := NewLendingService().SubmitRequest(
		context.Background(), requesterID, bookID, models.RequestBorrow, nil, "please")
	require.NoError(t, err)
	return request
}

func TestSubmitRequest(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")

	ls := NewLendingService()
	request, err := ls.SubmitRequest(context.Background(), requester.ID, book.ID, models.RequestBorrow, nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, request.Status)

	// Доступность книги заявка не меняет
	var stored models.Book
	require.NoError(t, db.ORM.First(&stored, book.ID).Error)
	assert.Equal(t, models.BookAvailable, stored.Availability)
}

func TestSubmitRequestUnknownBook(t *testing.T) {
	setupTestDB(t)
	requester := createTestUser(t, "requester")

	_, err := NewLendingService().SubmitRequest(context.Background(), requester.ID, 9999, models.RequestBorrow, nil, "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSubmitRequestBadType(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")

	_, err := NewLendingService().SubmitRequest(context.Background(), requester.ID, book.ID, "steal", nil, "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestSubmitSwapRequestForeignSwapBook(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")
	// Книга для обмена принадлежит владельцу, а не заявителю
	foreign := createTestBook(t, owner.ID, "Hyperion")

	_, err := NewLendingService().SubmitRequest(context.Background(), requester.ID, book.ID,
		models.RequestSwap, &foreign.ID, "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAcceptRequestSingleWinner(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	u2 := createTestUser(t, "u2")
	u3 := createTestUser(t, "u3")
	u4 := createTestUser(t, "u4")
	book := createTestBook(t, owner.ID, "Dune")

	r1 := submitTestRequest(t, u2.ID, book.ID)
	r2 := submitTestRequest(t, u3.ID, book.ID)
	r3 := submitTestRequest(t, u4.ID, book.ID)

	ls := NewLendingService()
	loan, err := ls.AcceptRequest(context.Background(), owner.ID, r1.ID)
	require.NoError(t, err)
	require.NotNil(t, loan)

	var stored models.BookRequest
	require.NoError(t, db.ORM.First(&stored, r1.ID).Error)
	assert.Equal(t, models.RequestAccepted, stored.Status)

	// Все конкурирующие заявки отклонены
	for _, id := range []int64{r2.ID, r3.ID} {
		stored = models.BookRequest{}
		require.NoError(t, db.ORM.First(&stored, id).Error)
		assert.Equal(t, models.RequestDeclined, stored.Status)
	}

	var book2 models.Book
	require.NoError(t, db.ORM.First(&book2, book.ID).Error)
	assert.Equal(t, models.BookBorrowed, book2.Availability)

	// Ровно один займ по книге
	var loanCount int64
	require.NoError(t, db.ORM.Model(&models.BookLoan{}).
		Joins("JOIN book_requests r ON r.id = book_loans.book_request_id").
		Where("r.book_id = ?", book.ID).Count(&loanCount).Error)
	assert.Equal(t, int64(1), loanCount)
}

func TestAcceptRequestNotOwner(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	stranger := createTestUser(t, "stranger")
	book := createTestBook(t, owner.ID, "Dune")
	r := submitTestRequest(t, requester.ID, book.ID)

	ls := NewLendingService()
	_, err := ls.AcceptRequest(context.Background(), stranger.ID, r.ID)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	// Даже сам заявитель не может принять свою заявку
	_, err = ls.AcceptRequest(context.Background(), requester.ID, r.ID)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
}

func TestAcceptDeclinedRequest(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	u2 := createTestUser(t, "u2")
	u3 := createTestUser(t, "u3")
	book := createTestBook(t, owner.ID, "Dune")

	r1 := submitTestRequest(t, u2.ID, book.ID)
	r2 := submitTestRequest(t, u3.ID, book.ID)

	ls := NewLendingService()
	_, err := ls.AcceptRequest(context.Background(), owner.ID, r1.ID)
	require.NoError(t, err)

	// R2 автоматически отклонена, повторный accept невозможен
	_, err = ls.AcceptRequest(context.Background(), owner.ID, r2.ID)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestAcceptRequestBookUnavailable(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")
	r := submitTestRequest(t, requester.ID, book.ID)

	require.NoError(t, db.ORM.Model(&models.Book{}).Where("id = ?", book.ID).
		Update("availability", models.BookUnavailable).Error)

	_, err := NewLendingService().AcceptRequest(context.Background(), owner.ID, r.ID)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestAcceptRequestDueDate(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")
	r := submitTestRequest(t, requester.ID, book.ID)

	before := time.Now()
	loan, err := NewLendingService().AcceptRequest(context.Background(), owner.ID, r.ID)
	after := time.Now()
	require.NoError(t, err)

	assert.False(t, loan.DueDate.Before(before.AddDate(0, 0, LoanPeriodDays)))
	assert.False(t, loan.DueDate.After(after.AddDate(0, 0, LoanPeriodDays)))
	assert.False(t, loan.Returned)
}

func TestDeclineRequest(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	other := createTestUser(t, "other")
	book := createTestBook(t, owner.ID, "Dune")
	r1 := submitTestRequest(t, requester.ID, book.ID)
	r2 := submitTestRequest(t, other.ID, book.ID)

	ls := NewLendingService()
	require.NoError(t, ls.DeclineRequest(context.Background(), owner.ID, r1.ID))

	var stored models.BookRequest
	require.NoError(t, db.ORM.First(&stored, r1.ID).Error)
	assert.Equal(t, models.RequestDeclined, stored.Status)

	// Книга и соседняя заявка не затронуты
	var book2 models.Book
	require.NoError(t, db.ORM.First(&book2, book.ID).Error)
	assert.Equal(t, models.BookAvailable, book2.Availability)
	stored = models.BookRequest{}
	require.NoError(t, db.ORM.First(&stored, r2.ID).Error)
	assert.Equal(t, models.RequestPending, stored.Status)

	// Повторное отклонение - ошибка состояния
	err := ls.DeclineRequest(context.Background(), owner.ID, r1.ID)
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestDeclineRequestNotOwner(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")
	r := submitTestRequest(t, requester.ID, book.ID)

	err := NewLendingService().DeclineRequest(context.Background(), requester.ID, r.ID)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
}

func TestCancelRequest(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")
	r := submitTestRequest(t, requester.ID, book.ID)

	ls := NewLendingService()
	// Владелец не может отменить чужую заявку
	err := ls.CancelRequest(context.Background(), owner.ID, r.ID)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	require.NoError(t, ls.CancelRequest(context.Background(), requester.ID, r.ID))

	var stored models.BookRequest
	require.NoError(t, db.ORM.First(&stored, r.ID).Error)
	assert.Equal(t, models.RequestCancelled, stored.Status)
}

func TestReturnBook(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")
	r := submitTestRequest(t, requester.ID, book.ID)

	ls := NewLendingService()
	loan, err := ls.AcceptRequest(context.Background(), owner.ID, r.ID)
	require.NoError(t, err)

	rating := 5
	require.NoError(t, ls.ReturnBook(context.Background(), requester.ID, loan.ID, &rating, "great"))

	var storedLoan models.BookLoan
	require.NoError(t, db.ORM.First(&storedLoan, loan.ID).Error)
	assert.True(t, storedLoan.Returned)
	require.NotNil(t, storedLoan.ReturnDate)
	require.NotNil(t, storedLoan.Rating)
	assert.Equal(t, 5, *storedLoan.Rating)
	assert.Equal(t, "great", storedLoan.Review)

	var storedBook models.Book
	require.NoError(t, db.ORM.First(&storedBook, book.ID).Error)
	assert.Equal(t, models.BookAvailable, storedBook.Availability)

	var storedRequest models.BookRequest
	require.NoError(t, db.ORM.First(&storedRequest, r.ID).Error)
	assert.Equal(t, models.RequestCompleted, storedRequest.Status)
}

func TestReturnBookTwice(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")
	r := submitTestRequest(t, requester.ID, book.ID)

	ls := NewLendingService()
	loan, err := ls.AcceptRequest(context.Background(), owner.ID, r.ID)
	require.NoError(t, err)

	require.NoError(t, ls.ReturnBook(context.Background(), requester.ID, loan.ID, nil, ""))

	var first models.BookLoan
	require.NoError(t, db.ORM.First(&first, loan.ID).Error)

	// Повторный возврат отклоняется и ничего не меняет
	err = ls.ReturnBook(context.Background(), requester.ID, loan.ID, nil, "")
	assert.True(t, errors.Is(err, ErrInvalidState))

	var second models.BookLoan
	require.NoError(t, db.ORM.First(&second, loan.ID).Error)
	assert.Equal(t, first, second)
}

func TestReturnBookByOwner(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")
	r := submitTestRequest(t, requester.ID, book.ID)

	ls := NewLendingService()
	loan, err := ls.AcceptRequest(context.Background(), owner.ID, r.ID)
	require.NoError(t, err)

	// Владелец тоже может закрыть займ
	require.NoError(t, ls.ReturnBook(context.Background(), owner.ID, loan.ID, nil, ""))
}

func TestReturnBookStranger(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	stranger := createTestUser(t, "stranger")
	book := createTestBook(t, owner.ID, "Dune")
	r := submitTestRequest(t, requester.ID, book.ID)

	ls := NewLendingService()
	loan, err := ls.AcceptRequest(context.Background(), owner.ID, r.ID)
	require.NoError(t, err)

	err = ls.ReturnBook(context.Background(), stranger.ID, loan.ID, nil, "")
	assert.True(t, errors.Is(err, ErrPermissionDenied))
}

func TestReturnBookBadRating(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")
	r := submitTestRequest(t, requester.ID, book.ID)

	ls := NewLendingService()
	loan, err := ls.AcceptRequest(context.Background(), owner.ID, r.ID)
	require.NoError(t, err)

	for _, rating := range []int{0, 6, -1} {
		badRating := rating
		err = ls.ReturnBook(context.Background(), requester.ID, loan.ID, &badRating, "")
		assert.True(t, errors.Is(err, ErrValidation))
	}

	// Займ остался открытым
	var stored models.BookLoan
	require.NoError(t, db.ORM.First(&stored, loan.ID).Error)
	assert.False(t, stored.Returned)
}

// Полный сценарий: две заявки, accept первой, возврат, повторный возврат
func TestLendingLifecycleScenario(t *testing.T) {
	setupTestDB(t)
	u1 := createTestUser(t, "u1")
	u2 := createTestUser(t, "u2")
	u3 := createTestUser(t, "u3")
	book := createTestBook(t, u1.ID, "Dune")

	r1 := submitTestRequest(t, u2.ID, book.ID)
	r2 := submitTestRequest(t, u3.ID, book.ID)

	ls := NewLendingService()
	loan, err := ls.AcceptRequest(context.Background(), u1.ID, r1.ID)
	require.NoError(t, err)

	var stored models.BookRequest
	require.NoError(t, db.ORM.First(&stored, r1.ID).Error)
	assert.Equal(t, models.RequestAccepted, stored.Status)
	stored = models.BookRequest{}
	require.NoError(t, db.ORM.First(&stored, r2.ID).Error)
	assert.Equal(t, models.RequestDeclined, stored.Status)

	// Accept отклоненной заявки - ошибка состояния
	_, err = ls.AcceptRequest(context.Background(), u1.ID, r2.ID)
	assert.True(t, errors.Is(err, ErrInvalidState))

	require.NoError(t, ls.ReturnBook(context.Background(), u2.ID, loan.ID, nil, ""))

	var storedBook models.Book
	require.NoError(t, db.ORM.First(&storedBook, book.ID).Error)
	assert.Equal(t, models.BookAvailable, storedBook.Availability)
	stored = models.BookRequest{}
	require.NoError(t, db.ORM.First(&stored, r1.ID).Error)
	assert.Equal(t, models.RequestCompleted, stored.Status)

	err = ls.ReturnBook(context.Background(), u2.ID, loan.ID, nil, "")
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestLoanViews(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")
	r := submitTestRequest(t, requester.ID, book.ID)

	ls := NewLendingService()
	_, err := ls.AcceptRequest(context.Background(), owner.ID, r.ID)
	require.NoError(t, err)

	loans, err := ls.MyLoans(context.Background(), requester.ID)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, "Dune", loans[0].BookTitle)
	assert.Equal(t, owner.ID, loans[0].OwnerID)

	lent, err := ls.MyLentBooks(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, lent, 1)
	assert.Equal(t, requester.ID, lent[0].RequesterID)

	// У постороннего пользователя займов нет
	empty, err := ls.MyLoans(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Len(t, empty, 0)
}

func TestRequestViews(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner")
	requester := createTestUser(t, "requester")
	book := createTestBook(t, owner.ID, "Dune")
	submitTestRequest(t, requester.ID, book.ID)

	ls := NewLendingService()
	mine, err := ls.MyRequests(context.Background(), requester.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Dune", mine[0].BookTitle)

	incoming, err := ls.IncomingRequests(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, models.RequestPending, incoming[0].Status)

	// После отклонения входящих заявок не остается
	require.NoError(t, ls.DeclineRequest(context.Background(), owner.ID, incoming[0].ID))
	incoming, err = ls.IncomingRequests(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Len(t, incoming, 0)
}
