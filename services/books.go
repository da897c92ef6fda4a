package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bookswap/db"
	"bookswap/models"

	"gorm.io/gorm"
)

// BookSearchParams - параметры поиска по каталогу
type BookSearchParams struct {
	Query       string
	Genre       string
	Author      string
	Condition   string
	LendingType string
}

type BookService struct{}

func NewBookService() *BookService {
	return &BookService{}
}

// CreateBook добавляет книгу владельца в каталог и ставит задачу
// подбора по вишлистам в очередь
func (bs *BookService) CreateBook(ctx context.Context, ownerID int64, book *models.Book) (*models.Book, error) {
	if book.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if book.Author == "" {
		return nil, fmt.Errorf("%w: author is required", ErrValidation)
	}
	if book.Genre == "" {
		return nil, fmt.Errorf("%w: genre is required", ErrValidation)
	}
	if book.Condition == "" {
		book.Condition = models.ConditionGood
	}
	if book.LendingType == "" {
		book.LendingType = models.LendingOnly
	}

	book.OwnerID = ownerID
	book.Availability = models.BookAvailable
	book.CreatedAt = time.Now()
	book.UpdatedAt = time.Now()

	if err := db.GetWriteDB(ctx).Create(book).Error; err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	if MatchQueueInstance != nil && RedisClient != nil {
		go func(bookID int64) {
			if err := MatchQueueInstance.EnqueueMatchTask(context.Background(), bookID); err != nil {
				log.Println("Failed to enqueue wishlist match task:", err)
			}
		}(book.ID)
	}

	return book, nil
}

// GetBook возвращает книгу по ID
func (bs *BookService) GetBook(ctx context.Context, bookID int64) (*models.Book, error) {
	var book models.Book
	err := db.GetReadOnlyDB(ctx).First(&book, bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: book %d", ErrNotFound, bookID)
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}
	return &book, nil
}

// UpdateBook обновляет поля книги. Только владелец.
func (bs *BookService) UpdateBook(ctx context.Context, actorID, bookID int64, updates map[string]interface{}) (*models.Book, error) {
	book, err := bs.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.OwnerID != actorID {
		return nil, fmt.Errorf("%w: you can only edit your own books", ErrPermissionDenied)
	}

	updates["updated_at"] = time.Now()
	err = db.GetWriteDB(ctx).Model(&models.Book{}).Where("id = ?", bookID).Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	return bs.GetBook(ctx, bookID)
}

// DeleteBook удаляет книгу из каталога. Только владелец.
func (bs *BookService) DeleteBook(ctx context.Context, actorID, bookID int64) error {
	book, err := bs.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	if book.OwnerID != actorID {
		return fmt.Errorf("%w: you can only delete your own books", ErrPermissionDenied)
	}
	return db.GetWriteDB(ctx).Delete(&models.Book{}, bookID).Error
}

// ToggleAvailability переключает книгу между available и unavailable.
// Для borrowed переключение запрещено: этим статусом управляет только
// жизненный цикл займа.
func (bs *BookService) ToggleAvailability(ctx context.Context, actorID, bookID int64) (models.Availability, error) {
	book, err := bs.GetBook(ctx, bookID)
	if err != nil {
		return "", err
	}
	if book.OwnerID != actorID {
		return "", fmt.Errorf("%w: you can only modify your own books", ErrPermissionDenied)
	}

	var next models.Availability
	switch book.Availability {
	case models.BookAvailable:
		next = models.BookUnavailable
	case models.BookUnavailable:
		next = models.BookAvailable
	default:
		return "", fmt.Errorf("%w: borrowed books cannot be toggled", ErrInvalidState)
	}

	res := db.GetWriteDB(ctx).Model(&models.Book{}).
		Where("id = ? AND availability = ?", bookID, book.Availability).
		Update("availability", next)
	if res.Error != nil {
		return "", fmt.Errorf("failed to toggle availability: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", fmt.Errorf("%w: availability changed concurrently", ErrInvalidState)
	}
	return next, nil
}

// MyBooks возвращает книги владельца
func (bs *BookService) MyBooks(ctx context.Context, ownerID int64) ([]models.Book, error) {
	var books []models.Book
	err := db.GetReadOnlyDB(ctx).Where("owner_id = ?", ownerID).
		Order("created_at DESC").Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get books: %w", err)
	}
	return books, nil
}

// AvailableBooks возвращает доступные книги, кроме книг самого пользователя
func (bs *BookService) AvailableBooks(ctx context.Context, excludeOwnerID int64) ([]models.Book, error) {
	query := db.GetReadOnlyDB(ctx).Where("availability = ?", models.BookAvailable)
	if excludeOwnerID > 0 {
		query = query.Where("owner_id <> ?", excludeOwnerID)
	}
	var books []models.Book
	if err := query.Order("created_at DESC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to get available books: %w", err)
	}
	return books, nil
}

// SearchBooks ищет по доступным чужим книгам с фильтрами.
// lending_type матчится вместе с both.
func (bs *BookService) SearchBooks(ctx context.Context, excludeOwnerID int64, params BookSearchParams) ([]models.Book, error) {
	query := db.GetReadOnlyDB(ctx).Where("availability = ?", models.BookAvailable)
	if excludeOwnerID > 0 {
		query = query.Where("owner_id <> ?", excludeOwnerID)
	}

	if params.Query != "" {
		like := "%" + params.Query + "%"
		query = query.Where(
			"title LIKE ? OR author LIKE ? OR isbn LIKE ? OR description LIKE ?",
			like, like, like, like,
		)
	}
	if params.Genre != "" {
		query = query.Where("genre LIKE ?", "%"+params.Genre+"%")
	}
	if params.Author != "" {
		query = query.Where("author LIKE ?", "%"+params.Author+"%")
	}
	if params.Condition != "" {
		query = query.Where("condition = ?", params.Condition)
	}
	if params.LendingType != "" {
		query = query.Where("lending_type IN (?)", []string{params.LendingType, string(models.LendingBoth)})
	}

	var books []models.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}
	return books, nil
}

// Genres возвращает список жанров каталога
func (bs *BookService) Genres(ctx context.Context) ([]string, error) {
	var genres []string
	err := db.GetReadOnlyDB(ctx).Model(&models.Book{}).
		Distinct("genre").Order("genre").Pluck("genre", &genres).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get genres: %w", err)
	}
	return genres, nil
}

// FeaturedBooks возвращает самые запрашиваемые доступные книги
func (bs *BookService) FeaturedBooks(ctx context.Context, limit int) ([]models.Book, error) {
	if limit <= 0 {
		limit = 6
	}
	var books []models.Book
	err := db.GetReadOnlyDB(ctx).
		Table("books b").
		Joins("LEFT JOIN book_requests r ON r.book_id = b.id").
		Where("b.availability = ?", models.BookAvailable).
		Group("b.id").
		Order("COUNT(r.id) DESC, b.created_at DESC").
		Limit(limit).
		Select("b.*").
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get featured books: %w", err)
	}
	return books, nil
}
