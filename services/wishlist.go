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

// WishlistMatch - запись вишлиста вместе с подходящими доступными книгами
type WishlistMatch struct {
	Item           models.Wishlist `json:"item"`
	AvailableBooks []models.Book   `json:"available_books"`
	HasAvailable   bool            `json:"has_available"`
}

type WishlistService struct{}

func NewWishlistService() *WishlistService {
	return &WishlistService{}
}

// Add добавляет запись в вишлист. Повторная запись с тем же
// (user, title, author) возвращает существующую.
func (ws *WishlistService) Add(ctx context.Context, userID int64, title, author, isbn string) (*models.Wishlist, bool, error) {
	if title == "" {
		return nil, false, fmt.Errorf("%w: title is required", ErrValidation)
	}

	var existing models.Wishlist
	err := db.GetReadOnlyDB(ctx).
		Where("user_id = ? AND title = ? AND author = ?", userID, title, author).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to check wishlist: %w", err)
	}

	entry := &models.Wishlist{
		UserID:    userID,
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		CreatedAt: time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(entry).Error; err != nil {
		return nil, false, fmt.Errorf("failed to add wishlist entry: %w", err)
	}
	return entry, true, nil
}

// List возвращает вишлист пользователя
func (ws *WishlistService) List(ctx context.Context, userID int64) ([]models.Wishlist, error) {
	var entries []models.Wishlist
	err := db.GetReadOnlyDB(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	return entries, nil
}

// Delete удаляет запись вишлиста. Только владелец записи.
func (ws *WishlistService) Delete(ctx context.Context, userID, entryID int64) error {
	res := db.GetWriteDB(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&models.Wishlist{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete wishlist entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: wishlist entry %d", ErrNotFound, entryID)
	}
	return nil
}

// FindMatches ищет доступные чужие книги под запись вишлиста
func (ws *WishlistService) FindMatches(ctx context.Context, userID, entryID int64, limit int) (*WishlistMatch, error) {
	var entry models.Wishlist
	err := db.GetReadOnlyDB(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: wishlist entry %d", ErrNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to load wishlist entry: %w", err)
	}

	books, err := ws.matchBooks(ctx, &entry, userID, limit)
	if err != nil {
		return nil, err
	}
	return &WishlistMatch{Item: entry, AvailableBooks: books, HasAvailable: len(books) > 0}, nil
}

// WithAvailability возвращает весь вишлист с подходящими книгами (до 3 на запись)
func (ws *WishlistService) WithAvailability(ctx context.Context, userID int64) ([]WishlistMatch, error) {
	entries, err := ws.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]WishlistMatch, 0, len(entries))
	for i := range entries {
		books, err := ws.matchBooks(ctx, &entries[i], userID, 3)
		if err != nil {
			return nil, err
		}
		result = append(result, WishlistMatch{
			Item:           entries[i],
			AvailableBooks: books,
			HasAvailable:   len(books) > 0,
		})
	}
	return result, nil
}

func (ws *WishlistService) matchBooks(ctx context.Context, entry *models.Wishlist, excludeOwnerID int64, limit int) ([]models.Book, error) {
	query := db.GetReadOnlyDB(ctx).
		Where("availability = ?", models.BookAvailable).
		Where("owner_id <> ?", excludeOwnerID).
		Where("title LIKE ? OR (? <> '' AND author LIKE ?)",
			"%"+entry.Title+"%", entry.Author, "%"+entry.Author+"%")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var books []models.Book
	if err := query.Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to match books: %w", err)
	}
	return books, nil
}
