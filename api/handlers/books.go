package handlers

import (
	"net/http"
	"strconv"

	"bookswap/models"
	"bookswap/services"

	"github.com/gin-gonic/gin"
)

var bookService = services.NewBookService()

type BookCreateRequest struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author" binding:"required"`
	ISBN            string `json:"isbn"`
	Genre           string `json:"genre" binding:"required"`
	Description     string `json:"description"`
	Condition       string `json:"condition"`
	LendingType     string `json:"lending_type"`
	PublicationYear *int   `json:"publication_year"`
	CoverImageURL   string `json:"cover_image_url"`
}

func bookIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return 0, false
	}
	return id, true
}

func CreateBook(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req BookCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	book := &models.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		Genre:           req.Genre,
		Description:     req.Description,
		Condition:       req.Condition,
		LendingType:     models.LendingType(req.LendingType),
		PublicationYear: req.PublicationYear,
		CoverImageURL:   req.CoverImageURL,
	}

	created, err := bookService.CreateBook(c.Request.Context(), userID, book)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func GetBook(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}
	book, err := bookService.GetBook(c.Request.Context(), bookID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func UpdateBook(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Принимаем только редактируемые поля
	allowed := map[string]bool{
		"title": true, "author": true, "isbn": true, "genre": true,
		"description": true, "condition": true, "lending_type": true,
		"publication_year": true, "cover_image_url": true,
	}
	updates := make(map[string]interface{})
	for k, v := range req {
		if allowed[k] {
			updates[k] = v
		}
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields provided"})
		return
	}

	book, err := bookService.UpdateBook(c.Request.Context(), userID, bookID, updates)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func DeleteBook(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}
	if err := bookService.DeleteBook(c.Request.Context(), userID, bookID); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted"})
}

func ToggleAvailability(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}
	availability, err := bookService.ToggleAvailability(c.Request.Context(), userID, bookID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Book marked as " + string(availability)})
}

func MyBooks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	books, err := bookService.MyBooks(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

// AvailableBooks - доступные книги, кроме собственных (для анонимов - все)
func AvailableBooks(c *gin.Context) {
	userID := c.GetInt64("user_id")
	books, err := bookService.AvailableBooks(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

func SearchBooks(c *gin.Context) {
	userID := c.GetInt64("user_id")
	params := services.BookSearchParams{
		Query:       c.Query("q"),
		Genre:       c.Query("genre"),
		Author:      c.Query("author"),
		Condition:   c.Query("condition"),
		LendingType: c.Query("lending_type"),
	}
	books, err := bookService.SearchBooks(c.Request.Context(), userID, params)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

func Genres(c *gin.Context) {
	genres, err := bookService.Genres(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

func FeaturedBooks(c *gin.Context) {
	books, err := bookService.FeaturedBooks(c.Request.Context(), 6)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

// BookInfo - обогащение данными Google Books по ISBN книги
func BookInfo(c *gin.Context) {
	bookID, ok := bookIDParam(c)
	if !ok {
		return
	}
	book, err := bookService.GetBook(c.Request.Context(), bookID)
	if err != nil {
		serviceError(c, err)
		return
	}
	if book.ISBN == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book information not found"})
		return
	}
	meta, err := services.FetchMetadataByISBN(c.Request.Context(), book.ISBN)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book information not found"})
		return
	}
	c.JSON(http.StatusOK, meta)
}
