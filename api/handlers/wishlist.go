package handlers

import (
	"net/http"
	"strconv"

	"bookswap/services"

	"github.com/gin-gonic/gin"
)

var wishlistService = services.NewWishlistService()

type WishlistAddRequest struct {
	Title  string `json:"title" binding:"required"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

func AddToWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req WishlistAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	entry, created, err := wishlistService.Add(c.Request.Context(), userID, req.Title, req.Author, req.ISBN)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":      entry.ID,
		"title":   entry.Title,
		"author":  entry.Author,
		"created": created,
	})
}

func GetWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entries, err := wishlistService.List(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": entries})
}

func DeleteFromWishlist(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wishlist entry ID"})
		return
	}
	if err := wishlistService.Delete(c.Request.Context(), userID, entryID); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Wishlist entry deleted"})
}

// WishlistWithAvailability - вишлист с подходящими доступными книгами
func WishlistWithAvailability(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	matches, err := wishlistService.WithAvailability(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": matches})
}

// FindWishlistMatches - подбор книг под конкретную запись вишлиста
func FindWishlistMatches(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid wishlist entry ID"})
		return
	}
	match, err := wishlistService.FindMatches(c.Request.Context(), userID, entryID, 0)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"wishlist_item":  match.Item,
		"matching_books": match.AvailableBooks,
		"count":          len(match.AvailableBooks),
	})
}
