package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type ReturnBookRequest struct {
	Rating *int   `json:"rating"`
	Review string `json:"review"`
}

func loanIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan ID"})
		return 0, false
	}
	return id, true
}

// ReturnBook - закрыть займ (заемщик или владелец книги)
func ReturnBook(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	loanID, ok := loanIDParam(c)
	if !ok {
		return
	}

	var req ReturnBookRequest
	// Тело опционально: возврат без оценки тоже валиден
	_ = c.ShouldBindJSON(&req)

	start := time.Now()
	err := lendingService.ReturnBook(c.Request.Context(), userID, loanID, req.Rating, req.Review)
	recordLending("return", start, err)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "book returned"})
}

// MyLoans - займы пользователя как заемщика
func MyLoans(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	loans, err := lendingService.MyLoans(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans})
}

// MyLentBooks - займы по книгам пользователя как владельца
func MyLentBooks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	loans, err := lendingService.MyLentBooks(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans})
}
