package handlers

import (
	"net/http"
	"strconv"
	"time"

	"bookswap/api/middleware"
	"bookswap/models"
	"bookswap/services"

	"github.com/gin-gonic/gin"
)

var lendingService = services.NewLendingService()

const lendingServiceName = "bookswap"

type CreateRequestRequest struct {
	BookID      int64  `json:"book" binding:"required"`
	RequestType string `json:"request_type"`
	SwapBookID  *int64 `json:"swap_book"`
	Message     string `json:"message"`
}

func requestIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return 0, false
	}
	return id, true
}

func recordLending(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	middleware.RecordLendingOperation(operation, status, lendingServiceName, time.Since(start))
}

// CreateRequest - подать заявку на чужую книгу
func CreateRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if req.RequestType == "" {
		req.RequestType = string(models.RequestBorrow)
	}

	start := time.Now()
	request, err := lendingService.SubmitRequest(c.Request.Context(), userID, req.BookID,
		models.RequestType(req.RequestType), req.SwapBookID, req.Message)
	recordLending("submit", start, err)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": request.ID})
}

// AcceptRequest - владелец принимает заявку; остальные pending-заявки
// по книге отклоняются, создается займ
func AcceptRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := requestIDParam(c)
	if !ok {
		return
	}

	start := time.Now()
	loan, err := lendingService.AcceptRequest(c.Request.Context(), userID, requestID)
	recordLending("accept", start, err)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "request accepted", "due_date": loan.DueDate})
}

// DeclineRequest - владелец отклоняет заявку
func DeclineRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := requestIDParam(c)
	if !ok {
		return
	}

	start := time.Now()
	err := lendingService.DeclineRequest(c.Request.Context(), userID, requestID)
	recordLending("decline", start, err)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "request declined"})
}

// CancelRequest - заявитель отменяет свою заявку
func CancelRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := requestIDParam(c)
	if !ok {
		return
	}

	start := time.Now()
	err := lendingService.CancelRequest(c.Request.Context(), userID, requestID)
	recordLending("cancel", start, err)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "request cancelled"})
}

func MyRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requests, err := lendingService.MyRequests(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func IncomingRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requests, err := lendingService.IncomingRequests(c.Request.Context(), userID)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
