package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginLogoutHTTP(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, "POST", "/api/v1/auth/register", 0, gin.H{
		"username": "reader",
		"email":    "reader@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var registered struct {
		Token  string `json:"token"`
		UserID int64  `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.NotEmpty(t, registered.Token)
	assert.NotZero(t, registered.UserID)

	// Повторная регистрация того же username - 400
	w = doRequest(router, "POST", "/api/v1/auth/register", 0, gin.H{
		"username": "reader",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "POST", "/api/v1/auth/login", 0, gin.H{
		"username": "reader",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var logged struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logged))
	require.NotEmpty(t, logged.Token)

	w = doRequest(router, "POST", "/api/v1/auth/login", 0, gin.H{
		"username": "reader",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Bearer-токен дает доступ к приватным endpoint'ам
	req := httptest.NewRequest("GET", "/api/v1/requests/my", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+logged.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// После logout токен недействителен
	req = httptest.NewRequest("POST", "/api/v1/auth/logout", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+logged.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("GET", "/api/v1/requests/my", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer "+logged.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicBooksHTTP(t *testing.T) {
	router := setupTestRouter(t)
	owner := createUser(t, "owner")
	book := createBook(t, owner.ID, "Dune")

	// Каталог доступен без аутентификации
	w := doRequest(router, "GET", "/api/v1/books/available", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/api/v1/books/get/1", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, book.Title, resp.Title)

	w = doRequest(router, "GET", "/api/v1/books/get/9999", 0, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
