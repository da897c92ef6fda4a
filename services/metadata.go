package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const googleBooksBase = "https://www.googleapis.com/books/v1/volumes"

// Короткий таймаут: медленный ответ внешнего API не должен держать запрос
var googleBooksClient = &http.Client{Timeout: 15 * time.Second}

// BookMetadata - нормализованный ответ внешнего поиска по ISBN
type BookMetadata struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	PublishedDate string   `json:"published_date"`
	Categories    []string `json:"categories"`
	PageCount     int      `json:"page_count"`
	CoverURL      string   `json:"cover_url"`
}

type googleBooksVolumesResp struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			PublishedDate string   `json:"publishedDate"`
			Description   string   `json:"description"`
			PageCount     int      `json:"pageCount"`
			Categories    []string `json:"categories"`
			ImageLinks    struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// FetchMetadataByISBN запрашивает данные о книге в Google Books по ISBN
func FetchMetadataByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	if isbn == "" {
		return nil, fmt.Errorf("%w: isbn is required", ErrValidation)
	}

	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleBooksBase+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := googleBooksClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books returned %d", resp.StatusCode)
	}

	var data googleBooksVolumesResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	if data.TotalItems == 0 || len(data.Items) == 0 {
		return nil, fmt.Errorf("%w: no volume found for isbn %s", ErrNotFound, isbn)
	}

	vi := data.Items[0].VolumeInfo
	return &BookMetadata{
		Title:         vi.Title,
		Authors:       vi.Authors,
		Description:   strings.TrimSpace(vi.Description),
		PublishedDate: vi.PublishedDate,
		Categories:    vi.Categories,
		PageCount:     vi.PageCount,
		CoverURL:      vi.ImageLinks.Thumbnail,
	}, nil
}
