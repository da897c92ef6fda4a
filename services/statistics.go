package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bookswap/db"
	"bookswap/models"
)

const (
	STATS_CACHE_KEY = "marketplace_stats"
	STATS_CACHE_TTL = 60 * time.Second
)

// Statistics - сводные показатели площадки
type Statistics struct {
	TotalBooks     int64 `json:"total_books"`
	TotalUsers     int64 `json:"total_users"`
	TotalLoans     int64 `json:"total_loans"`
	ActiveRequests int64 `json:"active_requests"`
	AvailableBooks int64 `json:"available_books"`
}

type StatsService struct{}

func NewStatsService() *StatsService {
	return &StatsService{}
}

// GetStatistics возвращает статистику, кешируя ее в Redis на короткий TTL
func (ss *StatsService) GetStatistics(ctx context.Context) (*Statistics, error) {
	if stats := ss.fromCache(ctx); stats != nil {
		return stats, nil
	}

	stats, err := ss.fromDB(ctx)
	if err != nil {
		return nil, err
	}

	ss.cache(ctx, stats)
	return stats, nil
}

func (ss *StatsService) fromDB(ctx context.Context) (*Statistics, error) {
	var stats Statistics
	conn := db.GetReadOnlyDB(ctx)

	if err := conn.Model(&models.Book{}).Count(&stats.TotalBooks).Error; err != nil {
		return nil, fmt.Errorf("failed to collect statistics: %w", err)
	}
	if err := conn.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to collect statistics: %w", err)
	}
	if err := conn.Model(&models.BookLoan{}).Count(&stats.TotalLoans).Error; err != nil {
		return nil, fmt.Errorf("failed to collect statistics: %w", err)
	}
	if err := conn.Model(&models.BookRequest{}).
		Where("status = ?", models.RequestPending).Count(&stats.ActiveRequests).Error; err != nil {
		return nil, fmt.Errorf("failed to collect statistics: %w", err)
	}
	if err := conn.Model(&models.Book{}).
		Where("availability = ?", models.BookAvailable).Count(&stats.AvailableBooks).Error; err != nil {
		return nil, fmt.Errorf("failed to collect statistics: %w", err)
	}
	return &stats, nil
}

func (ss *StatsService) fromCache(ctx context.Context) *Statistics {
	if RedisClient == nil {
		return nil
	}
	data, err := RedisClient.Get(ctx, STATS_CACHE_KEY).Result()
	if err != nil {
		return nil
	}
	var stats Statistics
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil
	}
	return &stats
}

func (ss *StatsService) cache(ctx context.Context, stats *Statistics) {
	if RedisClient == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	RedisClient.Set(ctx, STATS_CACHE_KEY, data, STATS_CACHE_TTL)
}
