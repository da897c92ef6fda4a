package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"bookswap/db"
	"bookswap/models"

	"github.com/go-redis/redis/v8"
)

const (
	MATCH_QUEUE        = "wishlist_match_queue"
	QUEUE_WORKER_COUNT = 3
)

// MatchTask - задача подбора новой книги под вишлисты пользователей
type MatchTask struct {
	BookID int64 `json:"book_id"`
}

// MatchQueueService раскладывает подбор по вишлистам в фоновые воркеры:
// при добавлении книги владельцы подходящих записей получают уведомление
type MatchQueueService struct {
	wishlistService *WishlistService
}

func NewMatchQueueService() *MatchQueueService {
	return &MatchQueueService{
		wishlistService: NewWishlistService(),
	}
}

// StartWorkers запускает воркеры для обработки очереди
func (qs *MatchQueueService) StartWorkers(ctx context.Context) {
	for i := 0; i < QUEUE_WORKER_COUNT; i++ {
		go qs.worker(ctx, i)
	}
}

// worker обрабатывает задачи из очереди
func (qs *MatchQueueService) worker(ctx context.Context, workerID int) {
	log.Printf("Wishlist match worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Wishlist match worker %d stopping", workerID)
			return
		default:
			// Блокирующий вызов с таймаутом
			result, err := RedisClient.BLPop(ctx, 5*time.Second, MATCH_QUEUE).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				log.Printf("Worker %d error getting task: %v", workerID, err)
				time.Sleep(time.Second)
				continue
			}

			if len(result) < 2 {
				continue
			}

			var task MatchTask
			if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
				log.Printf("Worker %d error unmarshaling task: %v", workerID, err)
				continue
			}

			qs.processTask(ctx, &task, workerID)
		}
	}
}

// processTask находит вишлисты, под которые подходит книга, и уведомляет их владельцев
func (qs *MatchQueueService) processTask(ctx context.Context, task *MatchTask, workerID int) {
	var book models.Book
	if err := db.GetReadOnlyDB(ctx).First(&book, task.BookID).Error; err != nil {
		log.Printf("Worker %d: book %d not found: %v", workerID, task.BookID, err)
		return
	}

	var entries []models.Wishlist
	err := db.GetReadOnlyDB(ctx).
		Where("(LOWER(title) = LOWER(?) OR (author <> '' AND LOWER(author) = LOWER(?))) AND user_id <> ?",
			book.Title, book.Author, book.OwnerID).
		Find(&entries).Error
	if err != nil {
		log.Printf("Worker %d error matching wishlists: %v", workerID, err)
		return
	}

	for _, entry := range entries {
		msg := fmt.Sprintf("A book from your wishlist is now listed: %q by %s", book.Title, book.Author)
		notifyLendingEvent(ctx, entry.UserID, "wishlist_match", msg, book.ID)
	}
}

// EnqueueMatchTask добавляет задачу подбора в очередь
func (qs *MatchQueueService) EnqueueMatchTask(ctx context.Context, bookID int64) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}

	taskData, err := json.Marshal(MatchTask{BookID: bookID})
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = RedisClient.RPush(ctx, MATCH_QUEUE, taskData).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return nil
}

// GetStats возвращает статистику очереди
func (qs *MatchQueueService) GetStats() map[string]interface{} {
	stats := make(map[string]interface{})

	if RedisClient != nil {
		ctx := context.Background()
		stats["queue_length"] = RedisClient.LLen(ctx, MATCH_QUEUE).Val()
		stats["worker_count"] = QUEUE_WORKER_COUNT
		stats["queue_name"] = MATCH_QUEUE
	} else {
		stats["error"] = "Redis not available"
	}

	return stats
}

// MatchQueueInstance глобальный экземпляр сервиса очереди
var MatchQueueInstance *MatchQueueService
