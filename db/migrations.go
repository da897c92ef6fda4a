package db

import (
	"fmt"

	"gorm.io/gorm"
)

// CreateLifecycleIndexes создает индексы под горячие запросы жизненного цикла:
// входящие заявки владельца и активный займ по книге
func CreateLifecycleIndexes(database *gorm.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_book_requests_book_status ON book_requests (book_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_book_requests_requester_status ON book_requests (requester_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_books_owner_availability ON books (owner_id, availability);`,
	}
	for _, sql := range indexes {
		if err := database.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// CreateStatusEnums создает типы ENUM для статусов, если их еще нет
func CreateStatusEnums(database *gorm.DB) error {
	createEnumSQL := `
	DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'book_availability') THEN
			CREATE TYPE book_availability AS ENUM ('available', 'borrowed', 'unavailable');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'request_status') THEN
			CREATE TYPE request_status AS ENUM ('pending', 'accepted', 'declined', 'completed', 'cancelled');
		END IF;
	END
	$$;
	`
	if err := database.Exec(createEnumSQL).Error; err != nil {
		return fmt.Errorf("failed to create status enums: %w", err)
	}
	return nil
}
