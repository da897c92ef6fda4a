package services

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

type NotifyMessage struct {
	NotifyType string `json:"notify_type"`
	Message    string `json:"message"`
}

// SendWsNotify - отправка уведомления через WebSocket
func SendWsNotify(userID int64, notifyType string, message string) error {
	if len(notifyType) == 0 {
		notifyType = "info"
	}
	if len(message) == 0 {
		return nil
	}
	if len(message) > 200 {
		message = message[:200] + "..."
	}
	notify := NotifyMessage{NotifyType: notifyType, Message: message}
	jsonData, err := json.Marshal(notify)
	if err != nil {
		return err
	}
	GlobalWSConnManager.Send(userID, jsonData)
	return nil
}

// notifyLendingEvent публикует событие жизненного цикла в RabbitMQ,
// а если брокер не инициализирован - шлет уведомление напрямую в WebSocket
func notifyLendingEvent(ctx context.Context, userID int64, event, message string, entityID int64) {
	if rabbitChannel != nil {
		go func() {
			err := PublishLendingEvent(context.Background(), LendingEvent{
				UserID:    userID,
				Event:     event,
				Message:   message,
				EntityID:  entityID,
				CreatedAt: time.Now(),
			})
			if err != nil {
				log.Println("Failed to publish lending event:", err)
			}
		}()
		return
	}
	// Fallback - без брокера уведомляем синхронно
	_ = SendWsNotify(userID, event, message)
}
