package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/freelance-platform/marketplace-api/models"
	"github.com/redis/go-redis/v9"
)

// Notifier announces new messages to their receivers. Delivery is best effort.
type Notifier interface {
	NotifyMessage(ctx context.Context, msg *models.Message) error
}

// MessageNotification is the payload published for every new message
type MessageNotification struct {
	Type       string    `json:"type"`
	MessageID  uint      `json:"message_id"`
	OrderID    uint      `json:"order_id"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationChannel is the pub/sub channel a user's client subscribes to
func NotificationChannel(userID uint) string {
	return fmt.Sprintf("notifications:%d", userID)
}

// RedisNotifier publishes notifications on Redis pub/sub
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a notifier backed by a Redis client
func NewRedisNotifier(addr, password string) *RedisNotifier {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	slog.Info("redis notifier configured", "addr", addr)
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) NotifyMessage(ctx context.Context, msg *models.Message) error {
	payload, err := json.Marshal(MessageNotification{
		Type:       "new_message",
		MessageID:  msg.ID,
		OrderID:    msg.OrderID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	if err := n.client.Publish(ctx, NotificationChannel(msg.ReceiverID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

// NoopNotifier drops every notification. Used when Redis is not configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyMessage(context.Context, *models.Message) error {
	return nil
}
