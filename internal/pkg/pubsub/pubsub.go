package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelAccountEvents = "account_events"
)

// 账号事件类型
const (
	EventRegistered     = "account.registered"
	EventActivated      = "account.activated"
	EventEmailConfirmed = "account.email_confirmed"
	EventEmailChanged   = "account.email_changed"
	EventDeleted        = "account.deleted"
)

// AccountEvent 账号生命周期事件
type AccountEvent struct {
	Type       string    `json:"type"`
	AccountID  int64     `json:"account_id"`
	Nick       string    `json:"nick,omitempty"`
	OperatorID int64     `json:"operator_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishAccountEvent 发布账号事件
func (p *Publisher) PublishAccountEvent(ctx context.Context, event *AccountEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal account event: %w", err)
	}

	return p.client.Publish(ctx, ChannelAccountEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅账号事件，直到 ctx 结束
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*AccountEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelAccountEvents)
	defer pubsub.Close()

	// 等待订阅确认，保证返回前已在频道上
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event AccountEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
