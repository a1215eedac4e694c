package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"weightguard/internal/model"
	"weightguard/pkg/logger"
)

// AlertHandler 告警事件处理函数
type AlertHandler func(ctx context.Context, event *model.AlertEvent) error

// PubSub 告警事件发布/订阅
type PubSub struct {
	client  *redis.Client
	channel string
	log     logger.Logger
}

// NewPubSub 创建 PubSub 实例
func NewPubSub(client *redis.Client, channel string, log logger.Logger) *PubSub {
	return &PubSub{client: client, channel: channel, log: log}
}

// Publish 逐条发布告警事件
func (p *PubSub) Publish(ctx context.Context, events []model.AlertEvent) error {
	for i := range events {
		msg, err := json.Marshal(&events[i])
		if err != nil {
			return fmt.Errorf("failed to marshal alert event: %w", err)
		}
		if err := p.client.Publish(ctx, p.channel, msg).Err(); err != nil {
			return fmt.Errorf("failed to publish alert event: %w", err)
		}
	}
	return nil
}

// Subscribe 订阅告警频道，阻塞直到 ctx 取消
func (p *PubSub) Subscribe(ctx context.Context, handle AlertHandler) error {
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()

	// 等待订阅确认
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe %s: %w", p.channel, err)
	}
	p.log.Infof(ctx, "subscribed to alert channel %s", p.channel)

	consume(ctx, sub.Channel(), handle, p.log)
	return nil
}

// consume 消费消息直到 ctx 取消或通道关闭
// 单条消息解析或处理失败只记录日志
func consume(ctx context.Context, msgs <-chan *redis.Message, handle AlertHandler, log logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var event model.AlertEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Errorf(ctx, "invalid alert message on %s: %v", msg.Channel, err)
				continue
			}
			evCtx := logger.WithTraceID(ctx, event.ID)
			if err := handle(evCtx, &event); err != nil {
				log.Errorf(evCtx, "handle alert for product %d failed: %v", event.ProductID, err)
			}
		}
	}
}
