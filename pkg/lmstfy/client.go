package lmstfy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"

	"weightguard/internal/domains/common/job"
	"weightguard/internal/framework"
	"weightguard/pkg/config"
	"weightguard/pkg/logger"
)

// Client Lmstfy 客户端封装
type Client struct {
	cli       *client.LmstfyClient
	namespace string
	jobs      config.JobsConfig
}

// NewClient 创建 Lmstfy 客户端
func NewClient(cfg config.LmstfyConfig, jobs config.JobsConfig) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("lmstfy host is required")
	}
	cli := client.NewLmstfyClient(cfg.Host, cfg.Port, cfg.Namespace, cfg.Token)
	return &Client{
		cli:       cli,
		namespace: cfg.Namespace,
		jobs:      jobs,
	}, nil
}

// Consume 消费消息（实现 MessageSource 接口）
func (c *Client) Consume(queue string, timeout time.Duration, ttr time.Duration) (*framework.Message, error) {
	timeoutSec := uint32(timeout.Seconds())
	ttrSec := uint32(ttr.Seconds())

	job, err := c.cli.Consume(queue, ttrSec, timeoutSec)
	if err != nil {
		return nil, fmt.Errorf("lmstfy consume failed: %w", err)
	}

	// 超时未拉到消息
	if job == nil {
		return nil, nil
	}

	return &framework.Message{
		ID:    job.ID,
		Queue: job.Queue,
		Data:  job.Data,
	}, nil
}

// Ack 确认消息（实现 MessageSource 接口）
func (c *Client) Ack(queue string, jobID string) error {
	if err := c.cli.Ack(queue, jobID); err != nil {
		return fmt.Errorf("lmstfy ack failed: %w", err)
	}
	return nil
}

// Publish 发布原始消息
func (c *Client) Publish(queue string, data []byte, ttl uint32, tries uint16, delay uint32) (string, error) {
	jobID, err := c.cli.Publish(queue, data, ttl, tries, delay)
	if err != nil {
		return "", fmt.Errorf("lmstfy publish failed: %w", err)
	}
	return jobID, nil
}

// Enqueue 发布标准 Job 到任务队列，沿用 ctx 中的 trace_id
func (c *Client) Enqueue(ctx context.Context, actionType, id string, data interface{}) (string, error) {
	j := job.New(actionType, id, data)
	if traceID := logger.TraceID(ctx); traceID != "" {
		j.Payload.Data.RequestID = traceID
	}

	raw, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("marshal job failed: %w", err)
	}
	return c.Publish(c.jobs.Queue, raw, c.jobs.TTL, c.jobs.Tries, 0)
}
