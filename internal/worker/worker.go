package worker

import (
	"context"

	"weightguard/internal/framework"
	"weightguard/pkg/lmstfyx"
	"weightguard/pkg/logger"
)

// Worker 接口
type Worker interface {
	Start()
	Shutdown()
	GetName() string
}

// WorkerInstance Worker 实例（一个队列对应一条 Subscriber → Processor 流水线）
type WorkerInstance struct {
	ctx        context.Context
	name       string
	subscriber *framework.Subscriber
	processor  *framework.Processor
	inputChan  chan *framework.Message
	logger     logger.Logger
}

// NewWorkerInstance 创建 Worker 实例
func NewWorkerInstance(
	ctx context.Context,
	name string,
	subscriberCfg *framework.SubscriberConfig,
	processorCfg *framework.ProcessorConfig,
	source framework.MessageSource,
	proc lmstfyx.Proc,
	log logger.Logger,
) Worker {
	processor := framework.NewProcessor(processorCfg, proc, source, log)
	subscriber := framework.NewSubscriber(subscriberCfg, source, log)

	return &WorkerInstance{
		ctx:        ctx,
		name:       name,
		subscriber: subscriber,
		processor:  processor,
		inputChan:  make(chan *framework.Message, processorCfg.BufferSize),
		logger:     log,
	}
}

// Start 启动 Processor 与 Subscriber 协程后立即返回
func (w *WorkerInstance) Start() {
	w.processor.Start(w.ctx, w.inputChan)
	w.subscriber.Start(w.ctx, w.inputChan)
	w.logger.Infof(w.ctx, "[Worker] %s started", w.name)
}

// Shutdown 优雅退出：停止拉取 → 等待订阅协程 → Drain → 等待处理协程
func (w *WorkerInstance) Shutdown() {
	w.logger.Infof(w.ctx, "[Worker] %s began to close", w.name)

	w.subscriber.Stop()
	w.subscriber.Wait()

	w.processor.SignalShutdown()
	w.processor.Wait()

	w.logger.Infof(w.ctx, "[Worker] %s shutdown complete", w.name)
}

// GetName 获取 Worker 名称
func (w *WorkerInstance) GetName() string {
	return w.name
}
