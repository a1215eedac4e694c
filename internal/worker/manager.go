package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"weightguard/internal/framework"
	"weightguard/pkg/config"
	"weightguard/pkg/lmstfyx"
	"weightguard/pkg/logger"
)

// Manager 接口
type Manager interface {
	// AddTask 注册后台任务（告警订阅、汇总调度等），须在 Start 之前调用
	AddTask(name string, task Task)
	Start() error
	Shutdown()
}

// Task 后台任务，ctx 取消时应返回
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	run  Task
}

// ManagerInstance Manager 实例
type ManagerInstance struct {
	ctx        context.Context
	cancel     context.CancelFunc
	cfg        *config.Config
	source     framework.MessageSource
	proc       lmstfyx.Proc
	workers    []Worker
	tasks      []namedTask
	closing    *atomic.Bool
	shutdownCh chan struct{}
	taskWg     sync.WaitGroup
	mu         sync.RWMutex
	logger     logger.Logger
}

// NewManagerInstance 创建 Manager
func NewManagerInstance(cfg *config.Config, source framework.MessageSource, proc lmstfyx.Proc, log logger.Logger) (Manager, error) {
	if source == nil {
		return nil, fmt.Errorf("message source is required")
	}
	if proc == nil {
		return nil, fmt.Errorf("process func is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ManagerInstance{
		ctx:        ctx,
		cancel:     cancel,
		cfg:        cfg,
		source:     source,
		proc:       proc,
		closing:    atomic.NewBool(false),
		shutdownCh: make(chan struct{}),
		logger:     log,
	}, nil
}

// AddTask 注册后台任务
func (m *ManagerInstance) AddTask(name string, task Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, namedTask{name: name, run: task})
}

// Start 启动 Manager，阻塞直到 Shutdown 完成
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting...")

	m.mu.Lock()
	if m.closing.Load() {
		m.mu.Unlock()
		return fmt.Errorf("manager is closing")
	}
	m.loadWorkers()

	// 1. 启动所有 Worker
	for _, w := range m.workers {
		w.Start()
	}

	// 2. 启动后台任务
	for _, task := range m.tasks {
		t := task
		m.taskWg.Add(1)
		go func() {
			defer m.taskWg.Done()
			m.runTask(t)
		}()
	}
	m.mu.Unlock()

	m.logger.Infof(m.ctx, "[Manager] Start success, workers: %d, tasks: %d", len(m.workers), len(m.tasks))

	// 3. 阻塞等待退出信号
	<-m.shutdownCh
	return nil
}

// runTask 运行后台任务，非取消导致的错误只记录日志
func (m *ManagerInstance) runTask(t namedTask) {
	m.logger.Infof(m.ctx, "[Manager] Task started: %s", t.name)
	err := t.run(m.ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Errorf(m.ctx, "[Manager] Task %s exited with error: %v", t.name, err)
		return
	}
	m.logger.Infof(m.ctx, "[Manager] Task exited: %s", t.name)
}

// Shutdown 优雅退出
func (m *ManagerInstance) Shutdown() {
	if !m.closing.CAS(false, true) {
		return
	}
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	m.mu.RLock()
	workers := m.workers
	m.mu.RUnlock()

	// 1. 停止后台任务
	m.cancel()

	// 2. 所有 Worker 安全退出
	for _, worker := range workers {
		m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
		worker.Shutdown()
	}

	// 3. 等待后台任务退出
	m.taskWg.Wait()

	close(m.shutdownCh)
	m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
}

// loadWorkers 按配置创建 Worker（调用方持有 mu）
func (m *ManagerInstance) loadWorkers() {
	for _, workerCfg := range m.cfg.Workers {
		subCfg := &framework.SubscriberConfig{
			QueueName:    workerCfg.QueueName,
			Concurrency:  workerCfg.Subscriber.Threads,
			Rate:         workerCfg.Subscriber.Rate,
			Timeout:      workerCfg.Subscriber.Timeout,
			TTR:          workerCfg.Subscriber.TTR,
			ErrorBackoff: workerCfg.Subscriber.ErrorBackoff,
		}
		procCfg := &framework.ProcessorConfig{
			Concurrency: workerCfg.Processor.Threads,
			BufferSize:  workerCfg.Processor.BufferSize,
			Timeout:     workerCfg.Processor.Timeout,
		}

		// Worker 使用独立 Context，Drain 阶段的任务不受后台任务取消影响
		m.workers = append(m.workers, NewWorkerInstance(
			context.Background(),
			workerCfg.Name,
			subCfg,
			procCfg,
			m.source,
			m.proc,
			m.logger,
		))
	}
}
