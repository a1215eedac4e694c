package business

import (
	"context"
	"fmt"
	"time"

	"weightguard/internal/model"
	"weightguard/pkg/logger"
)

// ProductChecker 单商品检查（商品保存后触发）
// 职责：读取商品与告警记录 → 调和 → 持久化 → 缓存失效 → 发布事件
type ProductChecker struct {
	products ProductRepository
	statuses StatusRepository
	settings *SettingsService
	notifier Notifier
	cache    ReportCache
	clock    Clock
	log      logger.Logger
}

// NewProductChecker 创建单商品检查服务
func NewProductChecker(
	products ProductRepository,
	statuses StatusRepository,
	settings *SettingsService,
	notifier Notifier,
	cache ReportCache,
	log logger.Logger,
) *ProductChecker {
	return &ProductChecker{
		products: products,
		statuses: statuses,
		settings: settings,
		notifier: notifier,
		cache:    cache,
		clock:    time.Now,
		log:      log,
	}
}

// WithClock 替换时间源
func (c *ProductChecker) WithClock(clock Clock) *ProductChecker {
	c.clock = clock
	return c
}

// Check 检查单个商品并返回后台提示
func (c *ProductChecker) Check(ctx context.Context, productID int64) (*model.CheckResult, error) {
	// 1. 加载阈值
	thresholds, err := c.settings.Thresholds(ctx)
	if err != nil {
		return nil, err
	}

	// 2. 加载商品与已有告警记录
	product, err := c.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product %d failed: %w", productID, err)
	}
	prior, err := c.statuses.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get alert status %d failed: %w", productID, err)
	}

	// 3. 调和两个分组
	next, changed, events := ReconcileProduct(prior, product, thresholds, c.clock())

	// 4. 持久化并通知
	if changed {
		if err := c.statuses.Save(ctx, &next); err != nil {
			return nil, fmt.Errorf("save alert status %d failed: %w", productID, err)
		}
		c.afterChange(ctx, events)
	}

	c.log.Infof(ctx, "[ProductChecker] Product %d checked: changed=%v, events=%d", productID, changed, len(events))

	return &model.CheckResult{
		ProductID: productID,
		Status:    next,
		Changed:   changed,
		Events:    events,
		Notices:   Notices(product, thresholds),
	}, nil
}

// afterChange 标记变化后的副作用（失败只记录日志，不影响已持久化的状态）
func (c *ProductChecker) afterChange(ctx context.Context, events []model.AlertEvent) {
	if err := c.cache.Invalidate(ctx); err != nil {
		c.log.Warnf(ctx, "[ProductChecker] invalidate report cache failed: %v", err)
	}
	if len(events) == 0 {
		return
	}
	if err := c.notifier.Publish(ctx, events); err != nil {
		c.log.Errorf(ctx, "[ProductChecker] publish %d alert events failed: %v", len(events), err)
	}
}
