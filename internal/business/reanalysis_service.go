package business

import (
	"context"
	"fmt"
	"time"

	"weightguard/internal/model"
	"weightguard/pkg/logger"
)

// ReanalysisService 全量重检
// 线性扫描全部商品，逐个校验与调和，统计状态发生变化的商品数
type ReanalysisService struct {
	products ProductRepository
	statuses StatusRepository
	settings *SettingsService
	notifier Notifier
	cache    ReportCache
	clock    Clock
	log      logger.Logger
}

// NewReanalysisService 创建全量重检服务
func NewReanalysisService(
	products ProductRepository,
	statuses StatusRepository,
	settings *SettingsService,
	notifier Notifier,
	cache ReportCache,
	log logger.Logger,
) *ReanalysisService {
	return &ReanalysisService{
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
func (s *ReanalysisService) WithClock(clock Clock) *ReanalysisService {
	s.clock = clock
	return s
}

// Run 执行全量重检
func (s *ReanalysisService) Run(ctx context.Context) (*model.ReanalysisResult, error) {
	startTime := s.clock()

	thresholds, err := s.settings.Thresholds(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products failed: %w", err)
	}

	existing, err := s.statuses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alert status failed: %w", err)
	}
	byProduct := make(map[int64]*model.ProductStatus, len(existing))
	for i := range existing {
		byProduct[existing[i].ProductID] = &existing[i]
	}

	result := &model.ReanalysisResult{}
	events := make([]model.AlertEvent, 0)
	now := s.clock()

	for i := range products {
		p := &products[i]
		next, changed, productEvents := ReconcileProduct(byProduct[p.ID], p, thresholds, now)
		result.Processed++
		if !changed {
			continue
		}

		if err := s.statuses.Save(ctx, &next); err != nil {
			return nil, fmt.Errorf("save alert status %d failed: %w", p.ID, err)
		}
		result.Changed++
		events = append(events, productEvents...)
	}
	result.Events = len(events)

	if result.Changed > 0 {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warnf(ctx, "[ReanalysisService] invalidate report cache failed: %v", err)
		}
	}
	if len(events) > 0 {
		if err := s.notifier.Publish(ctx, events); err != nil {
			s.log.Errorf(ctx, "[ReanalysisService] publish %d alert events failed: %v", len(events), err)
		}
	}

	s.log.Infof(ctx, "[ReanalysisService] Reanalysis complete: processed=%d, changed=%d, events=%d, duration=%v",
		result.Processed, result.Changed, result.Events, s.clock().Sub(startTime))

	return result, nil
}
