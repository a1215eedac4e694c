package business

import (
	"context"
	"fmt"

	"weightguard/pkg/logger"
)

// PurgeResult 清理结果
type PurgeResult struct {
	Statuses int64 `json:"statuses"`
	Options  int64 `json:"options"`
}

// PurgeService 卸载清理：删除全部告警记录与插件配置项
type PurgeService struct {
	statuses StatusRepository
	options  OptionRepository
	cache    ReportCache
	log      logger.Logger
}

// NewPurgeService 创建清理服务
func NewPurgeService(statuses StatusRepository, options OptionRepository, cache ReportCache, log logger.Logger) *PurgeService {
	return &PurgeService{
		statuses: statuses,
		options:  options,
		cache:    cache,
		log:      log,
	}
}

// Purge 执行清理
func (s *PurgeService) Purge(ctx context.Context) (*PurgeResult, error) {
	statuses, err := s.statuses.DeleteAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("delete alert status failed: %w", err)
	}

	options, err := s.options.DeleteOptions(ctx, OptionPrefixes)
	if err != nil {
		return nil, fmt.Errorf("delete options failed: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warnf(ctx, "[PurgeService] invalidate report cache failed: %v", err)
	}

	s.log.Infof(ctx, "[PurgeService] Purged %d alert records and %d options", statuses, options)
	return &PurgeResult{Statuses: statuses, Options: options}, nil
}
