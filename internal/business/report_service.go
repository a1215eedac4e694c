package business

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"weightguard/internal/model"
	"weightguard/pkg/logger"
)

// ReportService 问题商品报表
// 报表由一次目录扫描计算得出，结果放入临时缓存，任何标记变化或配置保存都会使缓存失效
type ReportService struct {
	products ProductRepository
	settings *SettingsService
	cache    ReportCache
	cacheTTL time.Duration
	clock    Clock
	log      logger.Logger
}

// NewReportService 创建报表服务
func NewReportService(
	products ProductRepository,
	settings *SettingsService,
	cache ReportCache,
	cacheTTL time.Duration,
	log logger.Logger,
) *ReportService {
	return &ReportService{
		products: products,
		settings: settings,
		cache:    cache,
		cacheTTL: cacheTTL,
		clock:    time.Now,
		log:      log,
	}
}

// Build 获取报表（优先读缓存）
func (s *ReportService) Build(ctx context.Context) (*model.Report, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		s.log.Warnf(ctx, "[ReportService] read report cache failed: %v", err)
	}
	if cached != nil {
		return cached, nil
	}

	report, err := s.Compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, report, s.cacheTTL); err != nil {
		s.log.Warnf(ctx, "[ReportService] write report cache failed: %v", err)
	}
	return report, nil
}

// Compute 扫描目录计算报表（不读写缓存）
func (s *ReportService) Compute(ctx context.Context) (*model.Report, error) {
	thresholds, err := s.settings.Thresholds(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products failed: %w", err)
	}

	report := &model.Report{
		MissingWeight:        make([]model.ReportItem, 0),
		WeightOutOfRange:     make([]model.ReportItem, 0),
		MissingDimensions:    make([]model.ReportItem, 0),
		DimensionsOutOfRange: make([]model.ReportItem, 0),
		Thresholds:           thresholds,
		GeneratedAt:          s.clock(),
	}

	for i := range products {
		p := &products[i]
		problems := Problems(p, thresholds)
		if len(problems) == 0 {
			continue
		}

		weight := CheckWeight(p, thresholds)
		switch {
		case weight.Class == model.Missing:
			report.MissingWeight = append(report.MissingWeight, model.ReportItem{Product: *p, Problems: problems})
		case weight.Class.OutOfRange():
			report.WeightOutOfRange = append(report.WeightOutOfRange, model.ReportItem{Product: *p, Values: weight.Offending, Problems: problems})
		}

		dims := CheckDimensions(p, thresholds)
		switch {
		case dims.Class == model.Missing:
			report.MissingDimensions = append(report.MissingDimensions, model.ReportItem{Product: *p, Problems: problems})
		case dims.Class.OutOfRange():
			report.DimensionsOutOfRange = append(report.DimensionsOutOfRange, model.ReportItem{Product: *p, Values: dims.Offending, Problems: problems})
		}
	}

	sortByTitle(report.MissingWeight)
	sortByTitle(report.MissingDimensions)
	sortByTitle(report.DimensionsOutOfRange)
	sort.SliceStable(report.WeightOutOfRange, func(i, j int) bool {
		a, b := report.WeightOutOfRange[i], report.WeightOutOfRange[j]
		if a.Values[model.AttrWeight] != b.Values[model.AttrWeight] {
			return a.Values[model.AttrWeight] > b.Values[model.AttrWeight]
		}
		return a.Product.ID < b.Product.ID
	})

	return report, nil
}

// ProblemProducts 报表中出现的全部商品（去重，按标题排序）
func ProblemProducts(report *model.Report) []model.ReportItem {
	seen := make(map[int64]struct{})
	items := make([]model.ReportItem, 0)
	lists := [][]model.ReportItem{
		report.MissingWeight, report.WeightOutOfRange,
		report.MissingDimensions, report.DimensionsOutOfRange,
	}
	for _, list := range lists {
		for _, item := range list {
			if _, ok := seen[item.Product.ID]; ok {
				continue
			}
			seen[item.Product.ID] = struct{}{}
			items = append(items, item)
		}
	}
	sortByTitle(items)
	return items
}

func sortByTitle(items []model.ReportItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Product.Title), strings.ToLower(items[j].Product.Title)
		if a != b {
			return a < b
		}
		return items[i].Product.ID < items[j].Product.ID
	})
}
