package business

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"weightguard/internal/model"
	"weightguard/pkg/logger"
	"weightguard/pkg/numfmt"
)

// 批量操作
const (
	BulkRemoveFlags           = "remove_flags"
	BulkRemoveFlagsDimensions = "remove_flags_dimensions"
	BulkSetDefaultWeight      = "set_default_weight"
)

// BulkRequest 批量操作请求
type BulkRequest struct {
	Action       string  `json:"action" binding:"required,oneof=remove_flags remove_flags_dimensions set_default_weight"`
	ProductIDs   []int64 `json:"product_ids" binding:"required,min=1"`
	CustomWeight string  `json:"custom_weight,omitempty"`
}

// BulkResult 批量操作结果
type BulkResult struct {
	Action   string  `json:"action"`
	Affected int     `json:"affected"`
	Weight   float64 `json:"weight,omitempty"` // set_default_weight 实际写入的重量
}

// MeasuresInput 快速编辑（nil 表示不修改，空字符串或 "0" 表示清空）
type MeasuresInput struct {
	Weight *string `json:"weight"`
	Width  *string `json:"width"`
	Height *string `json:"height"`
	Length *string `json:"length"`
}

// BulkService 批量操作与快速编辑
type BulkService struct {
	products ProductRepository
	statuses StatusRepository
	settings *SettingsService
	checker  *ProductChecker
	notifier Notifier
	cache    ReportCache
	clock    Clock
	log      logger.Logger
}

// NewBulkService 创建批量操作服务
func NewBulkService(
	products ProductRepository,
	statuses StatusRepository,
	settings *SettingsService,
	checker *ProductChecker,
	notifier Notifier,
	cache ReportCache,
	log logger.Logger,
) *BulkService {
	return &BulkService{
		products: products,
		statuses: statuses,
		settings: settings,
		checker:  checker,
		notifier: notifier,
		cache:    cache,
		clock:    time.Now,
		log:      log,
	}
}

// WithClock 替换时间源
func (s *BulkService) WithClock(clock Clock) *BulkService {
	s.clock = clock
	return s
}

// Apply 执行批量操作
func (s *BulkService) Apply(ctx context.Context, req *BulkRequest) (*BulkResult, error) {
	ids := make([]int64, 0, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		if id > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, model.ErrEmptySelection
	}

	result := &BulkResult{Action: req.Action}
	switch req.Action {
	case BulkRemoveFlags, BulkRemoveFlagsDimensions:
		group := model.GroupWeight
		if req.Action == BulkRemoveFlagsDimensions {
			group = model.GroupDimensions
		}
		n, err := s.statuses.ClearGroup(ctx, ids, group)
		if err != nil {
			return nil, fmt.Errorf("clear %s flags failed: %w", group, err)
		}
		result.Affected = int(n)

	case BulkSetDefaultWeight:
		weight, err := s.defaultWeight(ctx, req.CustomWeight)
		if err != nil {
			return nil, err
		}
		result.Weight = weight
		// 非正数重量不写入
		if weight > 0 {
			n, err := s.setWeight(ctx, ids, weight)
			if err != nil {
				return nil, err
			}
			result.Affected = n
		}

	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownAction, req.Action)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warnf(ctx, "[BulkService] invalidate report cache failed: %v", err)
	}

	s.log.Infof(ctx, "[BulkService] Bulk action %s applied: selected=%d, affected=%d",
		req.Action, len(ids), result.Affected)
	return result, nil
}

// defaultWeight 优先使用自定义重量，否则按配置规则计算
func (s *BulkService) defaultWeight(ctx context.Context, custom string) (float64, error) {
	if v, ok := numfmt.Parse(custom); ok && !math.IsInf(v, 0) {
		return v, nil
	}
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return 0, err
	}
	return settings.DefaultWeight.Resolve(settings.Thresholds), nil
}

// setWeight 写入重量并调和重量分组
func (s *BulkService) setWeight(ctx context.Context, ids []int64, weight float64) (int, error) {
	thresholds, err := s.settings.Thresholds(ctx)
	if err != nil {
		return 0, err
	}

	raw := strconv.FormatFloat(weight, 'f', -1, 64)
	now := s.clock()
	affected := 0
	events := make([]model.AlertEvent, 0)

	for _, id := range ids {
		product, err := s.products.GetProduct(ctx, id)
		if errors.Is(err, model.ErrProductNotFound) {
			s.log.Warnf(ctx, "[BulkService] Product %d not found, skipped", id)
			continue
		}
		if err != nil {
			return affected, fmt.Errorf("get product %d failed: %w", id, err)
		}

		if err := s.products.UpdateMeasures(ctx, id, map[model.Attribute]string{model.AttrWeight: raw}); err != nil {
			return affected, fmt.Errorf("update weight of product %d failed: %w", id, err)
		}
		product.Weight = raw
		affected++

		prior, err := s.statuses.Get(ctx, id)
		if err != nil {
			return affected, fmt.Errorf("get alert status %d failed: %w", id, err)
		}
		status := model.ProductStatus{ProductID: id}
		if prior != nil {
			status = *prior
		}

		flags, changed, event := Reconcile(status.Weight, CheckWeight(product, thresholds), now)
		if !changed {
			continue
		}
		status.Weight = flags
		status.UpdatedAt = now
		if err := s.statuses.Save(ctx, &status); err != nil {
			return affected, fmt.Errorf("save alert status %d failed: %w", id, err)
		}
		if event != nil {
			event.ID = newEventID()
			event.ProductID = id
			event.ProductTitle = product.Title
			event.SKU = product.SKU
			event.Bounds = groupBounds(model.GroupWeight, thresholds)
			events = append(events, *event)
		}
	}

	if len(events) > 0 {
		if err := s.notifier.Publish(ctx, events); err != nil {
			s.log.Errorf(ctx, "[BulkService] publish %d alert events failed: %v", len(events), err)
		}
	}
	return affected, nil
}

// UpdateMeasures 快速编辑商品度量后立即检查
// 空字符串或数值 0 清空该属性；其他值必须是正数
func (s *BulkService) UpdateMeasures(ctx context.Context, productID int64, in *MeasuresInput) (*model.CheckResult, error) {
	measures := make(map[model.Attribute]string)
	fields := map[model.Attribute]*string{
		model.AttrWeight: in.Weight,
		model.AttrWidth:  in.Width,
		model.AttrHeight: in.Height,
		model.AttrLength: in.Length,
	}
	for attr, raw := range fields {
		if raw == nil {
			continue
		}
		value := strings.TrimSpace(*raw)
		parsed, ok := numfmt.Parse(value)
		if value == "" || (ok && parsed == 0) {
			measures[attr] = ""
			continue
		}
		if !ok || parsed < 0 || math.IsInf(parsed, 0) {
			return nil, fmt.Errorf("%w: %s must be greater than zero", model.ErrInvalidMeasure, attr)
		}
		measures[attr] = strconv.FormatFloat(parsed, 'f', -1, 64)
	}
	if len(measures) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", model.ErrInvalidMeasure)
	}

	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, fmt.Errorf("get product %d failed: %w", productID, err)
	}
	if err := s.products.UpdateMeasures(ctx, productID, measures); err != nil {
		return nil, fmt.Errorf("update measures of product %d failed: %w", productID, err)
	}

	return s.checker.Check(ctx, productID)
}
