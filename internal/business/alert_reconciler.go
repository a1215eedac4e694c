package business

import (
	"math"
	"time"

	"github.com/google/uuid"

	"weightguard/internal/model"
)

// valueTolerance 越界数值在该误差内视为未变化
const valueTolerance = 0.0001

// Reconcile 根据判定结果与已有标记计算新标记
// 状态未变化时原样返回已有标记（保留时间戳），changed 为 false
// 写入新的缺失或越界标记时返回事件（仅填充分组相关字段）
func Reconcile(prior model.GroupFlags, v Verdict, now time.Time) (model.GroupFlags, bool, *model.AlertEvent) {
	switch {
	case v.Class == model.Missing:
		if prior.IsMissing() && !prior.IsOutOfRange() {
			return prior, false, nil
		}
		ts := now
		next := model.GroupFlags{MissingSince: &ts}
		return next, true, &model.AlertEvent{
			Group:      v.Group,
			Kind:       model.AlertKindMissing,
			OccurredAt: now,
		}

	case v.Class.OutOfRange():
		if prior.IsOutOfRange() && !prior.IsMissing() && sameValues(prior.OutOfRange, v.Offending) {
			return prior, false, nil
		}
		ts := now
		next := model.GroupFlags{
			OutOfRange:      copyValues(v.Offending),
			OutOfRangeSince: &ts,
		}
		return next, true, &model.AlertEvent{
			Group:      v.Group,
			Kind:       model.AlertKindOutOfRange,
			Values:     copyValues(v.Offending),
			OccurredAt: now,
		}

	default:
		if prior.IsClean() {
			return prior, false, nil
		}
		return model.GroupFlags{}, true, nil
	}
}

// ReconcileProduct 对商品的两个分组执行校验与状态调和
// prior 为 nil 表示商品当前没有告警记录
func ReconcileProduct(
	prior *model.ProductStatus,
	p *model.Product,
	t model.Thresholds,
	now time.Time,
) (model.ProductStatus, bool, []model.AlertEvent) {
	next := model.ProductStatus{ProductID: p.ID, UpdatedAt: now}
	if prior != nil {
		next = *prior
		next.ProductID = p.ID
	}

	changed := false
	events := make([]model.AlertEvent, 0)
	for _, verdict := range Check(p, t) {
		flags, groupChanged, event := Reconcile(next.Flags(verdict.Group), verdict, now)
		if !groupChanged {
			continue
		}
		changed = true
		next.SetFlags(verdict.Group, flags)

		if event != nil {
			event.ID = newEventID()
			event.ProductID = p.ID
			event.ProductTitle = p.Title
			event.SKU = p.SKU
			event.Bounds = groupBounds(verdict.Group, t)
			events = append(events, *event)
		}
	}

	if changed {
		next.UpdatedAt = now
	}
	return next, changed, events
}

func newEventID() string {
	return uuid.New().String()
}

// groupBounds 分组内各属性的区间
func groupBounds(g model.Group, t model.Thresholds) map[model.Attribute]model.Bounds {
	if g == model.GroupWeight {
		return map[model.Attribute]model.Bounds{model.AttrWeight: t.Weight}
	}
	bounds := make(map[model.Attribute]model.Bounds, len(model.DimensionAttributes))
	for _, attr := range model.DimensionAttributes {
		bounds[attr] = t.For(attr)
	}
	return bounds
}

func sameValues(a, b map[model.Attribute]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || math.Abs(av-bv) > valueTolerance {
			return false
		}
	}
	return true
}

func copyValues(src map[model.Attribute]float64) map[model.Attribute]float64 {
	if src == nil {
		return nil
	}
	dst := make(map[model.Attribute]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
