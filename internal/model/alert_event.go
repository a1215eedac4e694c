package model

import "time"

// AlertKind 告警类型
type AlertKind string

const (
	AlertKindMissing    AlertKind = "missing"
	AlertKindOutOfRange AlertKind = "out_of_range"
)

// AlertEvent 告警事件（进入缺失或越界状态时产生）
// 通过 redis 频道广播，由邮件订阅方消费
type AlertEvent struct {
	ID           string                `json:"id"`
	ProductID    int64                 `json:"product_id"`
	ProductTitle string                `json:"product_title"`
	SKU          string                `json:"sku,omitempty"`
	Group        Group                 `json:"group"`
	Kind         AlertKind             `json:"kind"`
	Values       map[Attribute]float64 `json:"values,omitempty"`
	Bounds       map[Attribute]Bounds  `json:"bounds,omitempty"`
	OccurredAt   time.Time             `json:"occurred_at"`
}
