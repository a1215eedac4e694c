package model

import (
	"errors"
	"time"
)

var (
	// ErrProductNotFound 商品不存在或不在检查范围内
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidSettings 配置校验失败
	ErrInvalidSettings = errors.New("invalid settings")
	// ErrInvalidMeasure 手动填写的度量值无效
	ErrInvalidMeasure = errors.New("invalid measure")
	// ErrEmptySelection 批量操作未选择商品
	ErrEmptySelection = errors.New("no products selected")
	// ErrUnknownAction 未知的批量操作
	ErrUnknownAction = errors.New("unknown bulk action")
)

// 商品状态（只检查这三种状态的顶层商品）
const (
	PostStatusPublish = "publish"
	PostStatusDraft   = "draft"
	PostStatusPending = "pending"
)

// CheckedStatuses 参与检查的商品状态
var CheckedStatuses = []string{PostStatusPublish, PostStatusDraft, PostStatusPending}

// Product 目录商品（度量字段保持目录中的原始字符串）
type Product struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	SKU    string `json:"sku"`
	Status string `json:"status"`
	Weight string `json:"weight"`
	Width  string `json:"width"`
	Height string `json:"height"`
	Length string `json:"length"`
}

// Raw 获取属性的原始值
func (p *Product) Raw(attr Attribute) string {
	switch attr {
	case AttrWidth:
		return p.Width
	case AttrHeight:
		return p.Height
	case AttrLength:
		return p.Length
	default:
		return p.Weight
	}
}

// GroupFlags 单个分组的告警标记
// 同一时刻 MissingSince 与 OutOfRangeSince 至多一个非空
type GroupFlags struct {
	MissingSince    *time.Time            `json:"missing_since,omitempty"`
	OutOfRange      map[Attribute]float64 `json:"out_of_range,omitempty"`
	OutOfRangeSince *time.Time            `json:"out_of_range_since,omitempty"`
}

// IsMissing 是否标记为缺失
func (f GroupFlags) IsMissing() bool {
	return f.MissingSince != nil
}

// IsOutOfRange 是否标记为越界
func (f GroupFlags) IsOutOfRange() bool {
	return f.OutOfRangeSince != nil
}

// IsClean 无任何标记
func (f GroupFlags) IsClean() bool {
	return !f.IsMissing() && !f.IsOutOfRange()
}

// ProductStatus 商品告警记录
type ProductStatus struct {
	ProductID  int64      `json:"product_id"`
	Weight     GroupFlags `json:"weight"`
	Dimensions GroupFlags `json:"dimensions"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Flags 获取分组标记
func (s *ProductStatus) Flags(g Group) GroupFlags {
	if g == GroupDimensions {
		return s.Dimensions
	}
	return s.Weight
}

// SetFlags 设置分组标记
func (s *ProductStatus) SetFlags(g Group, f GroupFlags) {
	if g == GroupDimensions {
		s.Dimensions = f
		return
	}
	s.Weight = f
}

// IsClean 两个分组均无标记
func (s *ProductStatus) IsClean() bool {
	return s.Weight.IsClean() && s.Dimensions.IsClean()
}

// Notice 后台内联提示
type Notice struct {
	Level   string `json:"level"` // error / warning
	Message string `json:"message"`
}

const (
	NoticeLevelError   = "error"
	NoticeLevelWarning = "warning"
)
