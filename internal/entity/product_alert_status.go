package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"weightguard/internal/model"
)

// ProductAlertStatus 商品告警记录实体（一行对应一个商品，无标记时删除）
type ProductAlertStatus struct {
	ProductID int64 `gorm:"column:product_id;primaryKey;autoIncrement:false"`

	// 重量分组
	WeightMissingAt  *time.Time `gorm:"column:weight_missing_at"`
	WeightAlertValue *float64   `gorm:"column:weight_alert_value;type:double"`
	WeightAlertAt    *time.Time `gorm:"column:weight_alert_at"`

	// 尺寸分组（越界属性 → 数值）
	DimensionsMissingAt *time.Time     `gorm:"column:dimensions_missing_at"`
	DimensionsAlert     datatypes.JSON `gorm:"column:dimensions_alert;type:json"`
	DimensionsAlertAt   *time.Time     `gorm:"column:dimensions_alert_at"`

	UpdatedAt time.Time `gorm:"column:updated_at;not null;index:idx_updated_at"`
}

// TableName 指定表名（实际表名由 DAO 加上 WordPress 表前缀）
func (ProductAlertStatus) TableName() string {
	return "wg_product_alert_status"
}

// ToModel 转换为领域模型
func (e *ProductAlertStatus) ToModel() (*model.ProductStatus, error) {
	status := &model.ProductStatus{
		ProductID: e.ProductID,
		UpdatedAt: e.UpdatedAt,
	}

	status.Weight.MissingSince = e.WeightMissingAt
	if e.WeightAlertAt != nil && e.WeightAlertValue != nil {
		status.Weight.OutOfRange = map[model.Attribute]float64{model.AttrWeight: *e.WeightAlertValue}
		status.Weight.OutOfRangeSince = e.WeightAlertAt
	}

	status.Dimensions.MissingSince = e.DimensionsMissingAt
	if e.DimensionsAlertAt != nil {
		values := make(map[model.Attribute]float64)
		if len(e.DimensionsAlert) > 0 {
			if err := json.Unmarshal(e.DimensionsAlert, &values); err != nil {
				return nil, fmt.Errorf("unmarshal dimensions_alert failed: %w", err)
			}
		}
		status.Dimensions.OutOfRange = values
		status.Dimensions.OutOfRangeSince = e.DimensionsAlertAt
	}

	return status, nil
}

// FromModel 从领域模型构造实体
func FromModel(s *model.ProductStatus) (*ProductAlertStatus, error) {
	e := &ProductAlertStatus{
		ProductID:           s.ProductID,
		WeightMissingAt:     s.Weight.MissingSince,
		DimensionsMissingAt: s.Dimensions.MissingSince,
		UpdatedAt:           s.UpdatedAt,
	}

	if s.Weight.IsOutOfRange() {
		v := s.Weight.OutOfRange[model.AttrWeight]
		e.WeightAlertValue = &v
		e.WeightAlertAt = s.Weight.OutOfRangeSince
	}

	if s.Dimensions.IsOutOfRange() {
		raw, err := json.Marshal(s.Dimensions.OutOfRange)
		if err != nil {
			return nil, fmt.Errorf("marshal dimensions_alert failed: %w", err)
		}
		e.DimensionsAlert = datatypes.JSON(raw)
		e.DimensionsAlertAt = s.Dimensions.OutOfRangeSince
	}

	return e, nil
}
