package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"weightguard/internal/entity"
	"weightguard/internal/model"
)

// StatusDAO 商品告警记录数据访问对象
type StatusDAO struct {
	db    *gorm.DB
	table string
	now   func() time.Time
}

// NewStatusDAO 创建 StatusDAO 实例
func NewStatusDAO(db *gorm.DB, tablePrefix string) *StatusDAO {
	return &StatusDAO{
		db:    db,
		table: tablePrefix + entity.ProductAlertStatus{}.TableName(),
		now:   time.Now,
	}
}

// AutoMigrate 创建或更新告警记录表
func (dao *StatusDAO) AutoMigrate(ctx context.Context) error {
	return dao.db.WithContext(ctx).Table(dao.table).AutoMigrate(&entity.ProductAlertStatus{})
}

// Get 获取告警记录
func (dao *StatusDAO) Get(ctx context.Context, productID int64) (*model.ProductStatus, error) {
	var e entity.ProductAlertStatus
	err := dao.db.WithContext(ctx).Table(dao.table).Where("product_id = ?", productID).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status %d: %w", productID, err)
	}
	return e.ToModel()
}

// List 列出全部告警记录
func (dao *StatusDAO) List(ctx context.Context) ([]model.ProductStatus, error) {
	var rows []entity.ProductAlertStatus
	if err := dao.db.WithContext(ctx).Table(dao.table).Order("product_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	statuses := make([]model.ProductStatus, 0, len(rows))
	for i := range rows {
		s, err := rows[i].ToModel()
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *s)
	}
	return statuses, nil
}

// Save 保存告警记录（无标记时删除）
func (dao *StatusDAO) Save(ctx context.Context, status *model.ProductStatus) error {
	db := dao.db.WithContext(ctx).Table(dao.table)

	if status.IsClean() {
		if err := db.Where("product_id = ?", status.ProductID).Delete(&entity.ProductAlertStatus{}).Error; err != nil {
			return fmt.Errorf("failed to delete status %d: %w", status.ProductID, err)
		}
		return nil
	}

	e, err := entity.FromModel(status)
	if err != nil {
		return err
	}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(e).Error; err != nil {
		return fmt.Errorf("failed to save status %d: %w", status.ProductID, err)
	}
	return nil
}

// groupColumns 分组对应的标记列
func groupColumns(group model.Group) []string {
	if group == model.GroupDimensions {
		return []string{"dimensions_missing_at", "dimensions_alert", "dimensions_alert_at"}
	}
	return []string{"weight_missing_at", "weight_alert_value", "weight_alert_at"}
}

// ClearGroup 清除分组标记，随后删除已无任何标记的记录
func (dao *StatusDAO) ClearGroup(ctx context.Context, productIDs []int64, group model.Group) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}

	updates := map[string]interface{}{"updated_at": dao.now()}
	for _, col := range groupColumns(group) {
		updates[col] = nil
	}

	var affected int64
	err := dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Table(dao.table).Where("product_id IN ?", productIDs).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to clear %s flags: %w", group, res.Error)
		}
		affected = res.RowsAffected

		err := tx.Table(dao.table).
			Where("product_id IN ?", productIDs).
			Where("weight_missing_at IS NULL AND weight_alert_at IS NULL").
			Where("dimensions_missing_at IS NULL AND dimensions_alert_at IS NULL").
			Delete(&entity.ProductAlertStatus{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete clean statuses: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// DeleteAll 删除全部告警记录
func (dao *StatusDAO) DeleteAll(ctx context.Context) (int64, error) {
	res := dao.db.WithContext(ctx).Table(dao.table).Where("1 = 1").Delete(&entity.ProductAlertStatus{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete statuses: %w", res.Error)
	}
	return res.RowsAffected, nil
}
