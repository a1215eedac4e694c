package mysql

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"weightguard/internal/entity"
	"weightguard/internal/model"
)

// ProductDAO 商品目录数据访问对象（wp_posts + wp_postmeta）
type ProductDAO struct {
	db     *gorm.DB
	prefix string
}

// NewProductDAO 创建 ProductDAO 实例
func NewProductDAO(db *gorm.DB, tablePrefix string) *ProductDAO {
	return &ProductDAO{db: db, prefix: tablePrefix}
}

func (dao *ProductDAO) postsTable() string {
	return dao.prefix + entity.Post{}.TableName()
}

func (dao *ProductDAO) metaTable() string {
	return dao.prefix + entity.PostMeta{}.TableName()
}

// selectSQL 商品 + 度量元数据的透视查询，只包含三种状态的顶层商品
func (dao *ProductDAO) selectSQL(extra string) string {
	return fmt.Sprintf(`SELECT p.ID, p.post_title, p.post_status,
	MAX(CASE WHEN pm.meta_key = '%s' THEN pm.meta_value END) AS weight,
	MAX(CASE WHEN pm.meta_key = '%s' THEN pm.meta_value END) AS width,
	MAX(CASE WHEN pm.meta_key = '%s' THEN pm.meta_value END) AS height,
	MAX(CASE WHEN pm.meta_key = '%s' THEN pm.meta_value END) AS length,
	MAX(CASE WHEN pm.meta_key = '%s' THEN pm.meta_value END) AS sku
FROM %s p
LEFT JOIN %s pm ON pm.post_id = p.ID
WHERE p.post_type = 'product' AND p.post_parent = 0 AND p.post_status IN ?%s
GROUP BY p.ID, p.post_title, p.post_status
ORDER BY p.ID`,
		entity.MetaKeyWeight, entity.MetaKeyWidth, entity.MetaKeyHeight, entity.MetaKeyLength, entity.MetaKeySKU,
		dao.postsTable(), dao.metaTable(), extra)
}

// GetProduct 获取单个商品
func (dao *ProductDAO) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var rows []entity.ProductRow
	err := dao.db.WithContext(ctx).
		Raw(dao.selectSQL(" AND p.ID = ?"), model.CheckedStatuses, id).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %d", model.ErrProductNotFound, id)
	}

	p := rows[0].ToModel()
	return &p, nil
}

// ListProducts 列出全部商品
func (dao *ProductDAO) ListProducts(ctx context.Context) ([]model.Product, error) {
	var rows []entity.ProductRow
	err := dao.db.WithContext(ctx).
		Raw(dao.selectSQL(""), model.CheckedStatuses).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]model.Product, 0, len(rows))
	for i := range rows {
		products = append(products, rows[i].ToModel())
	}
	return products, nil
}

// UpdateMeasures 写入度量元数据（存在则更新，否则插入）
func (dao *ProductDAO) UpdateMeasures(ctx context.Context, id int64, measures map[model.Attribute]string) error {
	attrs := make([]string, 0, len(measures))
	for attr := range measures {
		attrs = append(attrs, string(attr))
	}
	sort.Strings(attrs)

	return dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range attrs {
			attr := model.Attribute(a)
			key := entity.MetaKeyFor(attr)
			value := measures[attr]

			var count int64
			if err := tx.Table(dao.metaTable()).
				Where("post_id = ? AND meta_key = ?", id, key).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to read %s meta: %w", key, err)
			}

			if count > 0 {
				if err := tx.Table(dao.metaTable()).
					Where("post_id = ? AND meta_key = ?", id, key).
					Update("meta_value", value).Error; err != nil {
					return fmt.Errorf("failed to update %s meta: %w", key, err)
				}
				continue
			}

			meta := &entity.PostMeta{PostID: id, MetaKey: key, MetaValue: value}
			if err := tx.Table(dao.metaTable()).Create(meta).Error; err != nil {
				return fmt.Errorf("failed to insert %s meta: %w", key, err)
			}
		}
		return nil
	})
}
