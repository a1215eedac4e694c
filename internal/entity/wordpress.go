package entity

import "weightguard/internal/model"

// Post WordPress 文章表（商品是 post_type = 'product' 的文章）
type Post struct {
	ID         int64  `gorm:"column:ID;primaryKey"`
	PostTitle  string `gorm:"column:post_title"`
	PostStatus string `gorm:"column:post_status"`
	PostType   string `gorm:"column:post_type"`
	PostParent int64  `gorm:"column:post_parent"`
}

// TableName 指定表名（不含前缀）
func (Post) TableName() string {
	return "posts"
}

// PostMeta WordPress 文章元数据表
type PostMeta struct {
	MetaID    int64  `gorm:"column:meta_id;primaryKey;autoIncrement"`
	PostID    int64  `gorm:"column:post_id;index"`
	MetaKey   string `gorm:"column:meta_key"`
	MetaValue string `gorm:"column:meta_value"`
}

// TableName 指定表名（不含前缀）
func (PostMeta) TableName() string {
	return "postmeta"
}

// Option WordPress 选项表
type Option struct {
	OptionID    int64  `gorm:"column:option_id;primaryKey;autoIncrement"`
	OptionName  string `gorm:"column:option_name;uniqueIndex"`
	OptionValue string `gorm:"column:option_value"`
	Autoload    string `gorm:"column:autoload"`
}

// TableName 指定表名（不含前缀）
func (Option) TableName() string {
	return "options"
}

// ProductRow 商品与度量元数据的透视查询结果
type ProductRow struct {
	ID         int64   `gorm:"column:ID"`
	PostTitle  string  `gorm:"column:post_title"`
	PostStatus string  `gorm:"column:post_status"`
	Weight     *string `gorm:"column:weight"`
	Width      *string `gorm:"column:width"`
	Height     *string `gorm:"column:height"`
	Length     *string `gorm:"column:length"`
	SKU        *string `gorm:"column:sku"`
}

// 商品度量元数据键
const (
	MetaKeyWeight = "_weight"
	MetaKeyWidth  = "_width"
	MetaKeyHeight = "_height"
	MetaKeyLength = "_length"
	MetaKeySKU    = "_sku"
)

// ToModel 转换为领域模型（NULL 元数据视为空字符串）
func (r *ProductRow) ToModel() model.Product {
	return model.Product{
		ID:     r.ID,
		Title:  r.PostTitle,
		SKU:    deref(r.SKU),
		Status: r.PostStatus,
		Weight: deref(r.Weight),
		Width:  deref(r.Width),
		Height: deref(r.Height),
		Length: deref(r.Length),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// MetaKeyFor 属性对应的元数据键
func MetaKeyFor(attr model.Attribute) string {
	switch attr {
	case model.AttrWidth:
		return MetaKeyWidth
	case model.AttrHeight:
		return MetaKeyHeight
	case model.AttrLength:
		return MetaKeyLength
	default:
		return MetaKeyWeight
	}
}
