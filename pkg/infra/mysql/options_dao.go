package mysql

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"weightguard/internal/entity"
)

// OptionsDAO WordPress 选项数据访问对象
type OptionsDAO struct {
	db    *gorm.DB
	table string
}

// NewOptionsDAO 创建 OptionsDAO 实例
func NewOptionsDAO(db *gorm.DB, tablePrefix string) *OptionsDAO {
	return &OptionsDAO{db: db, table: tablePrefix + entity.Option{}.TableName()}
}

// GetOptions 批量读取选项，不存在的选项不出现在结果中
func (dao *OptionsDAO) GetOptions(ctx context.Context, names []string) (map[string]string, error) {
	result := make(map[string]string, len(names))
	if len(names) == 0 {
		return result, nil
	}

	var rows []entity.Option
	err := dao.db.WithContext(ctx).Table(dao.table).
		Select("option_name", "option_value").
		Where("option_name IN ?", names).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get options: %w", err)
	}

	for _, r := range rows {
		result[r.OptionName] = r.OptionValue
	}
	return result, nil
}

// SetOptions 批量写入选项（按 option_name 覆盖）
func (dao *OptionsDAO) SetOptions(ctx context.Context, options map[string]string) error {
	if len(options) == 0 {
		return nil
	}

	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]entity.Option, 0, len(names))
	for _, name := range names {
		rows = append(rows, entity.Option{OptionName: name, OptionValue: options[name], Autoload: "yes"})
	}

	err := dao.db.WithContext(ctx).Table(dao.table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "option_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"option_value"}),
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to set options: %w", err)
	}
	return nil
}

// DeleteOptions 删除指定前缀的全部选项
func (dao *OptionsDAO) DeleteOptions(ctx context.Context, prefixes []string) (int64, error) {
	if len(prefixes) == 0 {
		return 0, nil
	}

	conds := make([]string, 0, len(prefixes))
	args := make([]interface{}, 0, len(prefixes))
	for _, p := range prefixes {
		conds = append(conds, "option_name LIKE ?")
		args = append(args, likePrefix(p))
	}

	res := dao.db.WithContext(ctx).Table(dao.table).
		Where(strings.Join(conds, " OR "), args...).
		Delete(&entity.Option{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete options: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// likePrefix 转义 LIKE 通配符后追加 %
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
