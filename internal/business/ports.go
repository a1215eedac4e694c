package business

import (
	"context"
	"time"

	"weightguard/internal/model"
)

// ProductRepository 商品目录（WordPress posts/postmeta）
type ProductRepository interface {
	// GetProduct 获取检查范围内的单个商品，不存在时返回 model.ErrProductNotFound
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	// ListProducts 列出全部检查范围内的商品（按 ID 升序）
	ListProducts(ctx context.Context) ([]model.Product, error)
	// UpdateMeasures 写入度量元数据（attr → 原始字符串）
	UpdateMeasures(ctx context.Context, id int64, measures map[model.Attribute]string) error
}

// StatusRepository 商品告警记录
type StatusRepository interface {
	// Get 获取告警记录，没有记录时返回 nil, nil
	Get(ctx context.Context, productID int64) (*model.ProductStatus, error)
	List(ctx context.Context) ([]model.ProductStatus, error)
	// Save 保存告警记录，无标记时删除记录
	Save(ctx context.Context, status *model.ProductStatus) error
	// ClearGroup 清除指定商品某个分组的标记，返回受影响商品数
	ClearGroup(ctx context.Context, productIDs []int64, group model.Group) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// OptionRepository 键值配置存储（wp_options）
type OptionRepository interface {
	GetOptions(ctx context.Context, names []string) (map[string]string, error)
	SetOptions(ctx context.Context, options map[string]string) error
	DeleteOptions(ctx context.Context, prefixes []string) (int64, error)
}

// Notifier 告警事件发布
type Notifier interface {
	Publish(ctx context.Context, events []model.AlertEvent) error
}

// ReportCache 报表临时缓存
type ReportCache interface {
	// Get 命中返回报表，未命中返回 nil, nil
	Get(ctx context.Context) (*model.Report, error)
	Set(ctx context.Context, report *model.Report, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Mail 邮件
type Mail struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer 邮件发送
type Mailer interface {
	// Send 逐个收件人发送，至少一个成功即返回 nil
	Send(ctx context.Context, mail *Mail) error
}

// Clock 时间源（测试可替换）
type Clock func() time.Time
