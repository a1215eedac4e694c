package model

// 队列任务动作类型（payload.data.action_type）
const (
	ActionProductCheck     = "product_check"
	ActionCatalogReanalyze = "catalog_reanalyze"
	ActionDigestEmail      = "digest_email"
)

// ProductCheckData 单商品检查任务
type ProductCheckData struct {
	ProductID int64 `json:"product_id"`
}

// CatalogReanalyzeData 全量重检任务（无业务参数）
type CatalogReanalyzeData struct{}

// DigestEmailData 汇总邮件任务
type DigestEmailData struct {
	Frequency Frequency `json:"frequency"`
}
