package model

import "time"

// ReportItem 报表中的单个商品
type ReportItem struct {
	Product  Product               `json:"product"`
	Values   map[Attribute]float64 `json:"values,omitempty"`   // 越界属性及其数值
	Problems []string              `json:"problems,omitempty"` // 人类可读的问题描述
}

// Report 问题商品报表（四个列表 + 使用的阈值）
type Report struct {
	MissingWeight        []ReportItem `json:"missing_weight"`
	WeightOutOfRange     []ReportItem `json:"weight_out_of_range"`
	MissingDimensions    []ReportItem `json:"missing_dimensions"`
	DimensionsOutOfRange []ReportItem `json:"dimensions_out_of_range"`
	Thresholds           Thresholds   `json:"thresholds"`
	GeneratedAt          time.Time    `json:"generated_at"`
}

// Total 问题条目总数（同一商品可能出现在多个列表中）
func (r *Report) Total() int {
	return len(r.MissingWeight) + len(r.WeightOutOfRange) +
		len(r.MissingDimensions) + len(r.DimensionsOutOfRange)
}

// ReanalysisResult 全量重检结果
type ReanalysisResult struct {
	Processed int `json:"processed"`
	Changed   int `json:"changed"`
	Events    int `json:"events"`
}

// CheckResult 单商品检查结果
type CheckResult struct {
	ProductID int64         `json:"product_id"`
	Status    ProductStatus `json:"status"`
	Changed   bool          `json:"changed"`
	Events    []AlertEvent  `json:"events,omitempty"`
	Notices   []Notice      `json:"notices,omitempty"`
}

// DigestResult 汇总邮件发送结果
type DigestResult struct {
	Sent       bool     `json:"sent"`
	Reason     string   `json:"reason,omitempty"`
	Subject    string   `json:"subject,omitempty"`
	Recipients []string `json:"recipients,omitempty"`
	Total      int      `json:"total"`
}
