package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"weightguard/internal/model"
	"weightguard/internal/server/ginx"
)

// Builder 报表构建
type Builder interface {
	// Build 优先使用缓存
	Build(ctx context.Context) (*model.Report, error)
	// Compute 跳过缓存重新计算
	Compute(ctx context.Context) (*model.Report, error)
}

// Exporter CSV 导出
type Exporter interface {
	Export(ctx context.Context, w io.Writer) (int, error)
}

// ReportHandler 报表 HTTP 处理器
type ReportHandler struct {
	reports  Builder
	exporter Exporter
	now      func() time.Time
}

// NewReportHandler 创建报表处理器
func NewReportHandler(reports Builder, exporter Exporter) *ReportHandler {
	return &ReportHandler{reports: reports, exporter: exporter, now: time.Now}
}

// Get 问题商品报表
// GET /api/v1/report?fresh=true
func (h *ReportHandler) Get(c *gin.Context) {
	build := h.reports.Build
	if c.Query("fresh") == "true" {
		build = h.reports.Compute
	}

	r, err := build(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ginx.Success(c, r)
}

// Export 导出问题商品 CSV
// GET /api/v1/report/export.csv
func (h *ReportHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := h.exporter.Export(c.Request.Context(), &buf); err != nil {
		_ = c.Error(err)
		return
	}

	filename := fmt.Sprintf("products-with-problems-%s.csv", h.now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
