package business

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"weightguard/internal/model"
	"weightguard/pkg/numfmt"
)

// utf8BOM 让电子表格软件按 UTF-8 打开
const utf8BOM = "\xEF\xBB\xBF"

var csvHeader = []string{
	"ID", "Product", "SKU", "Status",
	"Weight (kg)", "Width (cm)", "Height (cm)", "Length (cm)",
	"Problems", "Edit link",
}

var statusLabels = map[string]string{
	model.PostStatusPublish: "Published",
	model.PostStatusDraft:   "Draft",
	model.PostStatusPending: "Pending",
}

// CSVExporter 问题商品 CSV 导出
type CSVExporter struct {
	reports *ReportService
	siteURL string
}

// NewCSVExporter 创建 CSV 导出器，siteURL 用于生成后台编辑链接
func NewCSVExporter(reports *ReportService, siteURL string) *CSVExporter {
	return &CSVExporter{
		reports: reports,
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

// Export 写出 CSV（总是包含表头），返回数据行数
func (e *CSVExporter) Export(ctx context.Context, w io.Writer) (int, error) {
	report, err := e.reports.Build(ctx)
	if err != nil {
		return 0, err
	}
	return e.Write(w, report)
}

// Write 将报表写为 CSV
func (e *CSVExporter) Write(w io.Writer, report *model.Report) (int, error) {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return 0, fmt.Errorf("write bom failed: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write csv header failed: %w", err)
	}

	items := ProblemProducts(report)
	for _, item := range items {
		p := item.Product
		status, ok := statusLabels[p.Status]
		if !ok {
			status = p.Status
		}

		row := []string{
			strconv.FormatInt(p.ID, 10),
			p.Title,
			p.SKU,
			status,
			formatMeasure(p.Weight, numfmt.Weight),
			formatMeasure(p.Width, numfmt.Dimension),
			formatMeasure(p.Height, numfmt.Dimension),
			formatMeasure(p.Length, numfmt.Dimension),
			strings.Join(item.Problems, ", "),
			e.EditLink(p.ID),
		}
		if err := cw.Write(row); err != nil {
			return 0, fmt.Errorf("write csv row %d failed: %w", p.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv failed: %w", err)
	}
	return len(items), nil
}

// EditLink WordPress 后台商品编辑链接
func (e *CSVExporter) EditLink(productID int64) string {
	return fmt.Sprintf("%s/wp-admin/post.php?post=%d&action=edit", e.siteURL, productID)
}

func formatMeasure(raw string, format func(float64) string) string {
	v := ParseMeasure(raw)
	if v == nil {
		return ""
	}
	return format(*v)
}
