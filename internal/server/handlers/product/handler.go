package product

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"weightguard/internal/business"
	"weightguard/internal/model"
	"weightguard/internal/server/ginx"
)

// Checker 单商品检查
type Checker interface {
	Check(ctx context.Context, productID int64) (*model.CheckResult, error)
}

// BulkEditor 批量操作与快速编辑
type BulkEditor interface {
	Apply(ctx context.Context, req *business.BulkRequest) (*business.BulkResult, error)
	UpdateMeasures(ctx context.Context, productID int64, in *business.MeasuresInput) (*model.CheckResult, error)
}

// ProductHandler 商品 HTTP 处理器
type ProductHandler struct {
	checker Checker
	bulk    BulkEditor
}

// NewProductHandler 创建商品处理器
func NewProductHandler(checker Checker, bulk BulkEditor) *ProductHandler {
	return &ProductHandler{checker: checker, bulk: bulk}
}

// Check 立即检查单个商品（保存商品后的钩子）
// POST /api/v1/products/:id/check
func (h *ProductHandler) Check(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	result, err := h.checker.Check(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ginx.Success(c, result)
}

// UpdateMeasures 快速编辑度量
// PATCH /api/v1/products/:id/measures
func (h *ProductHandler) UpdateMeasures(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var in business.MeasuresInput
	if err := c.ShouldBindJSON(&in); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.bulk.UpdateMeasures(c.Request.Context(), id, &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ginx.Success(c, result)
}

// Bulk 批量操作
// POST /api/v1/products/bulk
func (h *ProductHandler) Bulk(c *gin.Context) {
	var req business.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	result, err := h.bulk.Apply(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ginx.Success(c, result)
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ginx.BadRequest(c, fmt.Sprintf("invalid product id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
