package check

import (
	"context"
	"fmt"

	"weightguard/internal/domains/common"
	"weightguard/internal/domains/common/job"
	"weightguard/internal/domains/common/response"
	"weightguard/internal/model"
	"weightguard/pkg/errorutil"
)

// CheckHandler 单商品检查 Handler（商品保存后触发）
type CheckHandler struct {
	ctx  context.Context
	svc  *common.Services
	meta *job.Meta
	data model.ProductCheckData
}

// NewCheckHandler 创建检查 Handler
func NewCheckHandler(ctx context.Context, svc *common.Services, meta *job.Meta, payload interface{}) (common.HandlerServ, error) {
	var data model.ProductCheckData
	if err := job.DecodeData(payload, &data); err != nil {
		return nil, err
	}
	if data.ProductID <= 0 {
		return nil, fmt.Errorf("product_id is required")
	}

	return &CheckHandler{ctx: ctx, svc: svc, meta: meta, data: data}, nil
}

// GetProcess 执行检查
func (h *CheckHandler) GetProcess() *response.Response {
	resp := &response.Response{}
	if h.svc.Checker == nil {
		resp.WrapResponse(nil, h.meta, errorutil.NonRetriable("product checker not configured"))
		return resp
	}

	result, err := h.svc.Checker.Check(h.ctx, h.data.ProductID)
	resp.WrapResponse(result, h.meta, err)
	return resp
}
