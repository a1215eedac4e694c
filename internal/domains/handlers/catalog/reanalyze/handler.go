package reanalyze

import (
	"context"

	"weightguard/internal/domains/common"
	"weightguard/internal/domains/common/job"
	"weightguard/internal/domains/common/response"
	"weightguard/pkg/errorutil"
)

// ReanalyzeHandler 全量重检 Handler
type ReanalyzeHandler struct {
	ctx  context.Context
	svc  *common.Services
	meta *job.Meta
}

// NewReanalyzeHandler 创建重检 Handler（无业务参数）
func NewReanalyzeHandler(ctx context.Context, svc *common.Services, meta *job.Meta, _ interface{}) (common.HandlerServ, error) {
	return &ReanalyzeHandler{ctx: ctx, svc: svc, meta: meta}, nil
}

// GetProcess 执行重检
func (h *ReanalyzeHandler) GetProcess() *response.Response {
	resp := &response.Response{}
	if h.svc.Reanalysis == nil {
		resp.WrapResponse(nil, h.meta, errorutil.NonRetriable("reanalysis service not configured"))
		return resp
	}

	result, err := h.svc.Reanalysis.Run(h.ctx)
	resp.WrapResponse(result, h.meta, err)
	return resp
}
