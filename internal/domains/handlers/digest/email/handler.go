package email

import (
	"context"

	"weightguard/internal/domains/common"
	"weightguard/internal/domains/common/job"
	"weightguard/internal/domains/common/response"
	"weightguard/internal/model"
	"weightguard/pkg/errorutil"
)

// DigestHandler 汇总邮件 Handler（由调度器投递）
type DigestHandler struct {
	ctx  context.Context
	svc  *common.Services
	meta *job.Meta
	data model.DigestEmailData
}

// NewDigestHandler 创建汇总邮件 Handler，frequency 为空时使用当前配置
func NewDigestHandler(ctx context.Context, svc *common.Services, meta *job.Meta, payload interface{}) (common.HandlerServ, error) {
	var data model.DigestEmailData
	if payload != nil {
		if err := job.DecodeData(payload, &data); err != nil {
			return nil, err
		}
	}
	return &DigestHandler{ctx: ctx, svc: svc, meta: meta, data: data}, nil
}

// GetProcess 发送汇总邮件
func (h *DigestHandler) GetProcess() *response.Response {
	resp := &response.Response{}
	if h.svc.Digest == nil {
		resp.WrapResponse(nil, h.meta, errorutil.NonRetriable("digest service not configured"))
		return resp
	}

	result, err := h.svc.Digest.Send(h.ctx, h.data.Frequency)
	resp.WrapResponse(result, h.meta, err)
	return resp
}
