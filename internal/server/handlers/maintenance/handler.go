package maintenance

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"weightguard/internal/model"
	"weightguard/internal/server/ginx"
	"weightguard/pkg/errorutil"
)

// Reanalyzer 全量重检
type Reanalyzer interface {
	Run(ctx context.Context) (*model.ReanalysisResult, error)
}

// DigestSender 汇总邮件
type DigestSender interface {
	Send(ctx context.Context, frequency model.Frequency) (*model.DigestResult, error)
}

// JobQueue 异步任务投递（未配置队列时为 nil）
type JobQueue interface {
	Enqueue(ctx context.Context, actionType, id string, data interface{}) (string, error)
}

// DigestRequest 手动发送汇总邮件请求，frequency 为空时使用当前配置
type DigestRequest struct {
	Frequency model.Frequency `json:"frequency" binding:"omitempty,oneof=daily weekly monthly none"`
}

// MaintenanceHandler 重检与汇总邮件 HTTP 处理器
type MaintenanceHandler struct {
	reanalysis Reanalyzer
	digest     DigestSender
	queue      JobQueue
}

// NewMaintenanceHandler 创建处理器
func NewMaintenanceHandler(reanalysis Reanalyzer, digest DigestSender, queue JobQueue) *MaintenanceHandler {
	return &MaintenanceHandler{reanalysis: reanalysis, digest: digest, queue: queue}
}

// Reanalyze 全量重检，async=true 时投递到队列
// POST /api/v1/reanalysis?async=true
func (h *MaintenanceHandler) Reanalyze(c *gin.Context) {
	if c.Query("async") == "true" {
		h.enqueue(c, model.ActionCatalogReanalyze, model.CatalogReanalyzeData{})
		return
	}

	result, err := h.reanalysis.Run(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ginx.Success(c, result)
}

// Digest 立即发送汇总邮件，async=true 时投递到队列
// POST /api/v1/digest?async=true
func (h *MaintenanceHandler) Digest(c *gin.Context) {
	var req DigestRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	if c.Query("async") == "true" {
		h.enqueue(c, model.ActionDigestEmail, model.DigestEmailData{Frequency: req.Frequency})
		return
	}

	result, err := h.digest.Send(c.Request.Context(), req.Frequency)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ginx.Success(c, result)
}

func (h *MaintenanceHandler) enqueue(c *gin.Context, action string, data interface{}) {
	if h.queue == nil {
		_ = c.Error(errorutil.NonRetriable("job queue is not configured"))
		return
	}

	jobID, err := h.queue.Enqueue(c.Request.Context(), action, "", data)
	if err != nil {
		_ = c.Error(errorutil.RetriableWrap(err, "enqueue failed"))
		return
	}
	ginx.Accepted(c, jobID, action)
}
