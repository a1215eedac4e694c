package settings

import (
	"context"

	"github.com/gin-gonic/gin"

	"weightguard/internal/business"
	"weightguard/internal/model"
	"weightguard/internal/server/ginx"
)

// Service 配置服务
type Service interface {
	Load(ctx context.Context) (*model.Settings, error)
	Save(ctx context.Context, in *business.SettingsInput) (*model.Settings, error)
}

// SettingsHandler 配置 HTTP 处理器
type SettingsHandler struct {
	svc Service
}

// NewSettingsHandler 创建配置处理器
func NewSettingsHandler(svc Service) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Get 读取配置
// GET /api/v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.svc.Load(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ginx.Success(c, s)
}

// Update 保存配置
// PUT /api/v1/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var in business.SettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	s, err := h.svc.Save(c.Request.Context(), &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ginx.Success(c, s)
}
