package domains

import (
	"weightguard/internal/domains/common"
	"weightguard/internal/domains/handlers/catalog/reanalyze"
	"weightguard/internal/domains/handlers/digest/email"
	"weightguard/internal/domains/handlers/product/check"
	"weightguard/internal/model"
)

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]common.HandlerServProc{
	model.ActionProductCheck:     check.NewCheckHandler,
	model.ActionCatalogReanalyze: reanalyze.NewReanalyzeHandler,
	model.ActionDigestEmail:      email.NewDigestHandler,
}
