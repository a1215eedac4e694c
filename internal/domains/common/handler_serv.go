package common

import (
	"context"

	"weightguard/internal/domains/common/job"
	"weightguard/internal/domains/common/response"
	"weightguard/internal/model"
)

// ProductChecker 单商品检查
type ProductChecker interface {
	Check(ctx context.Context, productID int64) (*model.CheckResult, error)
}

// Reanalyzer 全量重检
type Reanalyzer interface {
	Run(ctx context.Context) (*model.ReanalysisResult, error)
}

// DigestSender 汇总邮件
type DigestSender interface {
	Send(ctx context.Context, frequency model.Frequency) (*model.DigestResult, error)
}

// Services Handler 依赖的业务服务
type Services struct {
	Checker    ProductChecker
	Reanalysis Reanalyzer
	Digest     DigestSender
}

// HandlerServProc Handler 构造函数类型
type HandlerServProc func(ctx context.Context, svc *Services, meta *job.Meta, payload interface{}) (HandlerServ, error)

// HandlerServ Handler 接口
type HandlerServ interface {
	GetProcess() *response.Response
}
