package response

import (
	"errors"

	"weightguard/internal/domains/common/job"
	"weightguard/internal/model"
	"weightguard/pkg/errorutil"
)

// Response 统一响应结构
type Response struct {
	Error     *errorutil.Error `json:"error"`
	Result    interface{}      `json:"result"`
	Processed bool             `json:"processed"`
	Meta      *job.Meta        `json:"meta,omitempty"`
}

// WrapResponse 包装响应
func (r *Response) WrapResponse(result interface{}, meta *job.Meta, err error) {
	r.Processed = err == nil
	r.Meta = meta
	r.Error = Classify(err)
	r.Result = result
}

// Retryable 是否需要重新投递
func (r *Response) Retryable() bool {
	return r.Error != nil && r.Error.Retryable
}

// Classify 区分业务错误（不可重试）与基础设施错误（可重试）
func Classify(err error) *errorutil.Error {
	if err == nil {
		return nil
	}

	var e *errorutil.Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, model.ErrProductNotFound):
		return errorutil.NotFound(err)
	case errors.Is(err, model.ErrInvalidSettings),
		errors.Is(err, model.ErrInvalidMeasure),
		errors.Is(err, model.ErrEmptySelection),
		errors.Is(err, model.ErrUnknownAction):
		return errorutil.NonRetriableWrap(err)
	default:
		return errorutil.RetriableWrap(err, "job failed")
	}
}
