package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"weightguard/internal/model"
	"weightguard/internal/server/ginx"
	"weightguard/pkg/errorutil"
	"weightguard/pkg/logger"
)

// ErrorHandler 统一错误处理：handler 通过 c.Error 上报，这里映射 HTTP 状态码
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		code, message := StatusOf(err)
		if code >= http.StatusInternalServerError {
			log.Errorf(c.Request.Context(), "[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		}
		ginx.Error(c, code, message)
	}
}

// StatusOf 错误对应的 HTTP 状态码与对外消息
func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrProductNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, model.ErrInvalidSettings),
		errors.Is(err, model.ErrInvalidMeasure),
		errors.Is(err, model.ErrEmptySelection),
		errors.Is(err, model.ErrUnknownAction):
		return http.StatusBadRequest, err.Error()
	}

	var e *errorutil.Error
	if errors.As(err, &e) && e.Code != 0 {
		if e.Code >= http.StatusInternalServerError {
			return e.Code, http.StatusText(e.Code)
		}
		return e.Code, e.Message
	}

	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
