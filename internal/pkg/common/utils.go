package common

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RespondError 依 CustomError 寫入錯誤響應；debug 時附上原始錯誤
func RespondError(c *gin.Context, err error) {
	ce := AsCustomError(err)
	resp := ErrorResponse{Code: ce.Code, Message: ce.Message}
	if gin.IsDebugging() && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	if ce.Status >= 500 {
		LogError("請求處理失敗",
			zap.Error(err),
			zap.String("code", ce.Code),
			zap.String("path", c.Request.URL.Path),
		)
	}
	c.AbortWithStatusJSON(ce.Status, resp)
}
