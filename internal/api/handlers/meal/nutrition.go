package meal

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExtractRequest 擷取請求
type ExtractRequest struct {
	Text string `json:"text" binding:"required"`
}

// HandleExtract POST /nutrition/extract，只做文字擷取不寫入資料庫
func (h *Handler) HandleExtract(c *gin.Context) {
	var req ExtractRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.svc.Extract(req.Text))
}
