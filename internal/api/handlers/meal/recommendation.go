package meal

import (
	"net/http"

	"aiharu-api/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// FeedbackRequest 回饋請求
type FeedbackRequest struct {
	MealText     string `json:"meal_text"`
	AnalysisText string `json:"analysis_text"`
}

// HandleListRecommendations GET /recommendations?owner_id=&status=
func (h *Handler) HandleListRecommendations(c *gin.Context) {
	recs, err := h.svc.Recommendations(c.Request.Context(), c.Query("owner_id"), c.Query("status"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":           len(recs),
		"recommendations": recs,
	})
}

// HandleFeedback POST /recommendations/:id/feedback
func (h *Handler) HandleFeedback(c *gin.Context) {
	var req FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.MealText == "" && req.AnalysisText == "" {
		common.RespondError(c, common.NewValidationError("meal_text or analysis_text is required"))
		return
	}

	fb, err := h.svc.Feedback(c.Request.Context(), c.Param("id"), req.MealText, req.AnalysisText)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fb)
}
