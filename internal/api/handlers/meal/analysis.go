package meal

import (
	"net/http"
	"strings"

	mealService "aiharu-api/internal/core/meal"
	"aiharu-api/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// AnalyzeRequest 分析請求；user_id 與 anonymous_id 都沒有時自動產生匿名 ID
type AnalyzeRequest struct {
	Image       string `json:"image"`
	MealText    string `json:"meal_text"`
	UserID      string `json:"user_id"`
	AnonymousID string `json:"anonymous_id"`
}

// AnalyzeResponse 分析回應
type AnalyzeResponse struct {
	AnonymousID string `json:"anonymous_id,omitempty"`
	*mealService.AnalysisResult
}

// HandleAnalyze POST /meal/analyze
func (h *Handler) HandleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if !bindJSON(c, &req) {
		return
	}

	owner := strings.TrimSpace(req.UserID)
	anonymous := ""
	if owner == "" {
		anonymous = strings.TrimSpace(req.AnonymousID)
		if anonymous == "" {
			anonymous = "anon-" + common.GenerateUUID()
		}
		owner = anonymous
	}

	result, err := h.svc.Analyze(c.Request.Context(), mealService.AnalyzeInput{
		OwnerID:   owner,
		MealText:  req.MealText,
		ImageData: req.Image,
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AnalyzeResponse{AnonymousID: anonymous, AnalysisResult: result})
}

// HandleNutrition GET /meal/analyses/:id/nutrition
func (h *Handler) HandleNutrition(c *gin.Context) {
	res, err := h.svc.Nutrition(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleDaily GET /meal/analyses/:id/daily；沒有 JSON 段落時 percents 為 null
func (h *Handler) HandleDaily(c *gin.Context) {
	percents, err := h.svc.Daily(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"analysis_id": c.Param("id"),
		"available":   percents != nil,
		"percents":    percents,
	})
}

// HandleRecommendation GET /meal/analyses/:id/recommendation
func (h *Handler) HandleRecommendation(c *gin.Context) {
	rec, err := h.svc.Recommendation(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
