package meal

import (
	mealService "aiharu-api/internal/core/meal"
	"aiharu-api/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Handler 餐點分析相關 API
type Handler struct {
	svc *mealService.Service
}

// NewHandler 創建處理器
func NewHandler(svc *mealService.Service) *Handler {
	return &Handler{svc: svc}
}

// Register 註冊路由；analyze 為分析路由額外套用的中間件
func (h *Handler) Register(api *gin.RouterGroup, analyze ...gin.HandlerFunc) {
	mealGroup := api.Group("/meal")
	{
		mealGroup.POST("/analyze", append(analyze, h.HandleAnalyze)...)
		mealGroup.GET("/analyses/:id/nutrition", h.HandleNutrition)
		mealGroup.GET("/analyses/:id/daily", h.HandleDaily)
		mealGroup.GET("/analyses/:id/recommendation", h.HandleRecommendation)
	}

	api.POST("/nutrition/extract", h.HandleExtract)

	recGroup := api.Group("/recommendations")
	{
		recGroup.GET("", h.HandleListRecommendations)
		recGroup.POST("/:id/feedback", h.HandleFeedback)
	}
}

func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		common.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return false
	}
	return true
}
