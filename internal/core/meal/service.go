package meal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aiharu-api/internal/core/ai"
	"aiharu-api/internal/core/nutrition"
	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/pkg/common"
	"aiharu-api/internal/repository"

	"go.uber.org/zap"
)

// Analyzer 產生分析文字的 AI 服務
type Analyzer interface {
	ProcessRequest(ctx context.Context, prompt string, imageData string) (*ai.Response, error)
	Model() string
}

// Service 餐點分析服務
type Service struct {
	analyzer Analyzer
	analyses *repository.AnalysisRepository
	recs     *repository.RecommendationRepository
	mapper   *nutrition.Mapper
	intake   nutrition.IntakeTable
}

// NewService 創建餐點分析服務
func NewService(analyzer Analyzer, analyses *repository.AnalysisRepository, recs *repository.RecommendationRepository, cfg config.NutritionConfig) *Service {
	return &Service{
		analyzer: analyzer,
		analyses: analyses,
		recs:     recs,
		mapper:   nutrition.NewMapper(cfg.NarrativeFallback),
		intake:   nutrition.DefaultIntake().WithOverrides(cfg.RecommendedIntake),
	}
}

// AnalyzeInput 分析請求
type AnalyzeInput struct {
	OwnerID   string
	MealText  string
	ImageData string
}

// NutritionResult 營養成分與建議攝取量百分比
type NutritionResult struct {
	Values        nutrition.ValueMap   `json:"values"`
	Percents      nutrition.PercentMap `json:"percents"`
	Derived       bool                 `json:"derived"`
	ValueSeries   []nutrition.Point    `json:"value_series"`
	PercentSeries []nutrition.Point    `json:"percent_series"`
}

// FeedbackResult 對先前建議的落實回饋
type FeedbackResult struct {
	RecommendationID string `json:"recommendation_id"`
	nutrition.Feedback
}

// Extraction 從分析文字擷取的所有結果
type Extraction struct {
	Nutrition      *NutritionResult          `json:"nutrition"`
	Daily          nutrition.PercentMap      `json:"daily_percents"`
	Recommendation *nutrition.Recommendation `json:"recommendation"`
	Deficiencies   []nutrition.Deficiency    `json:"deficiencies"`
}

// AnalysisResult 分析結果
type AnalysisResult struct {
	ID           string           `json:"id"`
	OwnerID      string           `json:"owner_id"`
	Model        string           `json:"model"`
	CacheHit     bool             `json:"cache_hit"`
	AnalysisText string           `json:"analysis_text"`
	CreatedAt    time.Time        `json:"created_at"`
	Feedback     []FeedbackResult `json:"feedback"`
	*Extraction
}

// Analyze 呼叫 AI 分析餐點，保存結果與不足營養素建議，並回饋先前建議的落實情況
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (*AnalysisResult, error) {
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	if in.OwnerID == "" {
		return nil, common.NewValidationError("user_id or anonymous_id is required")
	}
	if strings.TrimSpace(in.ImageData) == "" && strings.TrimSpace(in.MealText) == "" {
		return nil, common.NewValidationError("image or meal_text is required")
	}

	resp, err := s.analyzer.ProcessRequest(ctx, BuildPrompt(in.MealText), in.ImageData)
	if err != nil {
		return nil, err
	}

	analysis := &repository.MealAnalysis{
		OwnerID:      in.OwnerID,
		MealText:     in.MealText,
		AnalysisText: resp.Content,
		Model:        resp.Model,
	}
	if analysis.Model == "" {
		analysis.Model = s.analyzer.Model()
	}
	if err := s.analyses.Create(ctx, analysis); err != nil {
		return nil, err
	}

	ext := s.Extract(resp.Content)

	if ext.Recommendation != nil {
		err := s.analyses.SaveMealRecommendation(ctx, &repository.MealRecommendation{
			AnalysisID:  analysis.ID,
			OwnerID:     analysis.OwnerID,
			Content:     ext.Recommendation.Content,
			Ingredients: ext.Recommendation.IngredientString(),
		})
		if err != nil {
			return nil, err
		}
	}

	// 先回饋舊建議，避免本次新增的建議被自己評估
	feedback, err := s.evaluatePending(ctx, analysis)
	if err != nil {
		return nil, err
	}

	created := 0
	for _, d := range ext.Deficiencies {
		ok, err := s.recs.CreateIfAbsent(ctx, &repository.NutritionRecommendation{
			OwnerID:       analysis.OwnerID,
			AnalysisID:    analysis.ID,
			RecommendedAt: analysis.CreatedAt,
			Category:      d.Category,
			Content:       d.Content,
		})
		if err != nil {
			return nil, err
		}
		if ok {
			created++
		}
	}

	common.LogInfo("餐點分析完成",
		zap.String("analysis_id", analysis.ID),
		zap.String("model", analysis.Model),
		zap.Bool("cache_hit", resp.CacheHit),
		zap.Int("deficiencies", created),
		zap.Int("feedback", len(feedback)),
	)

	return &AnalysisResult{
		ID:           analysis.ID,
		OwnerID:      analysis.OwnerID,
		Model:        analysis.Model,
		CacheHit:     resp.CacheHit,
		AnalysisText: analysis.AnalysisText,
		CreatedAt:    analysis.CreatedAt,
		Feedback:     feedback,
		Extraction:   ext,
	}, nil
}

func (s *Service) evaluatePending(ctx context.Context, analysis *repository.MealAnalysis) ([]FeedbackResult, error) {
	pending, err := s.recs.ListPendingBefore(ctx, analysis.OwnerID, analysis.ID)
	if err != nil {
		return nil, err
	}

	feedback := make([]FeedbackResult, 0, len(pending))
	for _, rec := range pending {
		fb := s.mapper.Evaluate(rec.Category, rec.Content, analysis.MealText, analysis.AnalysisText)
		if fb.Achieved {
			if err := s.recs.UpdateStatus(ctx, rec.ID, repository.StatusAchieved); err != nil {
				return nil, err
			}
		}
		feedback = append(feedback, FeedbackResult{RecommendationID: rec.ID, Feedback: fb})
	}
	return feedback, nil
}

// Extract 對任意分析文字執行所有擷取步驟，不寫入資料庫
func (s *Service) Extract(text string) *Extraction {
	ext := &Extraction{
		Nutrition:    s.nutritionFrom(text),
		Daily:        nutrition.ExtractDailyPercents(text),
		Deficiencies: s.mapper.Deficiencies(text),
	}
	if rec, ok := nutrition.ExtractRecommendation(text); ok {
		ext.Recommendation = rec
	}
	return ext
}

func (s *Service) nutritionFrom(text string) *NutritionResult {
	values := nutrition.ExtractValues(text)
	percents := nutrition.ExtractPercents(text)
	derived := false
	if percents.IsEmpty() && !values.IsEmpty() {
		percents = nutrition.PercentsFromValues(values, s.intake)
		derived = true
	}
	return &NutritionResult{
		Values:        values,
		Percents:      percents,
		Derived:       derived,
		ValueSeries:   values.Series(),
		PercentSeries: percents.Series(),
	}
}

// Nutrition 分析的營養成分
func (s *Service) Nutrition(ctx context.Context, id string) (*NutritionResult, error) {
	a, err := s.analyses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.nutritionFrom(a.AnalysisText), nil
}

// Daily 第 7 段 JSON 的百分比；沒有該段時回傳 nil
func (s *Service) Daily(ctx context.Context, id string) (nutrition.PercentMap, error) {
	a, err := s.analyses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return nutrition.ExtractDailyPercents(a.AnalysisText), nil
}

// Recommendation 分析的推薦餐點，優先使用已保存的結果
func (s *Service) Recommendation(ctx context.Context, id string) (*nutrition.Recommendation, error) {
	a, err := s.analyses.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	stored, err := s.analyses.GetMealRecommendation(ctx, a.ID)
	switch {
	case err == nil:
		return &nutrition.Recommendation{Content: stored.Content, Ingredients: splitIngredients(stored.Ingredients)}, nil
	case !errors.Is(err, common.ErrNotFound):
		return nil, err
	}

	rec, ok := nutrition.ExtractRecommendation(a.AnalysisText)
	if !ok {
		return nil, common.ErrNotFound.Wrap(fmt.Errorf("analysis %s has no recommendation section", id))
	}
	return rec, nil
}

// Recommendations 列出使用者的不足營養素建議
func (s *Service) Recommendations(ctx context.Context, ownerID, status string) ([]repository.NutritionRecommendation, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, common.NewValidationError("owner_id is required")
	}
	switch status {
	case "", repository.StatusPending, repository.StatusAchieved:
	default:
		return nil, common.NewValidationError(fmt.Sprintf("unknown status %q", status))
	}
	return s.recs.ListByOwner(ctx, ownerID, status)
}

// Feedback 以指定的餐點文字評估單筆建議；達成時更新狀態
func (s *Service) Feedback(ctx context.Context, recID, mealText, analysisText string) (*FeedbackResult, error) {
	rec, err := s.recs.Get(ctx, recID)
	if err != nil {
		return nil, err
	}

	fb := s.mapper.Evaluate(rec.Category, rec.Content, mealText, analysisText)
	if fb.Achieved && rec.Status != repository.StatusAchieved {
		if err := s.recs.UpdateStatus(ctx, rec.ID, repository.StatusAchieved); err != nil {
			return nil, err
		}
	}
	return &FeedbackResult{RecommendationID: rec.ID, Feedback: fb}, nil
}

func splitIngredients(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
