package repository

import (
	"context"
	"errors"
	"fmt"

	"aiharu-api/internal/pkg/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalysisRepository 分析結果與推薦餐點存取
type AnalysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository 創建分析結果存取
func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create 新增分析結果，ID 為空時自動產生
func (r *AnalysisRepository) Create(ctx context.Context, a *MealAnalysis) error {
	if a.ID == "" {
		a.ID = common.GenerateUUID()
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

// Get 取得分析結果
func (r *AnalysisRepository) Get(ctx context.Context, id string) (*MealAnalysis, error) {
	var a MealAnalysis
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrAnalysisNotFound.Wrap(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}
	return &a, nil
}

// SaveMealRecommendation 每個分析只保留一筆推薦餐點，重複寫入時更新內容
func (r *AnalysisRepository) SaveMealRecommendation(ctx context.Context, m *MealRecommendation) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "analysis_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "ingredients", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to save meal recommendation: %w", err)
	}
	return nil
}

// GetMealRecommendation 取得分析的推薦餐點
func (r *AnalysisRepository) GetMealRecommendation(ctx context.Context, analysisID string) (*MealRecommendation, error) {
	var m MealRecommendation
	err := r.db.WithContext(ctx).First(&m, "analysis_id = ?", analysisID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound.Wrap(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal recommendation: %w", err)
	}
	return &m, nil
}
