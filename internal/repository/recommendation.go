package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aiharu-api/internal/pkg/common"

	"gorm.io/gorm"
)

// RecommendationRepository 不足營養素建議存取
type RecommendationRepository struct {
	db *gorm.DB
}

// NewRecommendationRepository 創建建議存取
func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// CreateIfAbsent 同一 (analysis_id, category, content) 已存在時不再寫入。
// 檢查與寫入之間沒有鎖，併發時最多多出一筆重複資料。
func (r *RecommendationRepository) CreateIfAbsent(ctx context.Context, rec *NutritionRecommendation) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&NutritionRecommendation{}).
		Where("analysis_id = ? AND category = ? AND content = ?", rec.AnalysisID, rec.Category, rec.Content).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check recommendation: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if rec.ID == "" {
		rec.ID = common.GenerateUUID()
	}
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	if rec.RecommendedAt.IsZero() {
		rec.RecommendedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return false, fmt.Errorf("failed to create recommendation: %w", err)
	}
	return true, nil
}

// Get 取得單筆建議
func (r *RecommendationRepository) Get(ctx context.Context, id string) (*NutritionRecommendation, error) {
	var rec NutritionRecommendation
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound.Wrap(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation %s: %w", id, err)
	}
	return &rec, nil
}

// ListByOwner 依建議時間新到舊列出；status 為空時不篩選
func (r *RecommendationRepository) ListByOwner(ctx context.Context, ownerID, status string) ([]NutritionRecommendation, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var recs []NutritionRecommendation
	if err := q.Order("recommended_at DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	return recs, nil
}

// ListPendingBefore 列出某分析之前產生、仍待落實的建議
func (r *RecommendationRepository) ListPendingBefore(ctx context.Context, ownerID, excludeAnalysisID string) ([]NutritionRecommendation, error) {
	var recs []NutritionRecommendation
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ? AND analysis_id <> ?", ownerID, StatusPending, excludeAnalysisID).
		Order("recommended_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending recommendations: %w", err)
	}
	return recs, nil
}

// UpdateStatus 更新建議狀態
func (r *RecommendationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).Model(&NutritionRecommendation{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update recommendation %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}
