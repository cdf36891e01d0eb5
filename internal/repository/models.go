package repository

import "time"

// 建議狀態
const (
	StatusPending  = "pending"
	StatusAchieved = "achieved"
)

// MealAnalysis 一次餐點分析：使用者輸入與 AI 原始輸出
type MealAnalysis struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID      string    `gorm:"type:varchar(64);index;not null" json:"owner_id"`
	MealText     string    `gorm:"type:text" json:"meal_text"`
	AnalysisText string    `gorm:"type:text;not null" json:"analysis_text"`
	Model        string    `gorm:"type:varchar(128)" json:"model"`
	CreatedAt    time.Time `json:"created_at"`
}

// MealRecommendation 分析結果中的明日推薦餐點
type MealRecommendation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AnalysisID  string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"analysis_id"`
	OwnerID     string    `gorm:"type:varchar(64);index;not null" json:"owner_id"`
	Content     string    `gorm:"type:text" json:"content"`
	Ingredients string    `gorm:"type:text" json:"ingredients"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NutritionRecommendation 不足營養素建議；(analysis_id, category, content) 至多一筆
type NutritionRecommendation struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID       string    `gorm:"type:varchar(64);index;not null" json:"owner_id"`
	AnalysisID    string    `gorm:"type:varchar(36);index:idx_rec_triple;not null" json:"analysis_id"`
	RecommendedAt time.Time `gorm:"index" json:"recommended_at"`
	Category      string    `gorm:"type:varchar(64);index:idx_rec_triple;not null" json:"category"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Status        string    `gorm:"type:varchar(16);index;not null;default:pending" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Models 需要 migrate 的資料表
func Models() []interface{} {
	return []interface{}{
		&MealAnalysis{},
		&MealRecommendation{},
		&NutritionRecommendation{},
	}
}
