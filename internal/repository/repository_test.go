package repository

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"aiharu-api/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestAnalysisRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisRepository(newTestDB(t))

	a := &MealAnalysis{OwnerID: "user-1", MealText: "우유, 토스트", AnalysisText: "#### 1. 분석"}
	require.NoError(t, repo.Create(ctx, a))
	require.NotEmpty(t, a.ID)

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.OwnerID)
	assert.Equal(t, "#### 1. 분석", got.AnalysisText)
}

func TestAnalysisRepository_GetMissing(t *testing.T) {
	repo := NewAnalysisRepository(newTestDB(t))

	_, err := repo.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrAnalysisNotFound))
}

func TestAnalysisRepository_SaveMealRecommendationUpserts(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisRepository(newTestDB(t))

	require.NoError(t, repo.SaveMealRecommendation(ctx, &MealRecommendation{
		AnalysisID: "a-1", OwnerID: "user-1", Content: "- 현미밥", Ingredients: "현미밥",
	}))
	require.NoError(t, repo.SaveMealRecommendation(ctx, &MealRecommendation{
		AnalysisID: "a-1", OwnerID: "user-1", Content: "- 잡곡밥\n- 두부조림", Ingredients: "잡곡밥,두부조림",
	}))

	got, err := repo.GetMealRecommendation(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "잡곡밥,두부조림", got.Ingredients)

	_, err = repo.GetMealRecommendation(ctx, "a-2")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRecommendationRepository_CreateIfAbsentDedups(t *testing.T) {
	ctx := context.Background()
	repo := NewRecommendationRepository(newTestDB(t))

	first := &NutritionRecommendation{OwnerID: "user-1", AnalysisID: "a-1", Category: "칼슘", Content: "칼슘 보충이 필요합니다"}
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, StatusPending, first.Status)
	assert.False(t, first.RecommendedAt.IsZero())

	created, err = repo.CreateIfAbsent(ctx, &NutritionRecommendation{
		OwnerID: "user-1", AnalysisID: "a-1", Category: "칼슘", Content: "칼슘 보충이 필요합니다",
	})
	require.NoError(t, err)
	assert.False(t, created)

	// 不同分析可以有相同建議
	created, err = repo.CreateIfAbsent(ctx, &NutritionRecommendation{
		OwnerID: "user-1", AnalysisID: "a-2", Category: "칼슘", Content: "칼슘 보충이 필요합니다",
	})
	require.NoError(t, err)
	assert.True(t, created)

	recs, err := repo.ListByOwner(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestRecommendationRepository_LongContent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRecommendationRepository(db)

	cols, err := db.Migrator().ColumnTypes(&NutritionRecommendation{})
	require.NoError(t, err)
	for _, col := range cols {
		if col.Name() == "content" {
			assert.True(t, strings.EqualFold("text", col.DatabaseTypeName()), col.DatabaseTypeName())
		}
	}

	content := strings.Repeat("우유와 치즈 같은 칼슘 식품을 추천합니다. ", 40)
	rec := &NutritionRecommendation{OwnerID: "user-1", AnalysisID: "a-1", Category: "칼슘", Content: content}
	created, err := repo.CreateIfAbsent(ctx, rec)
	require.NoError(t, err)
	assert.True(t, created)

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, content, got.Content)
}

func TestRecommendationRepository_ListPendingBefore(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRecommendationRepository(db)

	older := time.Now().Add(-24 * time.Hour)
	for _, rec := range []*NutritionRecommendation{
		{OwnerID: "user-1", AnalysisID: "a-1", Category: "칼슘", Content: "칼슘 보충이 필요합니다", RecommendedAt: older},
		{OwnerID: "user-1", AnalysisID: "a-1", Category: "철분", Content: "철분 보충이 필요합니다", RecommendedAt: older, Status: StatusAchieved},
		{OwnerID: "user-1", AnalysisID: "a-2", Category: "단백질", Content: "단백질 보충이 필요합니다"},
		{OwnerID: "user-2", AnalysisID: "a-3", Category: "칼슘", Content: "칼슘 보충이 필요합니다"},
	} {
		_, err := repo.CreateIfAbsent(ctx, rec)
		require.NoError(t, err)
	}

	pending, err := repo.ListPendingBefore(ctx, "user-1", "a-2")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "칼슘", pending[0].Category)

	achieved, err := repo.ListByOwner(ctx, "user-1", StatusAchieved)
	require.NoError(t, err)
	require.Len(t, achieved, 1)
	assert.Equal(t, "철분", achieved[0].Category)

	got, err := repo.Get(ctx, pending[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "a-1", got.AnalysisID)
}

func TestRecommendationRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewRecommendationRepository(newTestDB(t))

	rec := &NutritionRecommendation{OwnerID: "user-1", AnalysisID: "a-1", Category: "칼슘", Content: "칼슘 보충이 필요합니다"}
	_, err := repo.CreateIfAbsent(ctx, rec)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, rec.ID, StatusAchieved))
	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAchieved, got.Status)

	assert.True(t, errors.Is(repo.UpdateStatus(ctx, "missing", StatusAchieved), common.ErrNotFound))
}
