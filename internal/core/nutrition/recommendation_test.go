package nutrition

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSection(t *testing.T) {
	sec, ok := FindSection(sampleAnalysis, 4, nil)

	require.True(t, ok)
	assert.Equal(t, 4, sec.Number)
	assert.Equal(t, "평가", sec.Title)
	assert.Equal(t, "부족한 영양소: [칼슘, 철분, 비타민 D]", strings.TrimSpace(sec.Body))
}

func TestFindSection_TitleFilter(t *testing.T) {
	text := "6. 첫 번째\n내용 A\n6. 추천 식단\n내용 B\n7. 다음"

	sec, ok := FindSection(text, 6, regexp.MustCompile(`추천`))

	require.True(t, ok)
	assert.Equal(t, "내용 B", sec.Body)
}

func TestFindSection_IgnoresNonHeadings(t *testing.T) {
	text := "6세 아동 기준\n6.5g 단백질\n## 6 추천\n본문\n7.5g 지방\n계속\n## 7) 마지막"

	sec, ok := FindSection(text, 6, nil)

	require.True(t, ok)
	assert.Equal(t, "추천", sec.Title)
	assert.Equal(t, "본문\n7.5g 지방\n계속", sec.Body)
}

func TestFindSection_MarkedHeadingKeepsNumberedList(t *testing.T) {
	text := "#### 6. 추천\n1. 하나\n7. 일곱\n8. 여덟\n#### 7. JSON\n{}"

	sec, ok := FindSection(text, 6, nil)

	require.True(t, ok)
	assert.Equal(t, "1. 하나\n7. 일곱\n8. 여덟", sec.Body)
}

func TestFindSection_PrefersMarkedHeading(t *testing.T) {
	text := "#### 5. 개선점\n6. 추천 항목\n#### 6. 식단\n본문"

	sec, ok := FindSection(text, 6, nil)
	require.True(t, ok)
	assert.Equal(t, "식단", sec.Title)
	assert.Equal(t, "본문", sec.Body)

	_, ok = FindSection(text, 6, regexp.MustCompile(`추천`))
	assert.False(t, ok)
}

func TestFindSection_NotFound(t *testing.T) {
	_, ok := FindSection("1. 하나\n2. 둘", 6, nil)
	assert.False(t, ok)
}

func TestExtractRecommendation(t *testing.T) {
	rec, ok := ExtractRecommendation(sampleAnalysis)

	require.True(t, ok)
	assert.Equal(t, "- 현미밥 (1공기)\n- 두부조림(2조각)\n\n- 시금치나물", rec.Content)
	assert.Equal(t, []string{"현미밥", "두부조림", "시금치나물"}, rec.Ingredients)
	assert.Equal(t, "현미밥,두부조림,시금치나물", rec.IngredientString())
}

func TestExtractRecommendation_PlainLabelAndNumberedList(t *testing.T) {
	text := "6) 내일 아침 추천\n추천식단: 잡곡밥, 된장국\n1. 계란찜\n2. 과일(사과)\n"

	rec, ok := ExtractRecommendation(text)

	require.True(t, ok)
	assert.Equal(t, "잡곡밥, 된장국\n- 계란찜\n- 과일(사과)", rec.Content)
	assert.Equal(t, []string{"잡곡밥", "된장국", "계란찜", "과일"}, rec.Ingredients)
}

func TestExtractRecommendation_LongNumberedList(t *testing.T) {
	dishes := []string{"현미밥", "미역국", "계란말이", "시금치나물", "두부조림", "멸치볶음", "우유", "사과"}
	var b strings.Builder
	b.WriteString("#### 5. 개선점\n채소를 늘려요\n#### 6. 내일 아침 추천 식단\n")
	for i, d := range dishes {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d)
	}
	b.WriteString("#### 7. JSON\n```json\n{}\n```")

	rec, ok := ExtractRecommendation(b.String())

	require.True(t, ok)
	assert.Equal(t, dishes, rec.Ingredients)
}

func TestExtractRecommendation_ListItemInEarlierSection(t *testing.T) {
	text := "#### 5. 개선점\n5. 채소를 늘려요\n6. 내일은 우유를 추천해요\n#### 6. 내일 아침 식단\n- 현미밥\n#### 7. JSON"

	rec, ok := ExtractRecommendation(text)

	require.True(t, ok)
	assert.Equal(t, "- 현미밥", rec.Content)
	assert.Equal(t, []string{"현미밥"}, rec.Ingredients)
}

func TestExtractRecommendation_FallsBackWhenTitledSectionEmpty(t *testing.T) {
	text := "6. 추천\n**추천식단:**\n7. 기타\n6. 내일 식단\n- 두부조림"

	rec, ok := ExtractRecommendation(text)

	require.True(t, ok)
	assert.Equal(t, []string{"두부조림"}, rec.Ingredients)
}

func TestExtractRecommendation_Missing(t *testing.T) {
	_, ok := ExtractRecommendation("#### 5. 개선점\n채소 추가")
	assert.False(t, ok)

	_, ok = ExtractRecommendation("#### 6. 추천 식단\n**추천식단:**\n\n#### 7. JSON")
	assert.False(t, ok, "empty section after cleaning")
}

func TestExtractRecommendation_Idempotent(t *testing.T) {
	first, ok1 := ExtractRecommendation(sampleAnalysis)
	second, ok2 := ExtractRecommendation(sampleAnalysis)

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestIngredients_RoundTrip(t *testing.T) {
	dishes := []string{"현미밥", "소고기 미역국", "계란말이", "브로콜리 무침", "현미밥"}
	notes := []string{" (1공기)", "", "(2조각, 케첩 없이)", " （소량）", ""}

	var lines []string
	for i, d := range dishes {
		lines = append(lines, "- "+d+notes[i])
	}

	assert.Equal(t, dishes, Ingredients(strings.Join(lines, "\n")))
}

func TestIngredients_SplitsAndStrips(t *testing.T) {
	got := Ingredients("• 우유 200ml, 바나나\n★ 통밀빵-딸기잼\n\n,  ,")

	assert.Equal(t, []string{"우유 200ml", "바나나", "통밀빵", "딸기잼"}, got)
}
