package meal

import (
	"fmt"
	"strings"
)

// analysisPrompt 七段式分析格式；後續的文字擷取依賴段落編號與欄位名稱
const analysisPrompt = `당신은 6~8세 어린이 영양 전문가입니다. 사진%s의 한 끼 식단을 분석하고 아래 형식을 정확히 지켜 한국어로 답하세요.

#### 1. 식단 구성
- 사진 속 음식 목록

#### 2. 영양 성분표
| 음식 | 열량 (kcal) | 탄수화물 (g) | 단백질 (g) | 지방 (g) | 식이섬유 (g) | 칼슘 (mg) | 철분 (mg) | 비타민C (mg) | 비타민D (μg) | 당류 (g) | 나트륨 (mg) |
|------|------|------|------|------|------|------|------|------|------|------|------|
(음식마다 한 행, 숫자만 기입)

#### 3. 권장 섭취량 비교
| 영양소 | 섭취량 | 권장량 | %%로 비교 |
|------|------|------|------|

#### 4. 평가
부족한 영양소: [영양소1, 영양소2]

#### 5. 개선점
- 개선할 점

#### 6. 내일 추천 식단
- 추천 음식 (양)

#### 7. JSON
` + "```json" + `
{"권장 섭취량 대비 백분율": {"열량 (%%)": 0, "탄수화물 (%%)": 0, "단백질 (%%)": 0, "지방 (%%)": 0, "식이섬유 (%%)": 0, "칼슘 (%%)": 0, "철분 (%%)": 0, "비타민C (%%)": 0, "비타민D (%%)": 0, "당류 (%%)": 0, "나트륨 (%%)": 0}, "부족한 영양소": []}
` + "```"

// BuildPrompt 組合分析提示；mealText 為使用者補充的餐點描述
func BuildPrompt(mealText string) string {
	mealText = strings.TrimSpace(mealText)
	if mealText == "" {
		return fmt.Sprintf(analysisPrompt, "")
	}
	return fmt.Sprintf(analysisPrompt, fmt.Sprintf("과 설명(%q)", mealText))
}
