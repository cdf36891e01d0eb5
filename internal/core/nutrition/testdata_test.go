package nutrition

// sampleAnalysis 模擬 AI 回傳的七段式分析
const sampleAnalysis = `#### 1. 식단 구성
- 현미밥, 미역국, 계란말이

#### 2. 영양 성분표
| 음식 | 열량 (kcal) | 탄수화물 (g) | 단백질 (g) | **칼슘 (mg)** | 비고 |
|------|------|------|------|------|------|
| 현미밥 | 150 | 32.5 | 3 | 10 | |
| 미역국 | 30 | 2 | 2.5 | 60 | 저염 |
| 계란말이 | 52 | 1 | 6 | 25mg | - |

#### 3. 권장 섭취량 비교
| 영양소 | 섭취량 | 권장량 | %로 비교 |
|------|------|------|------|
| 열량 (kcal) | 232 | 1400 | 16.6% |
| 칼슘 (mg) | 95 | 700 | 13.6% |
| 모름 | 1 | 1 | 50% |

#### 4. 평가
부족한 영양소: [칼슘, 철분, 비타민 D]

#### 5. 개선점
- 채소를 보완하면 좋아요.

#### 6. 내일 아침 추천 식단
**추천식단:**
* 현미밥 (1공기)
* 두부조림(2조각)


* 시금치나물

#### 7. JSON
` + "```json" + `
{
  "권장 섭취량 대비 백분율": {"열량 (%)": 16.6, "칼슘 (%)": "12.1", "철분 (%)": 20},
  "부족한 영양소": ["칼슘", "철분", "비타민 D"]
}
` + "```" + `
`
