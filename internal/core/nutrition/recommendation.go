package nutrition

import (
	"regexp"
	"strings"
)

// RecommendationSection 分析結果第 6 節「明日推薦早餐」
const RecommendationSection = 6

// Recommendation 推薦餐點內容與食材
type Recommendation struct {
	Content     string   `json:"content"`
	Ingredients []string `json:"ingredients"`
}

// IngredientString 以逗號串接食材，供儲存使用
func (r *Recommendation) IngredientString() string {
	return strings.Join(r.Ingredients, ",")
}

var (
	recommendTitle   = regexp.MustCompile(`추천`)
	mealLabelPattern = regexp.MustCompile(`(?m)^([ \t]*)(?:[-*•][ \t]*)?(?:\*\*)?[ \t]*추천[ \t]*식단[ \t]*(?:\*\*)?[ \t]*[:：][ \t]*(?:\*\*)?[ \t]*`)
	bulletPattern    = regexp.MustCompile(`(?m)^[ \t]*(?:[-*•·]|\d{1,2}[.)])[ \t]+`)
	trailingSpace    = regexp.MustCompile(`(?m)[ \t]+$`)
	blankLines       = regexp.MustCompile(`\n{3,}`)
	tokenSeparators  = regexp.MustCompile(`[\n,，\-]`)
	leadingJunk      = regexp.MustCompile(`^[^0-9A-Za-z\p{Hangul}]+`)
	openParenTail    = regexp.MustCompile(`[(（][^)）]*$`)
)

// ExtractRecommendation 取出第 6 節推薦內容並整理格式；找不到或內容為空時回傳 false。
// 先找標題含「추천」的節，整理後為空再退回不限標題的候選。
func ExtractRecommendation(text string) (*Recommendation, bool) {
	candidates := FindSections(text, RecommendationSection, recommendTitle)
	candidates = append(candidates, FindSections(text, RecommendationSection, nil)...)

	for _, sec := range candidates {
		content := cleanRecommendation(sec.Body)
		if content == "" {
			continue
		}
		return &Recommendation{
			Content:     content,
			Ingredients: Ingredients(content),
		}, true
	}
	return nil, false
}

func cleanRecommendation(body string) string {
	s := mealLabelPattern.ReplaceAllString(body, "$1")
	s = bulletPattern.ReplaceAllString(s, "- ")
	s = trailingSpace.ReplaceAllString(s, "")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Ingredients 將推薦內容切成食材名稱，保留順序與重複項目
func Ingredients(content string) []string {
	content = stripParens(content)
	var out []string
	for _, token := range tokenSeparators.Split(content, -1) {
		token = leadingJunk.ReplaceAllString(token, "")
		token = openParenTail.ReplaceAllString(stripParens(token), "")
		token = strings.TrimSpace(token)
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}

// stripParens 去除括號內容（含巢狀）
func stripParens(s string) string {
	for {
		next := parenPattern.ReplaceAllString(s, "")
		if next == s {
			return s
		}
		s = next
	}
}
