package nutrition

import (
	"fmt"
	"regexp"
	"strings"
)

// Deficiency 不足營養素與建議文字
type Deficiency struct {
	Category string `json:"category"`
	Content  string `json:"content"`
}

// Feedback 前次建議是否在新餐點中被落實
type Feedback struct {
	Category       string `json:"category"`
	Achieved       bool   `json:"achieved"`
	MatchedKeyword string `json:"matched_keyword,omitempty"`
	Message        string `json:"message"`
}

// CategoryRule 關鍵字對應分類
type CategoryRule struct {
	Keyword string
	Label   string
}

// 依序比對，較具體的關鍵字在前
var defaultCategoryRules = []CategoryRule{
	{"칼슘", "칼슘"},
	{"철분", "철분"},
	{"비타민D", "비타민D"},
	{"비타민C", "비타민C"},
	{"단백질", "단백질"},
	{"식이섬유", "식이섬유"},
	{"섬유", "식이섬유"},
	{"탄수화물", "탄수화물"},
	{"지방", "지방"},
	{"열량", "열량"},
	{"칼로리", "열량"},
	{"에너지", "열량"},
	{"나트륨", "나트륨"},
	{"채소", "채소"},
	{"과일", "과일"},
	// 單字「철」放最後，避免「제철」被歸為철분
	{"철", "철분"},
}

var defaultAchievementKeywords = map[string][]string{
	"칼슘":    {"우유", "치즈", "요거트", "요구르트", "멸치", "두부"},
	"철분":    {"소고기", "시금치", "달걀", "계란", "콩"},
	"비타민D":  {"연어", "달걀", "계란", "버섯", "우유"},
	"비타민C":  {"귤", "딸기", "키위", "오렌지", "브로콜리", "파프리카"},
	"단백질":   {"달걀", "계란", "두부", "닭고기", "생선", "소고기", "콩"},
	"식이섬유":  {"채소", "현미", "잡곡", "사과", "고구마", "브로콜리"},
	"탄수화물":  {"밥", "빵", "고구마", "감자", "국수"},
	"채소":    {"채소", "시금치", "브로콜리", "당근", "오이", "양배추"},
	"과일":    {"과일", "사과", "바나나", "딸기", "귤", "키위"},
}

const (
	supplementTemplate = "%s 보충이 필요합니다"
	achievedTemplate   = "지난 추천(%s)을 잘 실천했어요! 오늘 식단에 %s이(가) 포함되었어요."
	pendingTemplate    = "지난 추천(%s)이 아직 반영되지 않았어요. 다음 식단에는 %s 식품을 더해 보세요."
)

var (
	deficiencyLine   = regexp.MustCompile(`부족한\s*영양소"?\s*[:：]\s*\[([^\]\n]*)\]`)
	entrySeparator   = regexp.MustCompile(`[,，]`)
	narrativeMarkers = []string{"추천", "보완"}
)

// Mapper 將分析文字轉成不足營養素建議，並判定後續餐點是否落實
type Mapper struct {
	rules     []CategoryRule
	keywords  map[string][]string
	narrative bool
}

// NewMapper 建立 Mapper；narrative 開啟時，沒有「부족한 영양소」列會改掃描含「추천」「보완」的句子
func NewMapper(narrative bool) *Mapper {
	return &Mapper{
		rules:     defaultCategoryRules,
		keywords:  defaultAchievementKeywords,
		narrative: narrative,
	}
}

// Deficiencies 解析「부족한 영양소: [...]」列
func (m *Mapper) Deficiencies(text string) []Deficiency {
	match := deficiencyLine.FindStringSubmatch(text)
	if match == nil {
		if m.narrative {
			return m.narrativeDeficiencies(text)
		}
		return []Deficiency{}
	}

	out := []Deficiency{}
	for _, entry := range entrySeparator.Split(match[1], -1) {
		entry = strings.Trim(strings.TrimSpace(entry), `"'`)
		if entry == "" {
			continue
		}
		label, ok := m.categorize(entry)
		if !ok {
			label = entry
		}
		out = append(out, Deficiency{
			Category: label,
			Content:  fmt.Sprintf(supplementTemplate, label),
		})
	}
	return out
}

// narrativeDeficiencies 逐行掃描建議句，分類不到時歸為「기타」
func (m *Mapper) narrativeDeficiencies(text string) []Deficiency {
	out := []Deficiency{}
	seen := make(map[Deficiency]bool)
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(bulletPattern.ReplaceAllString(line, ""))
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		if line == "" || isMarkdownHeading(line) || !containsAny(line, narrativeMarkers) {
			continue
		}
		label, ok := m.categorize(line)
		if !ok {
			label = "기타"
		}
		d := Deficiency{Category: label, Content: line}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

func (m *Mapper) categorize(entry string) (string, bool) {
	compact := spacePattern.ReplaceAllString(entry, "")
	for _, r := range m.rules {
		if strings.Contains(compact, r.Keyword) {
			return r.Label, true
		}
	}
	return "", false
}

// Keywords 分類對應的代表食材；未定義時回傳分類本身
func (m *Mapper) Keywords(category string) []string {
	if kw, ok := m.keywords[category]; ok && len(kw) > 0 {
		return kw
	}
	return []string{category}
}

// Evaluate 判斷前次建議是否落實：任一關鍵字出現在新餐點或新分析文字中即為達成
func (m *Mapper) Evaluate(category, content, mealText, analysisText string) Feedback {
	fb := Feedback{Category: category}
	for _, kw := range m.Keywords(category) {
		if kw == "" {
			continue
		}
		if strings.Contains(mealText, kw) || strings.Contains(analysisText, kw) {
			fb.Achieved = true
			fb.MatchedKeyword = kw
			break
		}
	}
	if fb.Achieved {
		fb.Message = fmt.Sprintf(achievedTemplate, content, fb.MatchedKeyword)
	} else {
		fb.Message = fmt.Sprintf(pendingTemplate, content, category)
	}
	return fb
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
