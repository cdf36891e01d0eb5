package nutrition

import (
	"encoding/json"
	"regexp"
	"strings"

	"aiharu-api/internal/pkg/common"
)

// PercentField JSON 中「建議攝取量百分比」欄位
const PercentField = "권장 섭취량 대비 백분율"

var (
	trailingPercentUnit = regexp.MustCompile(`\s*[(（]\s*%\s*[)）]\s*$`)
	comparisonHeader    = regexp.MustCompile(`%\s*로\s*비교`)
	dailyJSONTitle      = regexp.MustCompile(`(?i)^json\b`)
)

// ExtractPercents 取出建議攝取量百分比。
// 優先使用 ```json 區塊中的百分比欄位；欄位存在時即使部分為 0 也直接回傳，不與表格合併。
// 其次使用含「%로 비교」欄位的表格。兩者皆無時回傳全 0。
func ExtractPercents(text string) PercentMap {
	if m, ok := percentsFromJSON(text); ok {
		return m
	}
	if m, ok := percentsFromTable(text); ok {
		return m
	}
	return newPercentMap()
}

// percentsFromJSON 解析失敗或缺少欄位時回傳 false
func percentsFromJSON(text string) (PercentMap, bool) {
	raw, ok := fencedJSON(text)
	if !ok {
		return nil, false
	}
	field, ok := percentObject(raw)
	if !ok {
		return nil, false
	}

	out := newPercentMap()
	for key, v := range field {
		name := trailingPercentUnit.ReplaceAllString(key, "")
		if k, ok := LookupNutrient(name); ok {
			out[k] = toFloat(v)
		}
	}
	return out, true
}

// percentObject 取出頂層百分比欄位；欄位存在但不是物件時回傳空物件
func percentObject(raw string) (map[string]interface{}, bool) {
	var doc map[string]interface{}
	if err := common.ParseJSON(raw, &doc); err != nil {
		return nil, false
	}
	want := normalizeName(PercentField)
	for key, v := range doc {
		if normalizeName(key) != want {
			continue
		}
		obj, _ := v.(map[string]interface{})
		if obj == nil {
			obj = map[string]interface{}{}
		}
		return obj, true
	}
	return nil, false
}

func percentsFromTable(text string) (PercentMap, bool) {
	pctCol := -1
	t, ok := findTable(text, func(header []string) bool {
		for i, cell := range header {
			if comparisonHeader.MatchString(cell) {
				pctCol = i
				return true
			}
		}
		return false
	})
	if !ok {
		return nil, false
	}

	out := newPercentMap()
	for _, row := range t.rows {
		if len(row) == 0 || pctCol >= len(row) {
			continue
		}
		k, ok := LookupNutrient(row[0])
		if !ok {
			continue
		}
		out[k] = parseNumber(strings.TrimSuffix(strings.TrimSpace(row[pctCol]), "%"))
	}
	return out, true
}

// ExtractDailyPercents 日報頁面使用的寬鬆版本：
// 需有「7. JSON」標題與其後的 ```json 區塊，鍵名去掉所有括號與 % 後比對。
// 沒有標題或無法解析時回傳 nil，與「有區塊但沒有值」的空 map 區分。
func ExtractDailyPercents(text string) PercentMap {
	sec, ok := FindSection(text, 7, dailyJSONTitle)
	if !ok {
		return nil
	}
	raw, ok := fencedJSON(sec.Body)
	if !ok {
		return nil
	}
	var doc map[string]interface{}
	if err := common.ParseJSON(raw, &doc); err != nil {
		return nil
	}

	out := PercentMap{}
	want := normalizeName(PercentField)
	for key, v := range doc {
		if normalizeName(key) != want {
			continue
		}
		obj, _ := v.(map[string]interface{})
		for name, pv := range obj {
			cleaned := strings.ReplaceAll(parenPattern.ReplaceAllString(name, ""), "%", "")
			if k, ok := LookupNutrient(cleaned); ok {
				out[k] = toFloat(pv)
			}
		}
	}
	return out
}

// toFloat 數值或數字字串轉 float64，其餘為 0
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil || f < 0 {
			return 0
		}
		return f
	case float64:
		if n < 0 {
			return 0
		}
		return n
	case string:
		return parseNumber(strings.TrimSuffix(strings.TrimSpace(n), "%"))
	default:
		return 0
	}
}
