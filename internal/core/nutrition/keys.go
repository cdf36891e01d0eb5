package nutrition

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NutrientKey 營養素名稱，固定十一項
type NutrientKey string

const (
	Energy       NutrientKey = "열량"
	Carbohydrate NutrientKey = "탄수화물"
	Protein      NutrientKey = "단백질"
	Fat          NutrientKey = "지방"
	Fiber        NutrientKey = "식이섬유"
	Calcium      NutrientKey = "칼슘"
	Iron         NutrientKey = "철분"
	VitaminC     NutrientKey = "비타민C"
	VitaminD     NutrientKey = "비타민D"
	Sugar        NutrientKey = "당류"
	Sodium       NutrientKey = "나트륨"
)

var allNutrients = [...]NutrientKey{
	Energy, Carbohydrate, Protein, Fat, Fiber,
	Calcium, Iron, VitaminC, VitaminD, Sugar, Sodium,
}

// Nutrients 回傳固定順序的營養素清單（圖表順序）
func Nutrients() []NutrientKey {
	out := make([]NutrientKey, len(allNutrients))
	copy(out, allNutrients[:])
	return out
}

var (
	parenPattern = regexp.MustCompile(`\([^()]*\)|（[^（）]*）`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// normalizeName 去除單位括號、粗體標記與空白
func normalizeName(s string) string {
	s = norm.NFC.String(s)
	s = parenPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "**", "")
	return spacePattern.ReplaceAllString(strings.TrimSpace(s), "")
}

// LookupNutrient 將名稱對應到營養素，未知名稱回傳 false
func LookupNutrient(name string) (NutrientKey, bool) {
	n := normalizeName(name)
	for _, k := range allNutrients {
		if string(k) == n {
			return k, true
		}
	}
	return "", false
}

// Point 圖表資料點
type Point struct {
	Nutrient NutrientKey `json:"nutrient"`
	Value    float64     `json:"value"`
}

// ValueMap 營養素絕對量（kcal、g、mg、µg 依項目而定）
type ValueMap map[NutrientKey]float64

// PercentMap 相對於建議攝取量的百分比
type PercentMap map[NutrientKey]float64

func zeroFilled() map[NutrientKey]float64 {
	m := make(map[NutrientKey]float64, len(allNutrients))
	for _, k := range allNutrients {
		m[k] = 0
	}
	return m
}

func newValueMap() ValueMap     { return ValueMap(zeroFilled()) }
func newPercentMap() PercentMap { return PercentMap(zeroFilled()) }

// IsEmpty 全部為 0 視為沒有資料
func (m ValueMap) IsEmpty() bool { return allZero(m) }

// Series 依固定順序輸出
func (m ValueMap) Series() []Point { return series(m) }

// IsEmpty 全部為 0 視為沒有資料
func (m PercentMap) IsEmpty() bool { return allZero(m) }

// Series 依固定順序輸出；只輸出 map 中存在的項目
func (m PercentMap) Series() []Point { return series(m) }

func allZero(m map[NutrientKey]float64) bool {
	for _, v := range m {
		if v != 0 {
			return false
		}
	}
	return true
}

func series(m map[NutrientKey]float64) []Point {
	points := make([]Point, 0, len(m))
	for _, k := range allNutrients {
		if v, ok := m[k]; ok {
			points = append(points, Point{Nutrient: k, Value: v})
		}
	}
	return points
}

// IntakeTable 建議攝取量基準（6~8 歲、一餐）
type IntakeTable map[NutrientKey]float64

// DefaultIntake 回傳基準表的副本
func DefaultIntake() IntakeTable {
	return IntakeTable{
		Energy:       1400,
		Carbohydrate: 130,
		Protein:      35,
		Fat:          45,
		Fiber:        25,
		Calcium:      700,
		Iron:         9,
		VitaminC:     50,
		VitaminD:     5,
		Sugar:        35,
		Sodium:       1200,
	}
}

// WithOverrides 以設定覆寫基準值，未知名稱與非正數忽略
func (t IntakeTable) WithOverrides(overrides map[string]float64) IntakeTable {
	out := make(IntakeTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	for name, v := range overrides {
		if k, ok := LookupNutrient(name); ok && v > 0 {
			out[k] = v
		}
	}
	return out
}

// PercentsFromValues 以絕對量推算百分比，基準為 0 的項目回傳 0
func PercentsFromValues(values ValueMap, intake IntakeTable) PercentMap {
	out := newPercentMap()
	for _, k := range allNutrients {
		base := intake[k]
		if base <= 0 {
			continue
		}
		out[k] = roundTenth(values[k] / base * 100)
	}
	return out
}

func roundTenth(v float64) float64 {
	if v < 0 {
		return 0
	}
	return float64(int64(v*10+0.5)) / 10
}
