package nutrition

import (
	"regexp"
	"strconv"
	"strings"
)

// Section 編號標題與其下方內容
type Section struct {
	Number int
	Title  string
	Body   string
}

// 標題列：可選 markdown 標記、粗體，接著數字與可選的 . 或 )
var (
	headingPattern = regexp.MustCompile(`^[ \t]*(#{1,6}[ \t]*)?(?:\*\*)?[ \t]*(\d{1,2})[ \t]*([.)])?[ \t]*(.*)$`)
	decimalPattern = regexp.MustCompile(`^[ \t]*(?:#{1,6}[ \t]*)?(?:\*\*)?[ \t]*\d{1,2}\.\d`)
)

type headingLine struct {
	number int
	title  string
	marked bool
}

// parseHeading 判斷一行是否為編號標題；純數字開頭（如 "6세"）需有標點或 # 才算
func parseHeading(line string) (headingLine, bool) {
	m := headingPattern.FindStringSubmatch(line)
	if m == nil || (m[1] == "" && m[3] == "") {
		return headingLine{}, false
	}
	// "7.5g" 之類的小數不是標題
	if decimalPattern.MatchString(line) {
		return headingLine{}, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return headingLine{}, false
	}
	title := strings.TrimSpace(strings.ReplaceAll(m[4], "**", ""))
	return headingLine{number: n, title: title, marked: m[1] != ""}, true
}

func isMarkdownHeading(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// FindSection 尋找第 number 節，title 非 nil 時標題需符合。
func FindSection(text string, number int, title *regexp.Regexp) (Section, bool) {
	sections := FindSections(text, number, title)
	if len(sections) == 0 {
		return Section{}, false
	}
	return sections[0], true
}

// FindSections 依出現順序回傳所有第 number 節候選。
// 有 # 標記的同編號標題時只採用 # 標題，內容截至下一個 # 標題或文末；
// 否則才接受 "6." 這類純編號列，內容另外截至下一節（number+1）。
func FindSections(text string, number int, title *regexp.Regexp) []Section {
	lines := splitLines(text)

	type candidate struct {
		line    int
		heading headingLine
	}
	var marked, bare []candidate
	for i, line := range lines {
		h, ok := parseHeading(line)
		if !ok || h.number != number {
			continue
		}
		if h.marked {
			marked = append(marked, candidate{i, h})
		} else {
			bare = append(bare, candidate{i, h})
		}
	}
	candidates := marked
	if len(marked) == 0 {
		candidates = bare
	}

	var out []Section
	for _, c := range candidates {
		if title != nil && !title.MatchString(c.heading.title) {
			continue
		}
		end := len(lines)
		for j := c.line + 1; j < len(lines); j++ {
			if isMarkdownHeading(lines[j]) {
				end = j
				break
			}
			if c.heading.marked {
				continue
			}
			if next, ok := parseHeading(lines[j]); ok && next.number == number+1 {
				end = j
				break
			}
		}
		out = append(out, Section{
			Number: number,
			Title:  c.heading.title,
			Body:   strings.Join(lines[c.line+1:end], "\n"),
		})
	}
	return out
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

var fencedJSONPattern = regexp.MustCompile("(?is)```json[ \\t]*\\n?(.*?)```")

// fencedJSON 取出第一個 ```json 區塊的內容
func fencedJSON(text string) (string, bool) {
	m := fencedJSONPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// table markdown 表格：標題列與資料列
type table struct {
	header []string
	rows   [][]string
}

func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

func tableCells(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// readTable 以 start 為標題列，跳過分隔列，讀取連續的資料列
func readTable(lines []string, start int) table {
	t := table{header: tableCells(lines[start])}
	for i := start + 2; i < len(lines) && isTableLine(lines[i]); i++ {
		t.rows = append(t.rows, tableCells(lines[i]))
	}
	return t
}

// findTable 回傳第一個符合 accept 的表格
func findTable(text string, accept func(header []string) bool) (table, bool) {
	lines := splitLines(text)
	for i, line := range lines {
		if !isTableLine(line) {
			continue
		}
		header := tableCells(line)
		if accept != nil && !accept(header) {
			continue
		}
		return readTable(lines, i), true
	}
	return table{}, false
}

var leadingNumber = regexp.MustCompile(`^[-+]?(?:\d+\.?\d*|\.\d+)`)

// parseNumber 取字串開頭的數值，無法解析回傳 0
func parseNumber(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, "**", ""))
	s = strings.ReplaceAll(s, ",", "")
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
