package nutrition

// ExtractValues 從分析文字的第一個 markdown 表格取出營養素絕對量。
// 標題欄位去掉單位後與營養素名稱比對，同一欄位的所有資料列相加。
// 找不到表格時回傳全 0。
func ExtractValues(text string) ValueMap {
	values := newValueMap()

	t, ok := findTable(text, nil)
	if !ok {
		return values
	}

	columns := make(map[NutrientKey]int)
	for i, cell := range t.header {
		name := normalizeName(cell)
		if name == "" {
			continue
		}
		if k, ok := LookupNutrient(name); ok {
			if _, seen := columns[k]; !seen {
				columns[k] = i
			}
		}
	}

	for k, col := range columns {
		var sum float64
		for _, row := range t.rows {
			if col < len(row) {
				sum += parseNumber(row[col])
			}
		}
		values[k] = sum
	}
	return values
}
