package sheets

import (
	"strconv"
	"strings"
)

// ColumnName converts a zero-based column index to A1 letters: 0 is A, 25 is Z,
// 26 is AA.
func ColumnName(index int) string {
	if index < 0 {
		return ""
	}
	var b []byte
	for n := index; n >= 0; n = n/26 - 1 {
		b = append([]byte{byte('A' + n%26)}, b...)
	}
	return string(b)
}

// quoteTab wraps a tab title for use in an A1 range.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

func cellRange(tab, column string, row int) string {
	return quoteTab(tab) + "!" + column + strconv.Itoa(row)
}

func columnRange(tab, column string) string {
	return quoteTab(tab) + "!" + column + ":" + column
}

// ColumnIndex converts A1 letters back to a zero-based index. Invalid input
// returns -1.
func ColumnIndex(name string) int {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return -1
	}
	n := 0
	for _, c := range name {
		if c < 'A' || c > 'Z' {
			return -1
		}
		n = n*26 + int(c-'A'+1)
	}
	return n - 1
}
