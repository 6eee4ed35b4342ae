package sheets

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type cell struct {
	col int
	row int
}

// MemorySpreadsheet is an in-process Spreadsheet for development and tests.
type MemorySpreadsheet struct {
	mu     sync.RWMutex
	sheets map[string]map[string]map[cell]string
}

// NewMemorySpreadsheet creates an empty MemorySpreadsheet.
func NewMemorySpreadsheet() *MemorySpreadsheet {
	return &MemorySpreadsheet{sheets: make(map[string]map[string]map[cell]string)}
}

// AddTab creates an empty tab.
func (m *MemorySpreadsheet) AddTab(spreadsheetID, tab string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tab(spreadsheetID, tab)
}

func (m *MemorySpreadsheet) tab(spreadsheetID, tab string) map[cell]string {
	tabs, ok := m.sheets[spreadsheetID]
	if !ok {
		tabs = make(map[string]map[cell]string)
		m.sheets[spreadsheetID] = tabs
	}
	cells, ok := tabs[tab]
	if !ok {
		cells = make(map[cell]string)
		tabs[tab] = cells
	}
	return cells
}

func (m *MemorySpreadsheet) FindNextAvailableColumn(_ context.Context, spreadsheetID, tab string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	width := 0
	for c, v := range m.tab(spreadsheetID, tab) {
		if c.row == 1 && v != "" && c.col+1 > width {
			width = c.col + 1
		}
	}
	return ColumnName(width), nil
}

func (m *MemorySpreadsheet) WriteHeaderCell(ctx context.Context, spreadsheetID, tab, column, value string) error {
	return m.WriteCell(ctx, spreadsheetID, tab, column, 1, value)
}

func (m *MemorySpreadsheet) FindRowByMatchingValue(_ context.Context, spreadsheetID, tab, column, value string) (int, bool, error) {
	col := ColumnIndex(column)
	if col < 0 {
		return 0, false, fmt.Errorf("invalid column %q", column)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	best := 0
	want := strings.TrimSpace(value)
	for c, v := range m.tab(spreadsheetID, tab) {
		if c.col != col || !strings.EqualFold(strings.TrimSpace(v), want) {
			continue
		}
		if best == 0 || c.row < best {
			best = c.row
		}
	}
	return best, best > 0, nil
}

func (m *MemorySpreadsheet) WriteCell(_ context.Context, spreadsheetID, tab, column string, row int, value string) error {
	col := ColumnIndex(column)
	if col < 0 || row < 1 {
		return fmt.Errorf("invalid cell %s%d", column, row)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tab(spreadsheetID, tab)[cell{col: col, row: row}] = value
	return nil
}

func (m *MemorySpreadsheet) ListTabNames(_ context.Context, spreadsheetID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sheets[spreadsheetID]))
	for name := range m.sheets[spreadsheetID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Cell returns the value at column/row, or "" when empty.
func (m *MemorySpreadsheet) Cell(spreadsheetID, tab, column string, row int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tabs := m.sheets[spreadsheetID]
	if tabs == nil {
		return ""
	}
	return tabs[tab][cell{col: ColumnIndex(column), row: row}]
}
