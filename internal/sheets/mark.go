package sheets

import (
	"context"
	"errors"
	"fmt"
)

// Mark locates a person's row by identity and writes a marker in an event column.
type Mark struct {
	SpreadsheetID  string `json:"spreadsheet_id"`
	Tab            string `json:"tab"`
	IdentityColumn string `json:"identity_column"`
	Identity       string `json:"identity"`
	Column         string `json:"column"`
	Marker         string `json:"marker"`
}

func (m Mark) validate() error {
	if m.SpreadsheetID == "" || m.Tab == "" || m.Column == "" {
		return errors.New("mark needs a spreadsheet, tab and column")
	}
	return nil
}

// MarkAttendance writes m.Marker on the row whose identity column equals
// m.Identity. A person missing from the sheet returns found=false and no error.
func MarkAttendance(ctx context.Context, sp Spreadsheet, m Mark) (row int, found bool, err error) {
	if err := m.validate(); err != nil {
		return 0, false, err
	}
	row, found, err = sp.FindRowByMatchingValue(ctx, m.SpreadsheetID, m.Tab, m.IdentityColumn, m.Identity)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, nil
	}
	if err := sp.WriteCell(ctx, m.SpreadsheetID, m.Tab, m.Column, row, m.Marker); err != nil {
		return row, true, fmt.Errorf("failed to write check-in marker: %w", err)
	}
	return row, true, nil
}
