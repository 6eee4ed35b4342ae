// Package sheets mirrors event rosters and check-in marks into Google Sheets.
//
// Every call is a best-effort network round trip. A value that is not present in
// the sheet is reported as found=false, never as an error.
package sheets

import "context"

// Spreadsheet is the subset of spreadsheet operations the event tracks consume.
type Spreadsheet interface {
	// FindNextAvailableColumn returns the column letter after the last filled
	// header cell in row 1 of tab.
	FindNextAvailableColumn(ctx context.Context, spreadsheetID, tab string) (string, error)
	// WriteHeaderCell writes value into row 1 of column.
	WriteHeaderCell(ctx context.Context, spreadsheetID, tab, column, value string) error
	// FindRowByMatchingValue returns the 1-based row of the first cell in column
	// equal to value, ignoring case and surrounding whitespace.
	FindRowByMatchingValue(ctx context.Context, spreadsheetID, tab, column, value string) (row int, found bool, err error)
	// WriteCell writes value at column/row.
	WriteCell(ctx context.Context, spreadsheetID, tab, column string, row int, value string) error
	// ListTabNames returns the titles of every tab in the spreadsheet.
	ListTabNames(ctx context.Context, spreadsheetID string) ([]string, error)
}
