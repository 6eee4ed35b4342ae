package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/clubhouse/internal/observability/attr"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// Client implements Spreadsheet on the Sheets v4 API.
type Client struct {
	srv    *sheetsv4.Service
	logger *slog.Logger
}

// NewClient authenticates with credentialsFile, or application default
// credentials when it is empty.
func NewClient(ctx context.Context, credentialsFile string, logger *slog.Logger) (*Client, error) {
	var auth option.ClientOption
	if credentialsFile != "" {
		auth = option.WithCredentialsFile(credentialsFile)
	} else {
		creds, err := google.FindDefaultCredentials(ctx, sheetsv4.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default google credentials: %w", err)
		}
		auth = option.WithCredentials(creds)
	}
	return NewClientWithOptions(ctx, logger, option.WithScopes(sheetsv4.SpreadsheetsScope), auth)
}

// NewClientWithOptions builds a Client from raw client options.
func NewClientWithOptions(ctx context.Context, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	srv, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{srv: srv, logger: logger}, nil
}

func (c *Client) FindNextAvailableColumn(ctx context.Context, spreadsheetID, tab string) (string, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(spreadsheetID, quoteTab(tab)+"!1:1").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to read header row of %q: %w", tab, err)
	}
	if len(resp.Values) == 0 {
		return ColumnName(0), nil
	}
	return ColumnName(len(resp.Values[0])), nil
}

func (c *Client) WriteHeaderCell(ctx context.Context, spreadsheetID, tab, column, value string) error {
	return c.WriteCell(ctx, spreadsheetID, tab, column, 1, value)
}

func (c *Client) FindRowByMatchingValue(ctx context.Context, spreadsheetID, tab, column, value string) (int, bool, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(spreadsheetID, columnRange(tab, column)).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read column %s of %q: %w", column, tab, err)
	}

	want := strings.TrimSpace(value)
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(fmt.Sprint(row[0])), want) {
			return i + 1, true, nil
		}
	}

	c.logger.DebugContext(ctx, "No matching row in sheet",
		attr.String("tab", tab),
		attr.String("column", column),
	)
	return 0, false, nil
}

func (c *Client) WriteCell(ctx context.Context, spreadsheetID, tab, column string, row int, value string) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{{value}}}
	_, err := c.srv.Spreadsheets.Values.Update(spreadsheetID, cellRange(tab, column, row), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write %s%d of %q: %w", column, row, tab, err)
	}
	return nil
}

func (c *Client) ListTabNames(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := c.srv.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	names := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			names = append(names, s.Properties.Title)
		}
	}
	return names, nil
}

var _ Spreadsheet = (*Client)(nil)
