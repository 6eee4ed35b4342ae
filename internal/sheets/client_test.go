package sheets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// fakeSheetsAPI serves the handful of Sheets v4 endpoints the client calls.
type fakeSheetsAPI struct {
	mu      sync.Mutex
	values  map[string][][]interface{} // keyed by A1 range as sent by the client
	tabs    []string
	updates []string
	fail    bool
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		http.Error(w, `{"error":{"code":400,"message":"bad range"}}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/")
	id, rest, _ := strings.Cut(path, "/")

	switch {
	case r.Method == http.MethodGet && rest == "":
		sheets := make([]map[string]any, 0, len(f.tabs))
		for _, t := range f.tabs {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": id, "sheets": sheets})
	case r.Method == http.MethodGet && strings.HasPrefix(rest, "values/"):
		rng := strings.TrimPrefix(rest, "values/")
		_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "majorDimension": "ROWS", "values": f.values[rng]})
	case r.Method == http.MethodPut && strings.HasPrefix(rest, "values/"):
		rng := strings.TrimPrefix(rest, "values/")
		body, _ := io.ReadAll(r.Body)
		f.updates = append(f.updates, rng+"="+string(body)+"?"+r.URL.Query().Get("valueInputOption"))
		_ = json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": id, "updatedRange": rng, "updatedCells": 1})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, api *fakeSheetsAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := NewClientWithOptions(context.Background(), slog.New(slog.DiscardHandler),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestClient_FindNextAvailableColumn(t *testing.T) {
	tests := []struct {
		name   string
		header []interface{}
		want   string
	}{
		{name: "empty header row", header: nil, want: "A"},
		{name: "one event", header: []interface{}{"Event A"}, want: "B"},
		{name: "interior blank still counts", header: []interface{}{"Email", "", "Event B"}, want: "D"},
		{name: "twenty six entries", header: make([]interface{}, 26), want: "AA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeSheetsAPI{values: map[string][][]interface{}{}}
			if tt.header != nil {
				api.values["'Fall'!1:1"] = [][]interface{}{tt.header}
			}
			c := newTestClient(t, api)

			got, err := c.FindNextAvailableColumn(context.Background(), "sheet-1", "Fall")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_FindRowByMatchingValue(t *testing.T) {
	api := &fakeSheetsAPI{values: map[string][][]interface{}{
		"'Fall'!A:A": {
			{"Email"},
			{},
			{"alice@example.com"},
			{" Bob@Example.com "},
			{"bob@example.com"},
		},
	}}
	c := newTestClient(t, api)
	ctx := context.Background()

	row, found, err := c.FindRowByMatchingValue(ctx, "sheet-1", "Fall", "A", "bob@example.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 4, row, "first match wins and rows are 1-based")

	row, found, err = c.FindRowByMatchingValue(ctx, "sheet-1", "Fall", "A", "carol@example.com")
	require.NoError(t, err, "a miss is not an error")
	assert.False(t, found)
	assert.Zero(t, row)
}

func TestClient_WriteCell(t *testing.T) {
	api := &fakeSheetsAPI{values: map[string][][]interface{}{}}
	c := newTestClient(t, api)

	require.NoError(t, c.WriteCell(context.Background(), "sheet-1", "Fall", "C", 7, "x"))
	require.NoError(t, c.WriteHeaderCell(context.Background(), "sheet-1", "Fall", "C", "Resume Night"))

	require.Len(t, api.updates, 2)
	assert.True(t, strings.HasPrefix(api.updates[0], "'Fall'!C7="))
	assert.Contains(t, api.updates[0], `"x"`)
	assert.True(t, strings.HasSuffix(api.updates[0], "?RAW"))
	assert.True(t, strings.HasPrefix(api.updates[1], "'Fall'!C1="))
	assert.Contains(t, api.updates[1], "Resume Night")
}

func TestClient_ListTabNames(t *testing.T) {
	api := &fakeSheetsAPI{tabs: []string{"Fall", "Spring"}}
	c := newTestClient(t, api)

	got, err := c.ListTabNames(context.Background(), "sheet-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fall", "Spring"}, got)
}

func TestClient_TransportFailure(t *testing.T) {
	api := &fakeSheetsAPI{fail: true}
	c := newTestClient(t, api)

	_, err := c.FindNextAvailableColumn(context.Background(), "sheet-1", "Fall")
	assert.Error(t, err)
	_, _, err = c.FindRowByMatchingValue(context.Background(), "sheet-1", "Fall", "A", "a@b.c")
	assert.Error(t, err)
}
