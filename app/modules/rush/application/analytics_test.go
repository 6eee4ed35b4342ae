package rushservice

import (
	"bytes"
	"context"
	"testing"
	"time"

	rushdb "github.com/Black-And-White-Club/clubhouse/app/modules/rush/infrastructure/repositories"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestThresholdRule_Evaluate(t *testing.T) {
	tests := []struct {
		name          string
		attended      []string
		wantMandatory int
		wantRemaining int
		wantEligible  bool
	}{
		{
			name:          "one mandatory and two remaining",
			attended:      []string{"Info Session 1", "Resume Night", "Social Event"},
			wantMandatory: 1,
			wantRemaining: 2,
			wantEligible:  true,
		},
		{
			name:          "no mandatory event",
			attended:      []string{"Resume Night", "Social Event"},
			wantRemaining: 2,
		},
		{
			name:          "only one remaining event",
			attended:      []string{"Info Session 1", "Resume Night"},
			wantMandatory: 1,
			wantRemaining: 1,
		},
		{
			name:          "same name counted per event",
			attended:      []string{"Info Session 2", "Resume Night", "Resume Night"},
			wantMandatory: 1,
			wantRemaining: 2,
			wantEligible:  true,
		},
		{
			name:          "names match ignoring case and spacing",
			attended:      []string{" info session 1", "SOCIAL EVENT", "professional panel "},
			wantMandatory: 1,
			wantRemaining: 2,
			wantEligible:  true,
		},
		{
			name:     "unlisted events do not count",
			attended: []string{"Coffee Chat", "Info Night"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mandatory, remaining, eligible := testRule.Evaluate(tt.attended)
			assert.Equal(t, tt.wantMandatory, mandatory)
			assert.Equal(t, tt.wantRemaining, remaining)
			assert.Equal(t, tt.wantEligible, eligible)
		})
	}
}

type analyticsFixture struct {
	tf        *rushdb.Timeframe
	events    []rushdb.Event
	attendees []rushdb.EventAttendee
}

func newAnalyticsFixture() analyticsFixture {
	tf := &rushdb.Timeframe{ID: uuid.New(), Name: "Spring 2026", DateCreated: testNow}
	names := []string{"Info Session 1", "Resume Night", "Social Event", "Resume Night"}
	events := make([]rushdb.Event, len(names))
	for i, n := range names {
		events[i] = rushdb.Event{
			ID:          uuid.New(),
			TimeframeID: tf.ID,
			Name:        n,
			DateCreated: testNow.Add(time.Duration(i) * time.Hour),
			Code:        "secret",
		}
	}
	ada := &rushdb.Rushee{ID: "r-1", Name: "Ada", Email: "ada@example.com", Major: "Math"}
	bob := &rushdb.Rushee{ID: "r-2", Name: "Bob", Email: "bob@example.com"}
	attend := func(r *rushdb.Rushee, e rushdb.Event) rushdb.EventAttendee {
		return rushdb.EventAttendee{EventID: e.ID, RusheeID: r.ID, CheckinTime: e.DateCreated, Rushee: r}
	}
	return analyticsFixture{
		tf:     tf,
		events: events,
		attendees: []rushdb.EventAttendee{
			attend(ada, events[0]),
			attend(ada, events[1]),
			attend(ada, events[2]),
			attend(bob, events[1]),
			attend(bob, events[3]),
		},
	}
}

func TestBuildAnalytics(t *testing.T) {
	fx := newAnalyticsFixture()

	got := BuildAnalytics(fx.tf, fx.events, fx.attendees, testRule)

	ids := make([]string, len(fx.events))
	for i, e := range fx.events {
		ids[i] = e.ID.String()
	}
	assert.Equal(t, ids, got.EventOrder)
	assert.Equal(t, "Spring 2026", got.Timeframe.Name)

	wantRushees := map[string]RusheeAnalytics{
		"r-1": {
			RusheeProfile: RusheeProfile{ID: "r-1", Name: "Ada", Email: "ada@example.com", Major: "Math"},
			EventsAttended: []EventAttendance{
				{EventID: ids[0], Attended: true},
				{EventID: ids[1], Attended: true},
				{EventID: ids[2], Attended: true},
				{EventID: ids[3], Attended: false},
			},
			AttendedCount:     3,
			MandatoryAttended: 1,
			RemainingAttended: 2,
			Eligible:          true,
		},
		"r-2": {
			RusheeProfile: RusheeProfile{ID: "r-2", Name: "Bob", Email: "bob@example.com"},
			EventsAttended: []EventAttendance{
				{EventID: ids[0], Attended: false},
				{EventID: ids[1], Attended: true},
				{EventID: ids[2], Attended: false},
				{EventID: ids[3], Attended: true},
			},
			AttendedCount:     2,
			RemainingAttended: 2,
		},
	}
	if diff := cmp.Diff(wantRushees, got.Rushees); diff != "" {
		t.Errorf("rushees mismatch (-want +got):\n%s", diff)
	}

	wantCounts := []int{1, 2, 1, 1}
	for i, id := range ids {
		assert.Equal(t, wantCounts[i], got.Events[id].NumAttendees, "event %d", i)
	}
}

func TestBuildAnalyticsEmptyTimeframe(t *testing.T) {
	tf := &rushdb.Timeframe{ID: uuid.New(), Name: "Empty"}
	got := BuildAnalytics(tf, nil, nil, testRule)
	assert.Empty(t, got.Rushees)
	assert.Empty(t, got.Events)
	assert.Empty(t, got.EventOrder)
}

func TestRushService_GetTimeframeAnalytics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CheckIn(ctx, CheckInRequest{EventID: f.event.ID.String(), RusheeID: "r-1", Code: "abc"})
	require.NoError(t, err)

	report, err := f.svc.GetTimeframeAnalytics(ctx, f.timeframe.ID.String())
	require.NoError(t, err)
	require.Contains(t, report.Rushees, "r-1")
	assert.Equal(t, 1, report.Rushees["r-1"].MandatoryAttended)
	assert.False(t, report.Rushees["r-1"].Eligible)
	assert.Equal(t, 1, report.Events[f.event.ID.String()].NumAttendees)

	_, err = f.svc.GetTimeframeAnalytics(ctx, uuid.NewString())
	assertKind(t, err, "not_found", "timeframe not found")
}

func TestWriteAnalyticsWorkbook(t *testing.T) {
	fx := newAnalyticsFixture()
	report := BuildAnalytics(fx.tf, fx.events, fx.attendees, testRule)

	data, err := WriteAnalyticsWorkbook(report)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(analyticsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"Name", "Email", "Info Session 1", "Resume Night", "Social Event", "Resume Night",
		"Attended", "Mandatory", "Remaining", "Eligible",
	}, rows[0])
	assert.Equal(t, []string{"Ada", "ada@example.com", "x", "x", "x", "", "3", "1", "2", "yes"}, rows[1])
	assert.Equal(t, []string{"Bob", "bob@example.com", "", "x", "", "x", "2", "0", "2", "no"}, rows[2])
}

func TestRushService_ExportAndChart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	chartPNG, err := f.svc.RenderAttendanceChart(ctx, f.timeframe.ID.String())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(chartPNG, []byte("\x89PNG")), "placeholder should be a PNG")

	_, err = f.svc.CheckIn(ctx, CheckInRequest{EventID: f.event.ID.String(), RusheeID: "r-1", Code: "abc"})
	require.NoError(t, err)

	chartPNG, err = f.svc.RenderAttendanceChart(ctx, f.timeframe.ID.String())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(chartPNG, []byte("\x89PNG")))

	xlsx, err := f.svc.ExportTimeframeAnalytics(ctx, f.timeframe.ID.String())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(xlsx, []byte("PK")), "xlsx is a zip archive")

	_, err = f.svc.ExportTimeframeAnalytics(ctx, "missing")
	assertKind(t, err, "not_found", "")
}
