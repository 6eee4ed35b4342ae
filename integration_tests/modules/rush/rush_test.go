//go:build integration

package rushintegrationtests

import (
	"context"
	"os"
	"testing"
	"time"

	rushservice "github.com/Black-And-White-Club/clubhouse/app/modules/rush/application"
	rushdb "github.com/Black-And-White-Club/clubhouse/app/modules/rush/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/app/shared/apperrors"
	"github.com/Black-And-White-Club/clubhouse/app/shared/clock"
	"github.com/Black-And-White-Club/clubhouse/integration_tests/testutils"
	"github.com/Black-And-White-Club/clubhouse/internal/coverimage"
	"github.com/Black-And-White-Club/clubhouse/internal/objectstore"
	"github.com/Black-And-White-Club/clubhouse/internal/queue"
	"github.com/Black-And-White-Club/clubhouse/internal/sheets"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spreadsheetID = "rush-sheet"

var now = time.Date(2026, time.March, 2, 18, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	code := m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	testutils.Shutdown(ctx)
	os.Exit(code)
}

type rushEnv struct {
	env     *testutils.TestEnvironment
	repo    rushdb.Repository
	sheet   *sheets.MemorySpreadsheet
	service *rushservice.RushService
	people  []testutils.Person
}

func setup(t *testing.T) *rushEnv {
	t.Helper()
	env := testutils.GetOrCreateTestEnv(t)
	ctx := context.Background()

	gen := testutils.NewTestDataGenerator(42)
	people := gen.GeneratePeople(3)
	for _, p := range people {
		_, err := env.DB.NewInsert().Model(&rushdb.Rushee{
			ID: p.ID, Name: p.Name, Email: p.Email, Major: p.Major, Year: p.Year,
		}).Exec(ctx)
		require.NoError(t, err)
	}

	sheet := sheets.NewMemorySpreadsheet()
	require.NoError(t, sheet.WriteCell(ctx, spreadsheetID, "Spring", "A", 1, "Email"))
	for i, p := range people {
		require.NoError(t, sheet.WriteCell(ctx, spreadsheetID, "Spring", "A", i+2, p.Email))
	}

	logger := env.Observability.Provider.Logger
	retries := queue.NoopEnqueuer{Logger: logger}
	repo := rushdb.NewRepository(env.DB)
	service := rushservice.NewRushService(
		repo,
		rushservice.Collaborators{
			Sheets:  sheet,
			Covers:  coverimage.NewManager(objectstore.NewMemoryStore(""), "test", retries, logger),
			Retries: retries,
		},
		rushservice.Options{
			IdentityColumn: "A",
			CheckinMarker:  "x",
			Threshold: rushservice.ThresholdRule{
				Mandatory:    []string{"Info Session 1"},
				Remaining:    []string{"Social"},
				RemainingMin: 1,
			},
			Clock: clock.NewAnchorClock(now),
		},
		logger,
		env.Observability.Registry.Metrics,
		env.Observability.Registry.Tracer,
		env.DB,
	)
	return &rushEnv{env: env, repo: repo, sheet: sheet, service: service, people: people}
}

func (e *rushEnv) createTimeframe(t *testing.T) *rushservice.Timeframe {
	t.Helper()
	tf, err := e.service.CreateTimeframe(context.Background(), rushservice.CreateTimeframeRequest{
		Name:          "Spring Rush",
		SpreadsheetID: spreadsheetID,
	})
	require.NoError(t, err)
	return tf
}

func (e *rushEnv) createEvent(t *testing.T, timeframeID, name, code string) *rushservice.Event {
	t.Helper()
	ev, err := e.service.CreateEvent(context.Background(), timeframeID, rushservice.CreateEventRequest{
		Name:     name,
		SheetTab: "Spring",
		Code:     code,
		Deadline: now.Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	return ev
}

func TestRushCheckInPersistsAndMirrors(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	tf := e.createTimeframe(t)

	ev := e.createEvent(t, tf.ID, "Info Session 1", "alpha")
	assert.Equal(t, "B", ev.SpreadsheetCol)
	assert.Equal(t, "Info Session 1", e.sheet.Cell(spreadsheetID, "Spring", "B", 1))

	res, err := e.service.CheckIn(ctx, rushservice.CheckInRequest{
		EventID:  ev.ID,
		RusheeID: e.people[1].ID,
		Code:     " ALPHA ",
	})
	require.NoError(t, err)
	assert.True(t, res.SheetMatched)
	assert.Equal(t, 3, res.SheetRow)
	assert.Equal(t, "x", e.sheet.Cell(spreadsheetID, "Spring", "B", 3))

	stored, err := e.service.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.NumAttendees)

	_, err = e.service.CheckIn(ctx, rushservice.CheckInRequest{
		EventID:  ev.ID,
		RusheeID: e.people[1].ID,
		Code:     "alpha",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	stored, err = e.service.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.NumAttendees, "a rejected duplicate must not bump the counter")
}

func TestRushRepository_DuplicateAttendee(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	tf := e.createTimeframe(t)
	ev := e.createEvent(t, tf.ID, "Social", "s")

	id := uuid.MustParse(ev.ID)
	a := &rushdb.EventAttendee{EventID: id, RusheeID: e.people[0].ID, CheckinTime: now}
	require.NoError(t, e.repo.InsertAttendee(ctx, nil, a))
	err := e.repo.InsertAttendee(ctx, nil, &rushdb.EventAttendee{EventID: id, RusheeID: e.people[0].ID, CheckinTime: now.Add(time.Minute)})
	assert.ErrorIs(t, err, rushdb.ErrDuplicate)

	attendees, err := e.repo.ListAttendees(ctx, nil, uuid.MustParse(tf.ID))
	require.NoError(t, err)
	require.Len(t, attendees, 1)
	require.NotNil(t, attendees[0].Rushee)
	assert.Equal(t, e.people[0].Email, attendees[0].Rushee.Email)
}

func TestRushRepository_ColumnClaimedOnce(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	tf := e.createTimeframe(t)
	ev := e.createEvent(t, tf.ID, "Social", "s")

	dup := &rushdb.Event{
		TimeframeID:    uuid.MustParse(tf.ID),
		Name:           "Racing",
		SheetTab:       ev.SheetTab,
		SpreadsheetCol: ev.SpreadsheetCol,
		Code:           "r",
		Deadline:       now.Add(time.Hour),
	}
	assert.ErrorIs(t, e.repo.CreateEvent(ctx, nil, dup), rushdb.ErrColumnTaken)

	first := uuid.MustParse(tf.ID)
	require.NoError(t, e.repo.MarkDefaultTimeframe(ctx, nil, first))
	other := e.createTimeframe(t)
	err := e.repo.MarkDefaultTimeframe(ctx, nil, uuid.MustParse(other.ID))
	assert.ErrorIs(t, err, rushdb.ErrDefaultTaken)
}

func TestRushDefaultTimeframeIsExclusive(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	first := e.createTimeframe(t)
	second := e.createTimeframe(t)

	_, err := e.service.SetDefaultTimeframe(ctx, first.ID)
	require.NoError(t, err)
	_, err = e.service.SetDefaultTimeframe(ctx, second.ID)
	require.NoError(t, err)

	def, err := e.service.GetDefaultTimeframe(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	n, err := e.env.DB.NewSelect().Model((*rushdb.Timeframe)(nil)).Where("is_default").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = e.service.SetDefaultTimeframe(ctx, "")
	require.NoError(t, err)
	_, err = e.service.GetDefaultTimeframe(ctx)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestRushAnalyticsAndDelete(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	tf := e.createTimeframe(t)
	info := e.createEvent(t, tf.ID, "Info Session 1", "i")
	social := e.createEvent(t, tf.ID, "Social", "s")

	for _, p := range e.people[:2] {
		_, err := e.service.CheckIn(ctx, rushservice.CheckInRequest{EventID: info.ID, RusheeID: p.ID, Code: "i"})
		require.NoError(t, err)
	}
	_, err := e.service.CheckIn(ctx, rushservice.CheckInRequest{EventID: social.ID, RusheeID: e.people[0].ID, Code: "s"})
	require.NoError(t, err)

	report, err := e.service.GetTimeframeAnalytics(ctx, tf.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{info.ID, social.ID}, report.EventOrder)
	require.Contains(t, report.Rushees, e.people[0].ID)
	assert.True(t, report.Rushees[e.people[0].ID].Eligible)
	assert.False(t, report.Rushees[e.people[1].ID].Eligible)
	assert.NotContains(t, report.Rushees, e.people[2].ID)

	xlsx, err := e.service.ExportTimeframeAnalytics(ctx, tf.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, xlsx)

	require.NoError(t, e.service.DeleteTimeframe(ctx, tf.ID))
	for _, table := range []string{"rush_timeframes", "rush_events", "rush_event_attendees"} {
		n, err := testutils.CountRows(ctx, e.env.DB, table)
		require.NoError(t, err)
		assert.Zero(t, n, table)
	}
	n, err := testutils.CountRows(ctx, e.env.DB, "rushees")
	require.NoError(t, err)
	assert.Equal(t, len(e.people), n, "rushees outlive their timeframes")
}
