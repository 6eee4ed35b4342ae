package rushservice

import (
	"context"
	"sort"
	"strings"

	rushdb "github.com/Black-And-White-Club/clubhouse/app/modules/rush/infrastructure/repositories"
	"github.com/Black-And-White-Club/clubhouse/app/shared/operation"
	"github.com/Black-And-White-Club/clubhouse/app/shared/results"
)

// ThresholdRule decides eligibility from the names of attended events.
type ThresholdRule struct {
	Mandatory    []string
	Remaining    []string
	RemainingMin int
}

// Evaluate counts attended events whose name is in each set. Two events with
// the same name count twice. Eligible means at least one mandatory event and
// RemainingMin remaining events.
func (r ThresholdRule) Evaluate(attendedNames []string) (mandatory, remaining int, eligible bool) {
	for _, name := range attendedNames {
		if containsName(r.Mandatory, name) {
			mandatory++
		}
		if containsName(r.Remaining, name) {
			remaining++
		}
	}
	return mandatory, remaining, mandatory >= 1 && remaining >= r.RemainingMin
}

func containsName(set []string, name string) bool {
	name = strings.TrimSpace(name)
	for _, candidate := range set {
		if strings.EqualFold(strings.TrimSpace(candidate), name) {
			return true
		}
	}
	return false
}

// RusheeProfile is the identity of a rushee in analytics output.
type RusheeProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Major string `json:"major,omitempty"`
	Year  string `json:"year,omitempty"`
}

// EventAttendance says whether a rushee attended one event.
type EventAttendance struct {
	EventID  string `json:"event_id"`
	Attended bool   `json:"attended"`
}

// RusheeAnalytics is a rushee's attendance across every event of a timeframe.
type RusheeAnalytics struct {
	RusheeProfile
	EventsAttended    []EventAttendance `json:"events_attended"`
	AttendedCount     int               `json:"attended_count"`
	MandatoryAttended int               `json:"mandatory_attended"`
	RemainingAttended int               `json:"remaining_attended"`
	Eligible          bool              `json:"eligible"`
}

// TimeframeAnalytics is the attendance report of a timeframe. Events carry an
// attendee count instead of attendee lists.
type TimeframeAnalytics struct {
	Timeframe Timeframe                  `json:"timeframe"`
	Rushees   map[string]RusheeAnalytics `json:"rushees"`
	Events    map[string]Event           `json:"events"`
	// EventOrder lists event ids by creation time.
	EventOrder []string `json:"event_order"`
}

// GetTimeframeAnalytics builds the attendance report of a timeframe.
func (s *RushService) GetTimeframeAnalytics(ctx context.Context, timeframeID string) (*TimeframeAnalytics, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "GetTimeframeAnalytics", timeframeID, func(ctx context.Context) (results.OperationResult[*TimeframeAnalytics, error], error) {
		return s.analyticsLogic(ctx, "GetTimeframeAnalytics", timeframeID)
	})
	return operation.Unwrap(result, err)
}

func (s *RushService) analyticsLogic(ctx context.Context, op, timeframeID string) (results.OperationResult[*TimeframeAnalytics, error], error) {
	tf, err := s.loadTimeframe(ctx, nil, op, timeframeID)
	if err != nil {
		return split[*TimeframeAnalytics](err)
	}
	events, err := s.repo.ListEvents(ctx, nil, tf.ID)
	if err != nil {
		return infraError[*TimeframeAnalytics](err)
	}
	attendees, err := s.repo.ListAttendees(ctx, nil, tf.ID)
	if err != nil {
		return infraError[*TimeframeAnalytics](err)
	}
	return success(BuildAnalytics(tf, events, attendees, s.threshold))
}

// BuildAnalytics derives per-rushee attendance and eligibility. events must be
// ordered by creation time.
func BuildAnalytics(tf *rushdb.Timeframe, events []rushdb.Event, attendees []rushdb.EventAttendee, rule ThresholdRule) *TimeframeAnalytics {
	out := &TimeframeAnalytics{
		Timeframe:  toTimeframe(tf),
		Rushees:    make(map[string]RusheeAnalytics),
		Events:     make(map[string]Event, len(events)),
		EventOrder: make([]string, 0, len(events)),
	}

	attended := make(map[string]map[string]bool)
	counts := make(map[string]int, len(events))
	profiles := make(map[string]RusheeProfile)
	for _, a := range attendees {
		eventID := a.EventID.String()
		if attended[a.RusheeID] == nil {
			attended[a.RusheeID] = make(map[string]bool)
		}
		if attended[a.RusheeID][eventID] {
			continue
		}
		attended[a.RusheeID][eventID] = true
		counts[eventID]++
		if _, ok := profiles[a.RusheeID]; !ok {
			profiles[a.RusheeID] = profileOf(a)
		}
	}

	for i := range events {
		summary := toEvent(&events[i])
		summary.NumAttendees = counts[summary.ID]
		out.Events[summary.ID] = summary
		out.EventOrder = append(out.EventOrder, summary.ID)
	}

	for rusheeID, profile := range profiles {
		ra := RusheeAnalytics{
			RusheeProfile:  profile,
			EventsAttended: make([]EventAttendance, 0, len(events)),
		}
		var names []string
		for _, eventID := range out.EventOrder {
			went := attended[rusheeID][eventID]
			ra.EventsAttended = append(ra.EventsAttended, EventAttendance{EventID: eventID, Attended: went})
			if went {
				ra.AttendedCount++
				names = append(names, out.Events[eventID].Name)
			}
		}
		ra.MandatoryAttended, ra.RemainingAttended, ra.Eligible = rule.Evaluate(names)
		out.Rushees[rusheeID] = ra
	}

	return out
}

func profileOf(a rushdb.EventAttendee) RusheeProfile {
	if a.Rushee == nil {
		return RusheeProfile{ID: a.RusheeID}
	}
	return RusheeProfile{
		ID:    a.Rushee.ID,
		Name:  a.Rushee.Name,
		Email: a.Rushee.Email,
		Major: a.Rushee.Major,
		Year:  a.Rushee.Year,
	}
}

// sortedRushees returns the report's rushees ordered by name, then id.
func (a *TimeframeAnalytics) sortedRushees() []RusheeAnalytics {
	out := make([]RusheeAnalytics, 0, len(a.Rushees))
	for _, r := range a.Rushees {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
