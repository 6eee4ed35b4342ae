package memberhandlers

import (
	"github.com/Black-And-White-Club/clubhouse/app/shared/httpx"
	"github.com/go-chi/chi/v5"
)

// Mount registers the member routes on r. Check-in is limited per client IP.
func (h *MemberHandlers) Mount(r chi.Router, checkinLimiter *httpx.IPRateLimiter) {
	r.Route("/timeframes", func(r chi.Router) {
		r.Post("/", h.HandleCreateTimeframe)
		r.Get("/", h.HandleListTimeframes)
		r.Route("/{timeframeID}", func(r chi.Router) {
			r.Get("/", h.HandleGetTimeframe)
			r.Delete("/", h.HandleDeleteTimeframe)
			r.Get("/sheets", h.HandleListSheetTabs)
			r.Post("/events", h.HandleCreateEvent)
		})
	})

	r.Get("/tags", h.HandleListTags)

	r.Route("/events/{eventID}", func(r chi.Router) {
		r.Get("/", h.HandleGetEvent)
		r.Patch("/", h.HandleUpdateEvent)
		r.Delete("/", h.HandleDeleteEvent)
		r.Get("/attendees", h.HandleListAttendees)
		r.With(httpx.RateLimitMiddleware(checkinLimiter)).Post("/checkin", h.HandleCheckIn)
	})
}
