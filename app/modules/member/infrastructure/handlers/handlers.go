package memberhandlers

import (
	"log/slog"
	"net/http"

	memberservice "github.com/Black-And-White-Club/clubhouse/app/modules/member/application"
	"github.com/Black-And-White-Club/clubhouse/app/shared/httpx"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// MemberHandlers serves the member HTTP API.
type MemberHandlers struct {
	service memberservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewMemberHandlers creates a new MemberHandlers instance.
func NewMemberHandlers(service memberservice.Service, logger *slog.Logger, tracer trace.Tracer) *MemberHandlers {
	return &MemberHandlers{service: service, logger: logger, tracer: tracer}
}

func (h *MemberHandlers) HandleCreateTimeframe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MemberHandlers.HandleCreateTimeframe")
	defer span.End()

	var req memberservice.CreateTimeframeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	tf, err := h.service.CreateTimeframe(ctx, req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, tf)
}

func (h *MemberHandlers) HandleListTimeframes(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MemberHandlers.HandleListTimeframes")
	defer span.End()

	tfs, err := h.service.ListTimeframes(ctx)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tfs)
}

func (h *MemberHandlers) HandleGetTimeframe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MemberHandlers.HandleGetTimeframe")
	defer span.End()

	tf, err := h.service.GetTimeframe(ctx, chi.URLParam(r, "timeframeID"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tf)
}

func (h *MemberHandlers) HandleDeleteTimeframe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MemberHandlers.HandleDeleteTimeframe")
	defer span.End()

	if err := h.service.DeleteTimeframe(ctx, chi.URLParam(r, "timeframeID")); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MemberHandlers) HandleListSheetTabs(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MemberHandlers.HandleListSheetTabs")
	defer span.End()

	tabs, err := h.service.ListSheetTabs(ctx, chi.URLParam(r, "timeframeID"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]string{"tabs": tabs})
}

func (h *MemberHandlers) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MemberHandlers.HandleCreateEvent")
	defer span.End()

	var req memberservice.CreateEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	event, err := h.service.CreateEvent(ctx, chi.URLParam(r, "timeframeID"), req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, event)
}

func (h *MemberHandlers) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MemberHandlers.HandleGetEvent")
	defer span.End()

	event, err := h.service.GetEvent(ctx, chi.URLParam(r, "eventID"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, event)
}

func (h *MemberHandlers) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MemberHandlers.HandleUpdateEvent")
	defer span.End()

	var req memberservice.UpdateEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	event, err := h.service.UpdateEvent(ctx, chi.URLParam(r, "eventID"), req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, event)
}

func (h *MemberHandlers) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MemberHandlers.HandleDeleteEvent")
	defer span.End()

	if err := h.service.DeleteEvent(ctx, chi.URLParam(r, "eventID")); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MemberHandlers) HandleListAttendees(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MemberHandlers.HandleListAttendees")
	defer span.End()

	attendees, err := h.service.ListEventAttendees(ctx, chi.URLParam(r, "eventID"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, attendees)
}

func (h *MemberHandlers) HandleListTags(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MemberHandlers.HandleListTags")
	defer span.End()

	tags, err := h.service.ListTags(ctx)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tags)
}

func (h *MemberHandlers) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MemberHandlers.HandleCheckIn")
	defer span.End()

	var req memberservice.CheckInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	req.EventID = chi.URLParam(r, "eventID")

	res, err := h.service.CheckIn(ctx, req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}
