package rushhandlers

import (
	"fmt"
	"log/slog"
	"net/http"

	rushservice "github.com/Black-And-White-Club/clubhouse/app/modules/rush/application"
	"github.com/Black-And-White-Club/clubhouse/app/shared/httpx"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RushHandlers serves the rush HTTP API.
type RushHandlers struct {
	service rushservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewRushHandlers creates a new RushHandlers instance.
func NewRushHandlers(service rushservice.Service, logger *slog.Logger, tracer trace.Tracer) *RushHandlers {
	return &RushHandlers{service: service, logger: logger, tracer: tracer}
}

func (h *RushHandlers) HandleCreateTimeframe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleCreateTimeframe")
	defer span.End()

	var req rushservice.CreateTimeframeRequest
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

func (h *RushHandlers) HandleListTimeframes(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleListTimeframes")
	defer span.End()

	tfs, err := h.service.ListTimeframes(ctx)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tfs)
}

func (h *RushHandlers) HandleGetTimeframe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleGetTimeframe")
	defer span.End()

	tf, err := h.service.GetTimeframe(ctx, chi.URLParam(r, "timeframeID"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tf)
}

func (h *RushHandlers) HandleDeleteTimeframe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleDeleteTimeframe")
	defer span.End()

	if err := h.service.DeleteTimeframe(ctx, chi.URLParam(r, "timeframeID")); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RushHandlers) HandleListSheetTabs(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleListSheetTabs")
	defer span.End()

	tabs, err := h.service.ListSheetTabs(ctx, chi.URLParam(r, "timeframeID"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]string{"tabs": tabs})
}

func (h *RushHandlers) HandleGetDefaultTimeframe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleGetDefaultTimeframe")
	defer span.End()

	tf, err := h.service.GetDefaultTimeframe(ctx)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tf)
}

func (h *RushHandlers) HandleSetDefaultTimeframe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleSetDefaultTimeframe")
	defer span.End()

	var req rushservice.SetDefaultTimeframeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	tf, err := h.service.SetDefaultTimeframe(ctx, req.TimeframeID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	if tf == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tf)
}

func (h *RushHandlers) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleCreateEvent")
	defer span.End()

	var req rushservice.CreateEventRequest
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

func (h *RushHandlers) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleGetEvent")
	defer span.End()

	event, err := h.service.GetEvent(ctx, chi.URLParam(r, "eventID"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, event)
}

func (h *RushHandlers) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleUpdateEvent")
	defer span.End()

	var req rushservice.UpdateEventRequest
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

func (h *RushHandlers) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleDeleteEvent")
	defer span.End()

	if err := h.service.DeleteEvent(ctx, chi.URLParam(r, "eventID")); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RushHandlers) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleCheckIn")
	defer span.End()

	var req rushservice.CheckInRequest
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

func (h *RushHandlers) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleGetAnalytics")
	defer span.End()

	report, err := h.service.GetTimeframeAnalytics(ctx, chi.URLParam(r, "timeframeID"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, report)
}

func (h *RushHandlers) HandleExportAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleExportAnalytics")
	defer span.End()

	timeframeID := chi.URLParam(r, "timeframeID")
	data, err := h.service.ExportTimeframeAnalytics(ctx, timeframeID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rush-analytics-%s.xlsx"`, timeframeID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *RushHandlers) HandleAttendanceChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RushHandlers.HandleAttendanceChart")
	defer span.End()

	data, err := h.service.RenderAttendanceChart(ctx, chi.URLParam(r, "timeframeID"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
