package analyticshandlers

import (
	"log/slog"
	"net/http"

	analyticsservice "github.com/Black-And-White-Club/truthtable/app/modules/analytics/application"
	analyticsdomain "github.com/Black-And-White-Club/truthtable/app/modules/analytics/domain"
	"github.com/Black-And-White-Club/truthtable/app/shared/httpapi"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalyticsHandlers serves the facilitator dashboards.
type AnalyticsHandlers struct {
	service analyticsservice.Service
	logger  *slog.Logger
}

func NewAnalyticsHandlers(service analyticsservice.Service, logger *slog.Logger) *AnalyticsHandlers {
	return &AnalyticsHandlers{service: service, logger: logger}
}

func (h *AnalyticsHandlers) Mount(r chi.Router) {
	r.Get("/admin/leaderboard", h.GetLeaderboard)
	r.Get("/admin/leaderboard.xlsx", h.ExportLeaderboard)
	r.Get("/admin/summary", h.GetSummary)
	r.Get("/admin/statements/analytics", h.GetStatementAnalytics)
	r.Get("/admin/teams/{number}/score-breakdown", h.GetScoreBreakdown)
}

type summaryResponse struct {
	Summary analyticsdomain.SessionSummary    `json:"summary"`
	Teams   []analyticsdomain.TeamPerformance `json:"teams"`
}

func (h *AnalyticsHandlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GetLeaderboard(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, entries)
}

func (h *AnalyticsHandlers) ExportLeaderboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="leaderboard.xlsx"`)
	if err := h.service.ExportLeaderboardXLSX(r.Context(), w); err != nil {
		w.Header().Del("Content-Disposition")
		httpapi.WriteError(w, r, h.logger, err)
	}
}

func (h *AnalyticsHandlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetSessionSummary(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	teams, err := h.service.GetTeamPerformance(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, summaryResponse{Summary: summary, Teams: teams})
}

func (h *AnalyticsHandlers) GetStatementAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStatementAnalytics(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, stats)
}

func (h *AnalyticsHandlers) GetScoreBreakdown(w http.ResponseWriter, r *http.Request) {
	number, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	breakdown, err := h.service.GetScoreBreakdown(r.Context(), number)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, breakdown)
}
