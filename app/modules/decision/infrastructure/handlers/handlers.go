package decisionhandlers

import (
	"log/slog"
	"net/http"

	analyticsdomain "github.com/Black-And-White-Club/truthtable/app/modules/analytics/domain"
	decisionservice "github.com/Black-And-White-Club/truthtable/app/modules/decision/application"
	decisiondomain "github.com/Black-And-White-Club/truthtable/app/modules/decision/domain"
	"github.com/Black-And-White-Club/truthtable/app/shared/httpapi"
	"github.com/go-chi/chi/v5"
)

type DecisionHandlers struct {
	service decisionservice.Service
	logger  *slog.Logger
}

func NewDecisionHandlers(service decisionservice.Service, logger *slog.Logger) *DecisionHandlers {
	return &DecisionHandlers{service: service, logger: logger}
}

func (h *DecisionHandlers) Mount(r chi.Router) {
	r.Post("/teams/{number}/decisions", h.SubmitDecision)
	r.Get("/teams/{number}/decisions", h.ListTeamDecisions)
	r.Get("/statements/{id}/decisions", h.ListStatementDecisions)
}

type statementDecisionsResponse struct {
	StatementID string                       `json:"statementId"`
	Decisions   []decisiondomain.Decision    `json:"decisions"`
	Agreement   analyticsdomain.ChoiceCounts `json:"agreement"`
}

func (h *DecisionHandlers) SubmitDecision(w http.ResponseWriter, r *http.Request) {
	number, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	req, err := httpapi.DecodeBody[decisiondomain.SubmitRequest](r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	req.TeamNumber = number

	decision, err := h.service.SubmitDecision(r.Context(), req)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, decision)
}

func (h *DecisionHandlers) ListTeamDecisions(w http.ResponseWriter, r *http.Request) {
	number, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	decisions, err := h.service.ListTeamDecisions(r.Context(), number)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, decisions)
}

func (h *DecisionHandlers) ListStatementDecisions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	decisions, err := h.service.ListStatementDecisions(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, statementDecisionsResponse{
		StatementID: id,
		Decisions:   decisions,
		Agreement:   analyticsdomain.Agreement(decisions),
	})
}
