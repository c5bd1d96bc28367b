package statementhandlers

import (
	"log/slog"
	"net/http"

	statementservice "github.com/Black-And-White-Club/truthtable/app/modules/statement/application"
	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	"github.com/Black-And-White-Club/truthtable/app/shared/httpapi"
	"github.com/go-chi/chi/v5"
)

// StatementHandlers serves the statement, evaluation-table and recommended-evidence endpoints.
type StatementHandlers struct {
	service statementservice.Service
	logger  *slog.Logger
}

func NewStatementHandlers(service statementservice.Service, logger *slog.Logger) *StatementHandlers {
	return &StatementHandlers{service: service, logger: logger}
}

// Mount registers the routes on r. The decisions sub-route is owned by the decision module.
func (h *StatementHandlers) Mount(r chi.Router) {
	r.Get("/statements", h.ListStatements)
	r.Get("/statements/{id}", h.GetStatement)
	r.Get("/statements/{id}/evaluations", h.GetEvaluations)
	r.Put("/statements/{id}/evaluations", h.SetEvaluations)
	r.Post("/statements/{id}/evaluations", h.UpsertEvaluation)
	r.Delete("/statements/{id}/evaluations/{choice}", h.DeleteEvaluation)
	r.Get("/statements/{id}/recommended-items", h.GetRecommendedItems)
	r.Put("/statements/{id}/recommended-items", h.SetRecommendedItems)
}

type evaluationTableResponse struct {
	StatementID string                `json:"statementId"`
	Evaluations statementdomain.Table `json:"evaluations"`
}

type recommendedItemsRequest struct {
	ItemIDs []string `json:"itemIds"`
}

type recommendedItemsResponse struct {
	StatementID string   `json:"statementId"`
	ItemIDs     []string `json:"itemIds"`
}

func (h *StatementHandlers) ListStatements(w http.ResponseWriter, r *http.Request) {
	statements, err := h.service.ListStatements(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, statements)
}

func (h *StatementHandlers) GetStatement(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.GetStatement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, st)
}

func (h *StatementHandlers) GetEvaluations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	table, err := h.service.GetEvaluationTable(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, evaluationTableResponse{StatementID: id, Evaluations: table})
}

// SetEvaluations replaces every entry named in {"evaluations": [...]}.
func (h *StatementHandlers) SetEvaluations(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := httpapi.DecodeBody[struct {
		Evaluations statementdomain.Table `json:"evaluations"`
	}](r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	table, err := h.service.SetEvaluationTable(r.Context(), id, body.Evaluations)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, evaluationTableResponse{StatementID: id, Evaluations: table})
}

func (h *StatementHandlers) UpsertEvaluation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := httpapi.DecodeBody[statementdomain.Evaluation](r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	table, err := h.service.UpsertEvaluation(r.Context(), id, entry)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, evaluationTableResponse{StatementID: id, Evaluations: table})
}

func (h *StatementHandlers) DeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	choice := statementdomain.Choice(chi.URLParam(r, "choice"))
	table, err := h.service.DeleteEvaluation(r.Context(), id, choice)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, evaluationTableResponse{StatementID: id, Evaluations: table})
}

func (h *StatementHandlers) GetRecommendedItems(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ids, err := h.service.GetRecommendedItems(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, recommendedItemsResponse{StatementID: id, ItemIDs: ids})
}

func (h *StatementHandlers) SetRecommendedItems(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := httpapi.DecodeBody[recommendedItemsRequest](r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	ids, err := h.service.SetRecommendedItems(r.Context(), id, body.ItemIDs)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, recommendedItemsResponse{StatementID: id, ItemIDs: ids})
}
