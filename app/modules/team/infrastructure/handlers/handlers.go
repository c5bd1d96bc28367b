package teamhandlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	teamservice "github.com/Black-And-White-Club/truthtable/app/modules/team/application"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/Black-And-White-Club/truthtable/app/shared/httpapi"
	"github.com/go-chi/chi/v5"
)

// ItemLister lists the evidence a team may still buy.
type ItemLister interface {
	ListItemsForTeam(ctx context.Context, teamNumber int) ([]statementdomain.Item, error)
}

// TeamHandlers serves the team ledger, roster and reset endpoints.
type TeamHandlers struct {
	service teamservice.Service
	items   ItemLister
	logger  *slog.Logger
}

func NewTeamHandlers(service teamservice.Service, items ItemLister, logger *slog.Logger) *TeamHandlers {
	return &TeamHandlers{service: service, items: items, logger: logger}
}

func (h *TeamHandlers) Mount(r chi.Router) {
	r.Get("/teams", h.ListTeams)
	r.Get("/teams/{number}", h.GetTeam)
	r.Post("/teams/{number}/purchases", h.PurchaseItem)
	r.Get("/teams/{number}/purchases", h.ListPurchases)
	r.Post("/teams/{number}/hints", h.PurchaseHint)
	r.Get("/teams/{number}/hints", h.ListHints)
	r.Post("/teams/{number}/members", h.AddMember)
	r.Put("/teams/{number}/members", h.SetMembers)
	r.Put("/teams/{number}/nickname", h.SetNickname)
	r.Get("/teams/{number}/decider", h.GetDecider)
	r.Get("/teams/{number}/items", h.ListItems)
	r.Get("/players/search", h.SearchPlayers)
	r.Post("/admin/reset", h.ResetGame)
}

type purchaseItemRequest struct {
	ItemID      string  `json:"itemId"`
	StatementID *string `json:"statementId,omitempty"`
}

type purchaseHintRequest struct {
	StatementID string `json:"statementId"`
}

type addMemberRequest struct {
	Name string `json:"name"`
}

type setMembersRequest struct {
	Members []string `json:"members"`
	Shuffle bool     `json:"shuffle"`
}

type nicknameRequest struct {
	Nickname string `json:"nickname"`
}

type resetRequest struct {
	MaxTeams int `json:"maxTeams"`
}

type membersResponse struct {
	TeamNumber int      `json:"teamNumber"`
	Members    []string `json:"members"`
}

func (h *TeamHandlers) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.service.ListTeams(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, teams)
}

func (h *TeamHandlers) GetTeam(w http.ResponseWriter, r *http.Request) {
	n, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	team, err := h.service.GetTeam(r.Context(), n)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, team)
}

func (h *TeamHandlers) PurchaseItem(w http.ResponseWriter, r *http.Request) {
	n, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	body, err := httpapi.DecodeBody[purchaseItemRequest](r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	receipt, err := h.service.PurchaseItem(r.Context(), n, body.ItemID, body.StatementID)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, receipt)
}

func (h *TeamHandlers) ListPurchases(w http.ResponseWriter, r *http.Request) {
	n, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	purchases, err := h.service.ListPurchases(r.Context(), n)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, purchases)
}

func (h *TeamHandlers) PurchaseHint(w http.ResponseWriter, r *http.Request) {
	n, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	body, err := httpapi.DecodeBody[purchaseHintRequest](r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	receipt, err := h.service.PurchaseHint(r.Context(), n, body.StatementID)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, receipt)
}

func (h *TeamHandlers) ListHints(w http.ResponseWriter, r *http.Request) {
	n, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	hints, err := h.service.ListHints(r.Context(), n)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, hints)
}

func (h *TeamHandlers) AddMember(w http.ResponseWriter, r *http.Request) {
	n, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	body, err := httpapi.DecodeBody[addMemberRequest](r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	members, err := h.service.AddMember(r.Context(), n, body.Name)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, membersResponse{TeamNumber: n, Members: members})
}

// SetMembers replaces the roster, optionally shuffling it into a new decider order.
func (h *TeamHandlers) SetMembers(w http.ResponseWriter, r *http.Request) {
	n, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	body, err := httpapi.DecodeBody[setMembersRequest](r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	members, err := h.service.SetMembers(r.Context(), n, body.Members, body.Shuffle)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, membersResponse{TeamNumber: n, Members: members})
}

func (h *TeamHandlers) SetNickname(w http.ResponseWriter, r *http.Request) {
	n, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	body, err := httpapi.DecodeBody[nicknameRequest](r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	team, err := h.service.SetNickname(r.Context(), n, body.Nickname)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, team)
}

// GetDecider reads ?statement_index=i, defaulting to 0.
func (h *TeamHandlers) GetDecider(w http.ResponseWriter, r *http.Request) {
	n, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	index := 0
	if raw := r.URL.Query().Get("statement_index"); raw != "" {
		index, err = strconv.Atoi(raw)
		if err != nil {
			httpapi.WriteError(w, r, h.logger, gameerrors.Validation("statement_index must be an integer, got %q", raw))
			return
		}
	}
	a, err := h.service.GetDecider(r.Context(), n, index)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, a)
}

func (h *TeamHandlers) ListItems(w http.ResponseWriter, r *http.Request) {
	n, err := httpapi.IntParam(r, "number")
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	items, err := h.items.ListItemsForTeam(r.Context(), n)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, items)
}

func (h *TeamHandlers) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	matches, err := h.service.SearchPlayers(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, matches)
}

func (h *TeamHandlers) ResetGame(w http.ResponseWriter, r *http.Request) {
	body, err := httpapi.DecodeBody[resetRequest](r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	res, err := h.service.ResetGame(r.Context(), body.MaxTeams)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res)
}
