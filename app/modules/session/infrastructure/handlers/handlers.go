package sessionhandlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	sessionservice "github.com/Black-And-White-Club/truthtable/app/modules/session/application"
	"github.com/Black-And-White-Club/truthtable/app/shared/httpapi"
	"github.com/go-chi/chi/v5"
)

type SessionHandlers struct {
	service sessionservice.Service
	logger  *slog.Logger
}

func NewSessionHandlers(service sessionservice.Service, logger *slog.Logger) *SessionHandlers {
	return &SessionHandlers{service: service, logger: logger}
}

func (h *SessionHandlers) Mount(r chi.Router) {
	r.Get("/admin/config", h.ListConfig)
	r.Get("/admin/config/{key}", h.GetConfig)
	r.Put("/admin/config/{key}", h.SetConfig)
}

type setConfigRequest struct {
	Value json.RawMessage `json:"value"`
}

func (h *SessionHandlers) ListConfig(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListConfig(r.Context())
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, entries)
}

func (h *SessionHandlers) GetConfig(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetConfig(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, entry)
}

// SetConfig takes {"value": <any JSON>}.
func (h *SessionHandlers) SetConfig(w http.ResponseWriter, r *http.Request) {
	body, err := httpapi.DecodeBody[setConfigRequest](r)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	entry, err := h.service.SetConfig(r.Context(), chi.URLParam(r, "key"), body.Value)
	if err != nil {
		httpapi.WriteError(w, r, h.logger, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, entry)
}
