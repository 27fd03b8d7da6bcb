package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/softmaker-io/spree-searchkick/internal/service"
	apperrors "github.com/softmaker-io/spree-searchkick/pkg/errors"
	"github.com/softmaker-io/spree-searchkick/pkg/httputil"
)

// SearchHandler handles HTTP requests for the search endpoints.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// AutocompleteResponse is the JSON payload of an autocomplete response.
type AutocompleteResponse struct {
	Suggestions []string `json:"suggestions"`
}

// ReindexResponse reports how many products were scheduled for resync.
type ReindexResponse struct {
	Scheduled int `json:"scheduled"`
}

// SettingsResponse carries the merged index configuration after a patch.
type SettingsResponse struct {
	Config map[string]any `json:"config"`
}

// Autocomplete handles GET /api/v1/search/autocomplete?q=...
func (h *SearchHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	keywords := r.URL.Query().Get("q")

	suggestions, err := h.service.Autocomplete(r.Context(), keywords)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: AutocompleteResponse{Suggestions: suggestions},
	})
}

// ApplySettings handles POST /api/v1/search/settings. The body is a partial
// index configuration that is deep-merged into the current one; the index is
// reprovisioned and repopulation scheduled.
func (h *SearchHandler) ApplySettings(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("request body must be a JSON object"), h.logger)
		return
	}

	merged, err := h.service.ApplySettings(r.Context(), patch)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: SettingsResponse{Config: merged},
	})
}

// Reindex handles POST /api/v1/search/reindex. Resyncs run asynchronously, so
// the response only acknowledges scheduling.
func (h *SearchHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Reindex(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{
		Data: ReindexResponse{Scheduled: count},
	})
}
