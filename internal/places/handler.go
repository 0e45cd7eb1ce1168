package places

import (
	"errors"
	"net/http"

	"restockd_backend/platform/apperr"
	"restockd_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the place lookup endpoints.
type Handler struct {
	loader   *Loader
	provider Provider
	region   string
}

// NewHandler serves suggestions from provider and readiness from loader.
func NewHandler(loader *Loader, provider Provider, region string) *Handler {
	return &Handler{loader: loader, provider: provider, region: region}
}

// Status handles GET /api/v1/places/status
func (h *Handler) Status(c *gin.Context) {
	httpkit.OK(c, StatusResponse{Ready: h.loader.Ready()})
}

// Suggestions handles GET /api/v1/places/suggestions?q=...
func (h *Handler) Suggestions(c *gin.Context) {
	var req SuggestionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'q' is required", nil)
		return
	}

	candidates, err := h.provider.QuerySuggestions(c.Request.Context(), req.Query, h.region)
	if err != nil {
		httpkit.HandleError(c, lookupError(err))
		return
	}

	httpkit.OK(c, SuggestionsResponse{Suggestions: candidates})
}

// lookupError maps provider failures onto HTTP-facing errors. Unavailable
// tells the client to fall back to manual entry; everything else is an
// upstream fault.
func lookupError(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return apperr.Wrap(apperr.KindUnavailable, "address lookup unavailable", err)
	}
	return apperr.Wrap(apperr.KindBadGateway, "address lookup service unavailable", err)
}
