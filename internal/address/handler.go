package address

import (
	"errors"
	"net/http"

	"restockd_backend/internal/places"
	"restockd_backend/platform/apperr"
	"restockd_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// ResolveRequest names the candidate to geocode.
type ResolveRequest struct {
	Description string `json:"description" binding:"required,max=512"`
}

// Handler exposes one-shot resolution for clients without a live session.
type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Resolve handles POST /api/v1/places/resolve
func (h *Handler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "description is required", nil)
		return
	}

	addr, err := h.resolver.Resolve(c.Request.Context(), req.Description)
	if err != nil {
		if errors.Is(err, places.ErrUnavailable) {
			httpkit.HandleError(c, apperr.Wrap(apperr.KindUnavailable, "address lookup unavailable", err))
			return
		}
		httpkit.HandleError(c, apperr.Wrap(apperr.KindBadGateway, "address lookup failed", err))
		return
	}

	httpkit.OK(c, addr)
}
