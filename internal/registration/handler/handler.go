package handler

import (
	"net/http"

	"restockd_backend/internal/registration/repository"
	"restockd_backend/internal/registration/service"
	"restockd_backend/internal/registration/transport"
	"restockd_backend/internal/registration/validation"
	"restockd_backend/platform/httpkit"
	"restockd_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidDonorID   = "Invalid donor_id format"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Validate handles POST /api/v1/registrations/validate
func (h *Handler) Validate(c *gin.Context) {
	var req validation.Snapshot
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.Validate(req)) {
		return
	}

	httpkit.OK(c, transport.ValidateResponse{Valid: true})
}

// CreateProfile handles POST /api/v1/profiles
func (h *Handler) CreateProfile(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.CreateProfile(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.CreateProfileResponse{
		Message: result.Message,
		Profile: toProfileResponse(result.Profile),
	}
	if result.Created {
		httpkit.Created(c, resp)
		return
	}
	httpkit.OK(c, resp)
}

// GetDonor handles GET /api/v1/donors/:id
func (h *Handler) GetDonor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidDonorID, nil)
		return
	}

	donor, err := h.svc.GetDonor(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.DonorResponse{
		ID:               donor.ID.String(),
		FirstName:        donor.FirstName,
		LastName:         donor.LastName,
		Phone:            donor.Phone,
		LocationResponse: toLocationResponse(donor.Location),
		CreatedAt:        donor.CreatedAt,
		UpdatedAt:        donor.UpdatedAt,
	})
}

// ListFoodBanks handles GET /api/v1/food_banks
func (h *Handler) ListFoodBanks(c *gin.Context) {
	banks, err := h.svc.ListFoodBanks(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.FoodBankListResponse{FoodBanks: make([]transport.FoodBankResponse, 0, len(banks))}
	for _, b := range banks {
		resp.FoodBanks = append(resp.FoodBanks, transport.FoodBankResponse{
			ID:               b.ID.String(),
			Name:             b.Name,
			Phone:            b.Phone,
			LocationResponse: toLocationResponse(b.Location),
			CreatedAt:        b.CreatedAt,
			UpdatedAt:        b.UpdatedAt,
		})
	}
	httpkit.OK(c, resp)
}

func toLocationResponse(l repository.Location) transport.LocationResponse {
	return transport.LocationResponse{
		Address:    l.Street,
		City:       l.City,
		State:      l.State,
		PostalCode: l.PostalCode,
		Lat:        l.Latitude,
		Lng:        l.Longitude,
	}
}

func toProfileResponse(p repository.Profile) transport.ProfileResponse {
	return transport.ProfileResponse{
		ID:        p.ID.String(),
		Email:     p.Email,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// RegisterRoutes mounts the public validation and directory endpoints and
// the authenticated profile endpoints. Donor records carry a phone number,
// so reading them requires a token.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/registrations/validate", h.Validate)
	public.GET("/food_banks", h.ListFoodBanks)
	protected.POST("/profiles", h.CreateProfile)
	protected.GET("/donors/:id", h.GetDonor)
}
