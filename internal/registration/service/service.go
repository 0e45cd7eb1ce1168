package service

import (
	"context"
	"errors"
	"strings"

	"restockd_backend/internal/address"
	"restockd_backend/internal/events"
	"restockd_backend/internal/registration/repository"
	"restockd_backend/internal/registration/transport"
	"restockd_backend/internal/registration/validation"
	"restockd_backend/platform/apperr"
	"restockd_backend/platform/logger"
	"restockd_backend/platform/phone"
	"restockd_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgRequired              = "email and role are required"
	msgInvalidRole           = "Invalid role. Must be 'Donor' or 'Food Bank'"
	msgDonorFieldsMissing    = "firstName, lastName, phone, address, city, state, and postalCode are required for Donor"
	msgFoodBankFieldsMissing = "name, phone, address, city, state, and postalCode are required for Food Bank"
	msgCreated               = "Profile created successfully"
	msgDonorNotFound         = "Donor not found"
)

// Result reports whether a profile was created or already existed.
type Result struct {
	Created bool
	Message string
	Profile repository.Profile
}

type Service struct {
	repo   repository.ProfileRepository
	engine *validation.Engine
	bus    events.Bus
	log    *logger.Logger
}

func New(repo repository.ProfileRepository, engine *validation.Engine, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, engine: engine, bus: bus, log: log}
}

// Validate checks a full registration form, password pair included.
func (s *Service) Validate(snapshot validation.Snapshot) error {
	verdict := s.engine.Validate(snapshot)
	if !verdict.Valid {
		return apperr.Validation(verdict.Message)
	}
	return nil
}

// CreateProfile stores the profile and its role record for userID. Calling
// it again for the same user and role is a no-op that reports the existing
// profile.
func (s *Service) CreateProfile(ctx context.Context, userID uuid.UUID, req transport.CreateProfileRequest) (Result, error) {
	log := s.log.WithContext(ctx)
	email := strings.TrimSpace(req.Email)
	role := validation.Role(strings.TrimSpace(req.Role))

	if email == "" || role == "" {
		return Result{}, apperr.BadRequest(msgRequired)
	}
	if !role.Valid() {
		log.RegistrationEvent("profile_create", email, false, "invalid role")
		return Result{}, apperr.BadRequest(msgInvalidRole)
	}

	exists, err := s.repo.HasRoleRecord(ctx, userID, string(role))
	if err != nil {
		log.DatabaseError("has_role_record", err)
		return Result{}, err
	}
	if exists {
		return s.existing(ctx, userID, role)
	}

	if msg := missingFields(role, req); msg != "" {
		return Result{}, apperr.BadRequest(msg)
	}

	snapshot := toSnapshot(email, role, req).Normalized()
	if verdict := s.engine.ValidateProfile(snapshot); !verdict.Valid {
		log.RegistrationEvent("profile_create", email, false, verdict.Message)
		return Result{}, apperr.Validation(verdict.Message)
	}

	lat, lng := coordinates(req)
	profile, err := s.repo.CreateProfile(ctx, toNewProfile(userID, snapshot, lat, lng))
	if errors.Is(err, repository.ErrAlreadyExists) {
		return s.existing(ctx, userID, role)
	}
	if err != nil {
		log.DatabaseError("create_profile", err)
		return Result{}, err
	}

	log.RegistrationEvent("profile_create", email, true, "")
	s.bus.Publish(ctx, events.ProfileCreated{
		BaseEvent:   events.NewBaseEvent(),
		UserID:      userID,
		Email:       email,
		Role:        string(role),
		DisplayName: displayName(snapshot),
		FullAddress: fullAddress(snapshot),
		Latitude:    lat,
		Longitude:   lng,
	})

	return Result{Created: true, Message: msgCreated, Profile: profile}, nil
}

// GetDonor returns the donor record for id.
func (s *Service) GetDonor(ctx context.Context, id uuid.UUID) (repository.Donor, error) {
	donor, err := s.repo.GetDonor(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Donor{}, apperr.NotFound(msgDonorNotFound)
	}
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("get_donor", err)
		return repository.Donor{}, err
	}
	return donor, nil
}

// ListFoodBanks returns every food bank ordered by name.
func (s *Service) ListFoodBanks(ctx context.Context) ([]repository.FoodBank, error) {
	banks, err := s.repo.ListFoodBanks(ctx)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("list_food_banks", err)
		return nil, err
	}
	return banks, nil
}

func (s *Service) existing(ctx context.Context, userID uuid.UUID, role validation.Role) (Result, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, apperr.NotFound("profile not found")
		}
		return Result{}, err
	}
	return Result{Message: string(role) + " profile already exists", Profile: profile}, nil
}

func missingFields(role validation.Role, req transport.CreateProfileRequest) string {
	common := []string{req.Phone, req.Address, req.City, req.State, req.PostalCode}
	switch role {
	case validation.RoleDonor:
		if anyBlank(append(common, req.FirstName, req.LastName)...) {
			return msgDonorFieldsMissing
		}
	case validation.RoleFoodBank:
		if anyBlank(append(common, req.Name)...) {
			return msgFoodBankFieldsMissing
		}
	}
	return ""
}

func anyBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func toSnapshot(email string, role validation.Role, req transport.CreateProfileRequest) validation.Snapshot {
	return validation.Snapshot{
		Email:        email,
		Role:         role,
		FirstName:    sanitize.Line(req.FirstName),
		LastName:     sanitize.Line(req.LastName),
		FoodBankName: sanitize.Line(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		CanonicalAddress: address.CanonicalAddress{
			Street:     sanitize.Line(req.Address),
			City:       sanitize.Line(req.City),
			State:      strings.TrimSpace(req.State),
			PostalCode: strings.TrimSpace(req.PostalCode),
		},
	}
}

// coordinates are only kept as a pair.
func coordinates(req transport.CreateProfileRequest) (*float64, *float64) {
	if req.Lat == nil || req.Lng == nil {
		return nil, nil
	}
	return req.Lat, req.Lng
}

func toNewProfile(userID uuid.UUID, s validation.Snapshot, lat, lng *float64) repository.NewProfile {
	location := repository.Location{
		Street:     s.Street,
		City:       s.City,
		State:      s.State,
		PostalCode: s.PostalCode,
		Latitude:   lat,
		Longitude:  lng,
	}

	p := repository.NewProfile{ID: userID, Email: s.Email, Role: string(s.Role)}
	storedPhone := phone.NormalizeE164(s.Phone)
	switch s.Role {
	case validation.RoleDonor:
		p.Donor = &repository.DonorDetails{
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Phone:     storedPhone,
			Location:  location,
		}
	case validation.RoleFoodBank:
		p.FoodBank = &repository.FoodBankDetails{
			Name:     s.FoodBankName,
			Phone:    storedPhone,
			Location: location,
		}
	}
	return p
}

func displayName(s validation.Snapshot) string {
	if s.Role == validation.RoleFoodBank {
		return s.FoodBankName
	}
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

func fullAddress(s validation.Snapshot) string {
	return repository.PendingGeocode{Location: repository.Location{
		Street:     s.Street,
		City:       s.City,
		State:      s.State,
		PostalCode: s.PostalCode,
	}}.Query()
}
