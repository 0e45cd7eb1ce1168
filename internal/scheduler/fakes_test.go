package scheduler

import (
	"context"
	"sync"

	"restockd_backend/internal/address"
	"restockd_backend/internal/registration/repository"

	"github.com/google/uuid"
)

type coordinateUpdate struct {
	ID       uuid.UUID
	Role     string
	Lat, Lng float64
}

type fakeRepo struct {
	mu        sync.Mutex
	pending   []repository.PendingGeocode
	updates   []coordinateUpdate
	failed    []coordinateUpdate
	updateErr error
	listErr   error
}

func (r *fakeRepo) GetProfile(context.Context, uuid.UUID) (repository.Profile, error) {
	return repository.Profile{}, repository.ErrNotFound
}

func (r *fakeRepo) HasRoleRecord(context.Context, uuid.UUID, string) (bool, error) {
	return false, nil
}

func (r *fakeRepo) CreateProfile(context.Context, repository.NewProfile) (repository.Profile, error) {
	return repository.Profile{}, nil
}

func (r *fakeRepo) GetDonor(context.Context, uuid.UUID) (repository.Donor, error) {
	return repository.Donor{}, repository.ErrNotFound
}

func (r *fakeRepo) ListFoodBanks(context.Context) ([]repository.FoodBank, error) {
	return nil, nil
}

// ListMissingCoordinates skips records marked as failed, like the SQL does.
func (r *fakeRepo) ListMissingCoordinates(_ context.Context, limit int) ([]repository.PendingGeocode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}

	pending := make([]repository.PendingGeocode, 0, len(r.pending))
	for _, p := range r.pending {
		if !r.isFailed(p.ID, p.Role) {
			pending = append(pending, p)
		}
	}
	if len(pending) > limit {
		return pending[:limit], nil
	}
	return pending, nil
}

func (r *fakeRepo) MarkGeocodeFailed(_ context.Context, id uuid.UUID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, coordinateUpdate{ID: id, Role: role})
	return nil
}

func (r *fakeRepo) isFailed(id uuid.UUID, role string) bool {
	for _, f := range r.failed {
		if f.ID == id && f.Role == role {
			return true
		}
	}
	return false
}

func (r *fakeRepo) UpdateCoordinates(_ context.Context, id uuid.UUID, role string, lat, lng float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates = append(r.updates, coordinateUpdate{ID: id, Role: role, Lat: lat, Lng: lng})
	return nil
}

type fakeResolver struct {
	results map[string]address.CanonicalAddress
	err     error
}

func (f fakeResolver) Resolve(_ context.Context, description string) (address.CanonicalAddress, error) {
	if f.err != nil {
		return address.CanonicalAddress{}, f.err
	}
	return f.results[description], nil
}

type sentEmail struct {
	To, Name, Role string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (s *fakeSender) SendWelcomeEmail(_ context.Context, to, name, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentEmail{To: to, Name: name, Role: role})
	return nil
}

type enqueued struct {
	Geocode *GeocodeProfilePayload
	Welcome *WelcomeEmailPayload
	TaskID  string
}

type fakeEnqueuer struct {
	mu   sync.Mutex
	jobs []enqueued
	err  error
}

func (f *fakeEnqueuer) EnqueueGeocodeProfile(_ context.Context, p GeocodeProfilePayload, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, enqueued{Geocode: &p, TaskID: taskID})
	return nil
}

func (f *fakeEnqueuer) EnqueueWelcomeEmail(_ context.Context, p WelcomeEmailPayload, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, enqueued{Welcome: &p, TaskID: taskID})
	return nil
}
