package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidRole   = errors.New("invalid role")
)

const (
	RoleDonor    = "Donor"
	RoleFoodBank = "Food Bank"
)

const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Profile struct {
	ID        uuid.UUID
	Email     string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location is the stored address of a donor or food bank. Coordinates are
// nil until the address was geocoded.
type Location struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Latitude   *float64
	Longitude  *float64
}

type DonorDetails struct {
	FirstName string
	LastName  string
	Phone     string
	Location  Location
}

type FoodBankDetails struct {
	Name     string
	Phone    string
	Location Location
}

// NewProfile is a profile plus exactly one role record, matching Role.
type NewProfile struct {
	ID       uuid.UUID
	Email    string
	Role     string
	Donor    *DonorDetails
	FoodBank *FoodBankDetails
}

// Donor is a stored donor record.
type Donor struct {
	ID uuid.UUID
	DonorDetails
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FoodBank is a stored food bank record.
type FoodBank struct {
	ID uuid.UUID
	FoodBankDetails
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PendingGeocode is a role record whose address has no coordinates yet.
type PendingGeocode struct {
	ID       uuid.UUID
	Role     string
	Location Location
}

// Query renders the location as a single geocoding query.
func (p PendingGeocode) Query() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{p.Location.Street, p.Location.City, strings.TrimSpace(p.Location.State + " " + p.Location.PostalCode)} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func roleTable(role string) (string, error) {
	switch role {
	case RoleDonor:
		return "donors", nil
	case RoleFoodBank:
		return "food_banks", nil
	default:
		return "", ErrInvalidRole
	}
}

func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Email, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (r *Repository) HasRoleRecord(ctx context.Context, id uuid.UUID, role string) (bool, error) {
	table, err := roleTable(role)
	if err != nil {
		return false, err
	}

	var exists bool
	err = r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table), id).Scan(&exists)
	return exists, err
}

// CreateProfile inserts the profile row (kept when it already exists) and
// the role record in one transaction. A role record that already exists
// yields ErrAlreadyExists.
func (r *Repository) CreateProfile(ctx context.Context, p NewProfile) (Profile, error) {
	if _, err := roleTable(p.Role); err != nil {
		return Profile{}, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Profile{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `
		INSERT INTO profiles (id, email, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, p.ID, p.Email, p.Role); err != nil {
		return Profile{}, err
	}

	var profile Profile
	if err = tx.QueryRow(ctx, `
		SELECT id, email, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, p.ID).Scan(&profile.ID, &profile.Email, &profile.Role, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		return Profile{}, err
	}

	switch {
	case p.Role == RoleDonor && p.Donor != nil:
		d := p.Donor
		_, err = tx.Exec(ctx, `
			INSERT INTO donors (id, first_name, last_name, phone, address, city, state, postal_code, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, p.ID, d.FirstName, d.LastName, d.Phone, d.Location.Street, d.Location.City, d.Location.State,
			d.Location.PostalCode, d.Location.Latitude, d.Location.Longitude)
	case p.Role == RoleFoodBank && p.FoodBank != nil:
		f := p.FoodBank
		_, err = tx.Exec(ctx, `
			INSERT INTO food_banks (id, name, phone, address, city, state, postal_code, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, p.ID, f.Name, f.Phone, f.Location.Street, f.Location.City, f.Location.State,
			f.Location.PostalCode, f.Location.Latitude, f.Location.Longitude)
	default:
		err = fmt.Errorf("%w: missing %s details", ErrInvalidRole, p.Role)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			err = ErrAlreadyExists
		}
		return Profile{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (r *Repository) GetDonor(ctx context.Context, id uuid.UUID) (Donor, error) {
	var d Donor
	var lastName, phone, street, city, state, postalCode *string
	err := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, phone, address, city, state, postal_code,
			latitude, longitude, created_at, updated_at
		FROM donors
		WHERE id = $1
	`, id).Scan(&d.ID, &d.FirstName, &lastName, &phone, &street, &city, &state, &postalCode,
		&d.Location.Latitude, &d.Location.Longitude, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Donor{}, ErrNotFound
	}
	if err != nil {
		return Donor{}, err
	}

	d.LastName = deref(lastName)
	d.Phone = deref(phone)
	d.Location.Street = deref(street)
	d.Location.City = deref(city)
	d.Location.State = deref(state)
	d.Location.PostalCode = deref(postalCode)
	return d, nil
}

// ListFoodBanks returns every food bank ordered by name.
func (r *Repository) ListFoodBanks(ctx context.Context) ([]FoodBank, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, phone, address, city, state, postal_code,
			latitude, longitude, created_at, updated_at
		FROM food_banks
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	banks := make([]FoodBank, 0)
	for rows.Next() {
		var f FoodBank
		var phone *string
		if err := rows.Scan(&f.ID, &f.Name, &phone, &f.Location.Street, &f.Location.City, &f.Location.State,
			&f.Location.PostalCode, &f.Location.Latitude, &f.Location.Longitude, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		f.Phone = deref(phone)
		banks = append(banks, f)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return banks, nil
}

// ListMissingCoordinates returns donors and food banks with an address but
// no coordinates, oldest first. Records whose address the provider could
// not find are skipped until the address changes.
func (r *Repository) ListMissingCoordinates(ctx context.Context, limit int) ([]PendingGeocode, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, role, address, city, state, postal_code FROM (
			SELECT id, 'Donor' AS role, address, city, state, postal_code, created_at
			FROM donors
			WHERE address IS NOT NULL AND address <> ''
			  AND (latitude IS NULL OR longitude IS NULL)
			  AND geocode_failed_at IS NULL
			UNION ALL
			SELECT id, 'Food Bank' AS role, address, city, state, postal_code, created_at
			FROM food_banks
			WHERE address <> ''
			  AND (latitude IS NULL OR longitude IS NULL)
			  AND geocode_failed_at IS NULL
		) pending
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := make([]PendingGeocode, 0)
	for rows.Next() {
		var p PendingGeocode
		var city, state, postalCode *string
		if err := rows.Scan(&p.ID, &p.Role, &p.Location.Street, &city, &state, &postalCode); err != nil {
			return nil, err
		}
		p.Location.City = deref(city)
		p.Location.State = deref(state)
		p.Location.PostalCode = deref(postalCode)
		pending = append(pending, p)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return pending, nil
}

func (r *Repository) UpdateCoordinates(ctx context.Context, id uuid.UUID, role string, lat, lng float64) error {
	table, err := roleTable(role)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET latitude = $2, longitude = $3, geocode_failed_at = NULL, updated_at = now()
		WHERE id = $1
	`, table), id, lat, lng)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkGeocodeFailed records that the provider has no result for the stored
// address, which takes the record out of ListMissingCoordinates.
func (r *Repository) MarkGeocodeFailed(ctx context.Context, id uuid.UUID, role string) error {
	table, err := roleTable(role)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE %s
		SET geocode_failed_at = now()
		WHERE id = $1
	`, table), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
