package transport

import "time"

// CreateProfileRequest is submitted after the identity provider accepted
// the sign-up. The user id comes from the access token.
type CreateProfileRequest struct {
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postalCode"`
	Lat        *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng        *float64 `json:"lng" validate:"omitempty,longitude"`
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateProfileResponse struct {
	Message string          `json:"message"`
	Profile ProfileResponse `json:"profile"`
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// LocationResponse is a stored address. Coordinates stay null until the
// address was geocoded.
type LocationResponse struct {
	Address    string   `json:"address"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postalCode"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

type DonorResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	LocationResponse
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type FoodBankResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	LocationResponse
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type FoodBankListResponse struct {
	FoodBanks []FoodBankResponse `json:"foodBanks"`
}
