package places

// SuggestionsRequest represents the query parameters from the frontend.
type SuggestionsRequest struct {
	Query string `form:"q" binding:"required,min=1,max=256"`
}

// SuggestionsResponse wraps the candidate list.
type SuggestionsResponse struct {
	Suggestions []Candidate `json:"suggestions"`
}

// StatusResponse tells the form whether live suggestions can be offered.
type StatusResponse struct {
	Ready bool `json:"ready"`
}

type googleStatus string

const (
	statusOK          googleStatus = "OK"
	statusZeroResults googleStatus = "ZERO_RESULTS"
)

type structuredFormatting struct {
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text"`
}

type prediction struct {
	PlaceID              string               `json:"place_id"`
	Description          string               `json:"description"`
	StructuredFormatting structuredFormatting `json:"structured_formatting"`
}

// autocompleteResponse mirrors the relevant parts of the Places Autocomplete payload.
type autocompleteResponse struct {
	Predictions  []prediction `json:"predictions"`
	Status       googleStatus `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

type googleComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geometry struct {
	Location coordinate `json:"location"`
}

type geocodeResult struct {
	AddressComponents []googleComponent `json:"address_components"`
	FormattedAddress  string            `json:"formatted_address"`
	Geometry          geometry          `json:"geometry"`
	PlaceID           string            `json:"place_id"`
}

// geocodeResponse mirrors the relevant parts of the Geocoding payload.
type geocodeResponse struct {
	Results      []geocodeResult `json:"results"`
	Status       googleStatus    `json:"status"`
	ErrorMessage string          `json:"error_message"`
}
