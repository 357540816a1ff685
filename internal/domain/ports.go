package domain

import "context"

type VenueRepository interface {
	// Write paths
	CreateVenue(ctx context.Context, v Venue) error
	UpsertReview(ctx context.Context, r Review) (created bool, err error)
	UpsertUser(ctx context.Context, u User) error

	// Read paths
	GetVenue(ctx context.Context, id string) (Venue, error)
	FindByPlaceID(ctx context.Context, placeID string) (Venue, error)
	ListVenues(ctx context.Context, q VenuesQuery) ([]Venue, error)
	ListReviews(ctx context.Context, venueID string) ([]Review, error)
	GetReview(ctx context.Context, venueID, userID string) (Review, error)
	// ReviewFactsByVenue returns facts in submission order, keyed by venue id.
	ReviewFactsByVenue(ctx context.Context, venueIDs []string) (map[string][]ReviewFacts, error)
}

type PlacesClient interface {
	Autocomplete(ctx context.Context, query string) ([]PlacePrediction, error)
	Details(ctx context.Context, placeID string) (PlaceDetails, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries
type VenuesQuery struct {
	PlaceID *string
	Limit   int
}

type PlacePrediction struct {
	PlaceID       string `json:"place_id"`
	Description   string `json:"description"`
	MainText      string `json:"main_text,omitempty"`
	SecondaryText string `json:"secondary_text,omitempty"`
}

type PlaceDetails struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Coords           *Coords  `json:"coords,omitempty"`
	Rating           *float64 `json:"rating,omitempty"`
	RatingsTotal     *int     `json:"user_ratings_total,omitempty"`
	Phone            string   `json:"formatted_phone_number,omitempty"`
	Website          string   `json:"website,omitempty"`
}

type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}
