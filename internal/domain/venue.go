package domain

import "time"

type Venue struct {
	ID        string
	Name      string
	Lat, Lon  float64
	Address   *string
	PlaceID   *string // external catalogue id, unique when set
	CreatedBy string
	CreatedAt time.Time

	// read side only
	CreatorName *string
}

// NewVenue is the payload a user submits to add a bar to the map.
type NewVenue struct {
	Name    string   `json:"name" validate:"required,min=1,max=100"`
	Lat     *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Lon     *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Address *string  `json:"address,omitempty" validate:"omitempty,max=200"`
	PlaceID *string  `json:"placeId,omitempty" validate:"omitempty,min=1,max=255"`
}

type User struct {
	ID    string
	Name  *string
	Image *string
}

// VenueSummary is a map pin: the venue and its stats.
type VenueSummary struct {
	Venue
	Stats Stats
}

// VenueDetail is the side panel view of one venue.
type VenueDetail struct {
	Venue
	Reviews []Review
	Stats   Stats
}
