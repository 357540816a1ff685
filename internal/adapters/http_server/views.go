package httpserver

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"madrid_barmap/internal/domain"
)

// JSON shapes served to the map UI.

type venueJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   *string   `json:"address"`
	PlaceID   *string   `json:"placeId"`
	CreatedAt time.Time `json:"createdAt"`
}

type statsJSON struct {
	ReviewCount      int             `json:"reviewCount"`
	AvgPrice         json.Number     `json:"avgPrice"`
	MostVotedTerrace *domain.Terrace `json:"mostVotedTerrace"`
	MostVotedTapa    *domain.Tapa    `json:"mostVotedTapa"`
}

type venueSummaryJSON struct {
	venueJSON
	statsJSON
}

type userJSON struct {
	Name  *string `json:"name"`
	Image *string `json:"image,omitempty"`
}

type reviewJSON struct {
	ID        string         `json:"id"`
	Terrace   domain.Terrace `json:"terrace"`
	Tapa      domain.Tapa    `json:"tapa"`
	Price     json.Number    `json:"price"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	User      *userJSON      `json:"user,omitempty"`
}

type venueDetailJSON struct {
	venueJSON
	CreatedBy userJSON     `json:"createdBy"`
	Reviews   []reviewJSON `json:"reviews"`
	Stats     statsJSON    `json:"stats"`
}

// money renders a price as a JSON number with two decimals.
func money(d decimal.Decimal) json.Number { return json.Number(d.StringFixed(2)) }

func toVenueJSON(v domain.Venue) venueJSON {
	return venueJSON{
		ID:        v.ID,
		Name:      v.Name,
		Latitude:  v.Lat,
		Longitude: v.Lon,
		Address:   v.Address,
		PlaceID:   v.PlaceID,
		CreatedAt: v.CreatedAt,
	}
}

func toStatsJSON(s domain.Stats) statsJSON {
	return statsJSON{
		ReviewCount:      s.ReviewCount,
		AvgPrice:         money(s.RepresentativePrice),
		MostVotedTerrace: s.ModalTerrace,
		MostVotedTapa:    s.ModalTapa,
	}
}

func toSummaryJSON(v domain.VenueSummary) venueSummaryJSON {
	return venueSummaryJSON{venueJSON: toVenueJSON(v.Venue), statsJSON: toStatsJSON(v.Stats)}
}

func toReviewJSON(r domain.Review) reviewJSON {
	out := reviewJSON{
		ID:        r.ID,
		Terrace:   r.Terrace,
		Tapa:      r.Tapa,
		Price:     money(r.Price),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.UserName != nil || r.UserImage != nil {
		out.User = &userJSON{Name: r.UserName, Image: r.UserImage}
	}
	return out
}

func toDetailJSON(d domain.VenueDetail) venueDetailJSON {
	out := venueDetailJSON{
		venueJSON: toVenueJSON(d.Venue),
		CreatedBy: userJSON{Name: d.CreatorName},
		Reviews:   make([]reviewJSON, 0, len(d.Reviews)),
		Stats:     toStatsJSON(d.Stats),
	}
	for _, r := range d.Reviews {
		out.Reviews = append(out.Reviews, toReviewJSON(r))
	}
	return out
}
