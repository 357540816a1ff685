package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"madrid_barmap/internal/domain"
)

// ImportService creates venues straight from catalogue entries.
type ImportService struct {
	places *PlacesService
	repo   domain.VenueRepository
	cmds   *CommandService
}

func NewImportService(p *PlacesService, r domain.VenueRepository, c *CommandService) *ImportService {
	return &ImportService{places: p, repo: r, cmds: c}
}

// ImportPlace adds the catalogue place as a venue owned by creator. A place
// that is already on the map is left alone and reported with created=false.
func (s *ImportService) ImportPlace(ctx context.Context, placeID string, creator domain.User) (domain.Venue, bool, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return domain.Venue{}, false, &domain.ValidationError{Fields: map[string]string{"placeId": "is required"}}
	}

	if v, err := s.repo.FindByPlaceID(ctx, placeID); err == nil {
		return v, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Venue{}, false, err
	}

	d, err := s.places.Details(ctx, placeID)
	if err != nil {
		return domain.Venue{}, false, err
	}
	in, err := venueFromPlace(placeID, d)
	if err != nil {
		return domain.Venue{}, false, err
	}

	v, err := s.cmds.CreateVenue(ctx, creator, in)
	if errors.Is(err, domain.ErrConflict) {
		// lost a race with another import of the same place
		v, err = s.repo.FindByPlaceID(ctx, placeID)
		return v, false, err
	}
	if err != nil {
		return domain.Venue{}, false, err
	}
	return v, true, nil
}

func venueFromPlace(placeID string, d domain.PlaceDetails) (domain.NewVenue, error) {
	if d.Coords == nil {
		return domain.NewVenue{}, fmt.Errorf("place %s has no coordinates", placeID)
	}
	name := strings.TrimSpace(d.Name)
	if len([]rune(name)) > 100 {
		name = string([]rune(name)[:100])
	}
	in := domain.NewVenue{
		Name:    name,
		Lat:     &d.Coords.Lat,
		Lon:     &d.Coords.Lon,
		PlaceID: &placeID,
	}
	if addr := strings.TrimSpace(d.FormattedAddress); addr != "" {
		if len([]rune(addr)) > 200 {
			addr = string([]rune(addr)[:200])
		}
		in.Address = &addr
	}
	return in, nil
}
