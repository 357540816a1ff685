package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"madrid_barmap/internal/adapters/observability"
	"madrid_barmap/internal/domain"
)

type CommandService struct {
	repo  domain.VenueRepository
	now   func() time.Time
	newID func() string
}

func NewCommandService(r domain.VenueRepository) *CommandService {
	return &CommandService{repo: r, now: time.Now, newID: uuid.NewString}
}

func (s *CommandService) CreateVenue(ctx context.Context, u domain.User, in domain.NewVenue) (domain.Venue, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Address != nil {
		if a := strings.TrimSpace(*in.Address); a != "" {
			in.Address = &a
		} else {
			in.Address = nil
		}
	}
	if err := check(in); err != nil {
		return domain.Venue{}, err
	}
	if err := s.repo.UpsertUser(ctx, u); err != nil {
		return domain.Venue{}, fmt.Errorf("upsert user %s: %w", u.ID, err)
	}

	v := domain.Venue{
		ID:          s.newID(),
		Name:        in.Name,
		Lat:         *in.Lat,
		Lon:         *in.Lon,
		Address:     in.Address,
		PlaceID:     in.PlaceID,
		CreatedBy:   u.ID,
		CreatedAt:   s.now().UTC(),
		CreatorName: u.Name,
	}
	if err := s.repo.CreateVenue(ctx, v); err != nil {
		return domain.Venue{}, err
	}
	log.Info().Str("venue", v.ID).Str("user", u.ID).Msg("venue created")
	return v, nil
}

// SubmitReview stores the user's review of a venue. A second submission by
// the same user replaces the first; created reports which case happened.
// An unknown venue is reported before any problem with the review itself.
func (s *CommandService) SubmitReview(ctx context.Context, u domain.User, venueID string, in domain.NewReview) (rv domain.Review, created bool, err error) {
	if _, err := s.repo.GetVenue(ctx, venueID); err != nil {
		return domain.Review{}, false, err
	}
	if err := check(in); err != nil {
		return domain.Review{}, false, err
	}
	if err := s.repo.UpsertUser(ctx, u); err != nil {
		return domain.Review{}, false, fmt.Errorf("upsert user %s: %w", u.ID, err)
	}

	now := s.now().UTC()
	terrace, _ := domain.ParseTerrace(in.Terrace)
	tapa, _ := domain.ParseTapa(in.Tapa)
	created, err = s.repo.UpsertReview(ctx, domain.Review{
		ID:        s.newID(),
		VenueID:   venueID,
		UserID:    u.ID,
		Terrace:   terrace,
		Tapa:      tapa,
		Price:     in.Price.Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return domain.Review{}, false, err
	}
	observability.ObserveReview(created)

	// read back: on update the stored id and created_at are the original ones
	rv, err = s.repo.GetReview(ctx, venueID, u.ID)
	if err != nil {
		return domain.Review{}, false, err
	}
	log.Info().Str("venue", venueID).Str("user", u.ID).Bool("created", created).Msg("review stored")
	return rv, created, nil
}
