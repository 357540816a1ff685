package app

import (
	"context"

	"madrid_barmap/internal/domain"
)

const maxVenues = 1000

// QueryService serves the map and the venue panel. Stats are computed on
// every call from the stored reviews; nothing here is cached.
type QueryService struct {
	repo domain.VenueRepository
}

func NewQueryService(r domain.VenueRepository) *QueryService {
	return &QueryService{repo: r}
}

// ListVenues returns every venue (newest first) with its stats. A non-empty
// placeID restricts the result to the venue linked to that catalogue entry.
func (s *QueryService) ListVenues(ctx context.Context, placeID string) ([]domain.VenueSummary, error) {
	q := domain.VenuesQuery{Limit: maxVenues}
	if placeID != "" {
		q.PlaceID = &placeID
	}
	vs, err := s.repo.ListVenues(ctx, q)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(vs))
	for _, v := range vs {
		ids = append(ids, v.ID)
	}
	facts, err := s.repo.ReviewFactsByVenue(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.VenueSummary, 0, len(vs))
	for _, v := range vs {
		out = append(out, domain.VenueSummary{Venue: v, Stats: domain.Aggregate(facts[v.ID])})
	}
	return out, nil
}

func (s *QueryService) GetVenue(ctx context.Context, id string) (domain.VenueDetail, error) {
	v, err := s.repo.GetVenue(ctx, id)
	if err != nil {
		return domain.VenueDetail{}, err
	}
	reviews, err := s.repo.ListReviews(ctx, id)
	if err != nil {
		return domain.VenueDetail{}, err
	}

	// reviews arrive newest first; the modal tie-break wants submission order
	facts := make([]domain.ReviewFacts, len(reviews))
	for i, r := range reviews {
		facts[len(reviews)-1-i] = r.Facts()
	}
	return domain.VenueDetail{Venue: v, Reviews: reviews, Stats: domain.Aggregate(facts)}, nil
}
