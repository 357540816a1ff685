// Package memory is a process-local VenueRepository for development and tests.
package memory

import (
	"context"
	"sync"

	"madrid_barmap/internal/domain"
)

type Repo struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	venues  []domain.Venue // insertion order
	reviews []domain.Review
}

func New() *Repo { return &Repo{users: map[string]domain.User{}} }

func (r *Repo) UpsertUser(ctx context.Context, u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ex, ok := r.users[u.ID]; ok {
		if u.Name == nil {
			u.Name = ex.Name
		}
		if u.Image == nil {
			u.Image = ex.Image
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *Repo) CreateVenue(ctx context.Context, v domain.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ex := range r.venues {
		if v.PlaceID != nil && ex.PlaceID != nil && *ex.PlaceID == *v.PlaceID {
			return domain.ErrConflict
		}
	}
	v.CreatorName = nil
	r.venues = append(r.venues, v)
	return nil
}

func (r *Repo) UpsertReview(ctx context.Context, rv domain.Review) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.venueIndex(rv.VenueID) < 0 {
		return false, domain.ErrNotFound
	}
	for i, ex := range r.reviews {
		if ex.VenueID == rv.VenueID && ex.UserID == rv.UserID {
			ex.Terrace, ex.Tapa, ex.Price, ex.UpdatedAt = rv.Terrace, rv.Tapa, rv.Price, rv.UpdatedAt
			r.reviews[i] = ex
			return false, nil
		}
	}
	rv.UserName, rv.UserImage = nil, nil
	r.reviews = append(r.reviews, rv)
	return true, nil
}

func (r *Repo) venueIndex(id string) int {
	for i, v := range r.venues {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func (r *Repo) withCreator(v domain.Venue) domain.Venue {
	v.CreatorName = r.users[v.CreatedBy].Name
	return v
}

func (r *Repo) withUser(rv domain.Review) domain.Review {
	u := r.users[rv.UserID]
	rv.UserName, rv.UserImage = u.Name, u.Image
	return rv
}

func (r *Repo) GetVenue(ctx context.Context, id string) (domain.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.venueIndex(id); i >= 0 {
		return r.withCreator(r.venues[i]), nil
	}
	return domain.Venue{}, domain.ErrNotFound
}

func (r *Repo) FindByPlaceID(ctx context.Context, placeID string) (domain.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.venues {
		if v.PlaceID != nil && *v.PlaceID == placeID {
			return r.withCreator(v), nil
		}
	}
	return domain.Venue{}, domain.ErrNotFound
}

func (r *Repo) ListVenues(ctx context.Context, q domain.VenuesQuery) ([]domain.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Venue
	for i := len(r.venues) - 1; i >= 0; i-- { // newest first
		v := r.venues[i]
		if q.PlaceID != nil && (v.PlaceID == nil || *v.PlaceID != *q.PlaceID) {
			continue
		}
		out = append(out, r.withCreator(v))
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (r *Repo) ListReviews(ctx context.Context, venueID string) ([]domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Review
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if rv := r.reviews[i]; rv.VenueID == venueID {
			out = append(out, r.withUser(rv))
		}
	}
	return out, nil
}

func (r *Repo) GetReview(ctx context.Context, venueID, userID string) (domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rv := range r.reviews {
		if rv.VenueID == venueID && rv.UserID == userID {
			return r.withUser(rv), nil
		}
	}
	return domain.Review{}, domain.ErrNotFound
}

func (r *Repo) ReviewFactsByVenue(ctx context.Context, ids []string) (map[string][]domain.ReviewFacts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[string][]domain.ReviewFacts, len(ids))
	for _, rv := range r.reviews {
		if want[rv.VenueID] {
			out[rv.VenueID] = append(out[rv.VenueID], rv.Facts())
		}
	}
	return out, nil
}
