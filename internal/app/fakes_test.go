package app_test

import (
	"context"
	"encoding/json"
	"sort"

	"madrid_barmap/internal/domain"
	"madrid_barmap/internal/storage/memory"
)

// ---- fakes ----

type fakeRepo struct {
	*memory.Repo
	listErr error
}

func newFakeRepo() *fakeRepo { return &fakeRepo{Repo: memory.New()} }

func (f *fakeRepo) ListVenues(ctx context.Context, q domain.VenuesQuery) ([]domain.Venue, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Repo.ListVenues(ctx, q)
}

// fakeCache round-trips through JSON like the redis adapter does.
type fakeCache struct {
	store map[string][]byte
	dels  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels++
	delete(c.store, key)
	return nil
}

func (c *fakeCache) keys() []string {
	var out []string
	for k := range c.store {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type fakePlaces struct {
	calls       int
	predictions []domain.PlacePrediction
	details     map[string]domain.PlaceDetails
	err         error
}

func (p *fakePlaces) Autocomplete(ctx context.Context, query string) ([]domain.PlacePrediction, error) {
	p.calls++
	return p.predictions, p.err
}

func (p *fakePlaces) Details(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	p.calls++
	if p.err != nil {
		return domain.PlaceDetails{}, p.err
	}
	d, ok := p.details[placeID]
	if !ok {
		return domain.PlaceDetails{}, domain.ErrNotFound
	}
	return d, nil
}

func ptr[T any](v T) *T { return &v }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
