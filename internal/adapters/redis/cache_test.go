package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "madrid_barmap/internal/adapters/redis"
	"madrid_barmap/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0, "barmap")
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var miss domain.PlaceDetails
	ok, err := c.Get(ctx, "place:p1", &miss)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := domain.PlaceDetails{PlaceID: "p1", Name: "Casa Labra", Coords: &domain.Coords{Lat: 40.417, Lon: -3.705}}
	if err := c.Set(ctx, "place:p1", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("barmap:place:p1") {
		t.Fatalf("expected prefixed key in redis, have %v", mr.Keys())
	}

	var out domain.PlaceDetails
	ok, err = c.Get(ctx, "place:p1", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out.Name != "Casa Labra" || out.Coords == nil || out.Coords.Lon != -3.705 {
		t.Fatalf("unexpected value: %+v", out)
	}

	if err := c.Del(ctx, "place:p1"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "place:p1", &out); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestCache_TTLExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "search:pepe", []domain.PlacePrediction{{PlaceID: "a"}}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(31 * time.Second)

	var out []domain.PlacePrediction
	if ok, _ := c.Get(ctx, "search:pepe", &out); ok {
		t.Fatalf("expected key to expire")
	}
}

func TestCache_UndecodableEntry(t *testing.T) {
	c, mr := newCache(t)
	if err := mr.Set("barmap:place:bad", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var out domain.PlaceDetails
	ok, err := c.Get(context.Background(), "place:bad", &out)
	if !ok || err == nil {
		t.Fatalf("expected hit with decode error, got ok=%v err=%v", ok, err)
	}
}
