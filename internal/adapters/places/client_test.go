package places_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"madrid_barmap/internal/adapters/places"
	"madrid_barmap/internal/domain"
)

var madrid = places.Bias{Location: "40.4168,-3.7038", Radius: 20000, Types: "bar|cafe"}

func TestClient_Autocomplete_SendsBiasAndMaps(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"predictions": []any{map[string]any{
				"place_id":    "abc",
				"description": "Bar Pepe, Calle Mayor, Madrid",
				"structured_formatting": map[string]any{
					"main_text":      "Bar Pepe",
					"secondary_text": "Calle Mayor, Madrid",
				},
			}},
		})
	}))
	defer ts.Close()

	cl, err := places.New(ts.URL, "test-key", 100, madrid) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := cl.Autocomplete(ctx, "pepe")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotPath != "/autocomplete/json" {
		t.Fatalf("path: %s", gotPath)
	}
	for k, want := range map[string]string{"input": "pepe", "key": "test-key", "location": madrid.Location, "radius": "20000", "types": "bar|cafe"} {
		if gotQuery[k] != want {
			t.Fatalf("query %s = %q; want %q", k, gotQuery[k], want)
		}
	}
	if len(got) != 1 || got[0].PlaceID != "abc" || got[0].MainText != "Bar Pepe" {
		t.Fatalf("unexpected predictions: %+v", got)
	}
}

func TestClient_Autocomplete_ZeroResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","predictions":[]}`))
	}))
	defer ts.Close()

	cl, _ := places.New(ts.URL, "test-key", 100, madrid)
	got, err := cl.Autocomplete(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no predictions, got %d", len(got))
	}
}

func TestClient_Details_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			_, _ = w.Write([]byte(`{"status":"OK","result":{"place_id":"p1","name":"La Venencia",
				"formatted_address":"C. de Echegaray, 7, Madrid",
				"geometry":{"location":{"lat":40.4153,"lng":-3.6993}},"rating":4.6}}`))
		}
	}))
	defer ts.Close()

	cl, err := places.New(ts.URL, "test-key", 100, madrid)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d, err := cl.Details(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.Name != "La Venencia" || d.Coords == nil || d.Coords.Lat != 40.4153 || d.Coords.Lon != -3.6993 {
		t.Fatalf("unexpected details: %+v", d)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Details_StatusMapping(t *testing.T) {
	cases := []struct {
		body string
		want error
	}{
		{`{"status":"NOT_FOUND"}`, domain.ErrNotFound},
		{`{"status":"INVALID_REQUEST"}`, domain.ErrNotFound},
		{`{"status":"REQUEST_DENIED","error_message":"bad key"}`, domain.ErrForbidden},
		{`{"status":"OVER_QUERY_LIMIT"}`, places.ErrRateLimited},
	}
	for _, tc := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(tc.body))
		}))
		cl, _ := places.New(ts.URL, "test-key", 100, madrid)
		_, err := cl.Details(context.Background(), "x")
		ts.Close()
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v; want %v", tc.body, err, tc.want)
		}
	}
}

func TestClient_HTTP404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := places.New(ts.URL, "test-key", 100, madrid)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.Details(ctx, "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := places.New("http://example", "", 1, places.Bias{}); err == nil {
		t.Fatalf("expected error without key")
	}
}
