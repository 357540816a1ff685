// internal/adapters/places/client.go
package places

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"madrid_barmap/internal/adapters/observability"
	"madrid_barmap/internal/domain"
)

const detailFields = "place_id,name,formatted_address,geometry,rating,user_ratings_total,formatted_phone_number,website"

// Bias narrows autocomplete results to an area.
type Bias struct {
	Location string // "lat,lng"
	Radius   int    // meters
	Types    string // pipe separated
}

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
	bias Bias
}

func New(base, key string, rps int, bias Bias) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
		bias: bias,
	}, nil
}

// ---- Public API ----

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Predictions  []struct {
		Description          string `json:"description"`
		PlaceID              string `json:"place_id"`
		StructuredFormatting struct {
			MainText      string `json:"main_text"`
			SecondaryText string `json:"secondary_text"`
		} `json:"structured_formatting"`
	} `json:"predictions"`
}

func (c *Client) Autocomplete(ctx context.Context, query string) ([]domain.PlacePrediction, error) {
	q := url.Values{}
	q.Set("input", query)
	if c.bias.Location != "" {
		q.Set("location", c.bias.Location)
	}
	if c.bias.Radius > 0 {
		q.Set("radius", strconv.Itoa(c.bias.Radius))
	}
	if c.bias.Types != "" {
		q.Set("types", c.bias.Types)
	}

	var resp autocompleteResponse
	if err := c.get(ctx, "autocomplete", q, &resp); err != nil {
		return nil, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return nil, err
	}

	out := make([]domain.PlacePrediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		out = append(out, domain.PlacePrediction{
			PlaceID:       p.PlaceID,
			Description:   p.Description,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		})
	}
	return out, nil
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         *struct {
			Location domain.Coords `json:"location"`
		} `json:"geometry"`
		Rating       *float64 `json:"rating"`
		RatingsTotal *int     `json:"user_ratings_total"`
		Phone        string   `json:"formatted_phone_number"`
		Website      string   `json:"website"`
	} `json:"result"`
}

func (c *Client) Details(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", detailFields)

	var resp detailsResponse
	if err := c.get(ctx, "details", q, &resp); err != nil {
		return domain.PlaceDetails{}, err
	}
	if err := checkStatus(resp.Status, resp.ErrorMessage); err != nil {
		return domain.PlaceDetails{}, err
	}
	if resp.Status == "ZERO_RESULTS" {
		return domain.PlaceDetails{}, domain.ErrNotFound
	}

	r := resp.Result
	d := domain.PlaceDetails{
		PlaceID:          r.PlaceID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Rating:           r.Rating,
		RatingsTotal:     r.RatingsTotal,
		Phone:            r.Phone,
		Website:          r.Website,
	}
	if d.PlaceID == "" {
		d.PlaceID = placeID
	}
	if r.Geometry != nil {
		loc := r.Geometry.Location
		d.Coords = &loc
	}
	return d, nil
}

// ---- Internals ----

var ErrRateLimited = errors.New("places: over query limit")

// checkStatus maps the API's in-body status to errors.
func checkStatus(status, msg string) error {
	switch status {
	case "OK", "ZERO_RESULTS":
		return nil
	case "NOT_FOUND", "INVALID_REQUEST":
		return domain.ErrNotFound
	case "REQUEST_DENIED":
		return fmt.Errorf("places: %s: %w", msg, domain.ErrForbidden)
	case "OVER_QUERY_LIMIT":
		return ErrRateLimited
	}
	if msg == "" {
		msg = "unexpected status"
	}
	return fmt.Errorf("places: %s (%s)", msg, status)
}

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	q.Set("key", c.key)
	u := fmt.Sprintf("%s/%s/json?%s", c.base, endpoint, q.Encode())

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "madrid-barmap/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("places", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// url.Error carries the key in its message; keep only the cause
			var ue *url.Error
			if errors.As(err, &ue) {
				err = ue.Err
			}
			log.Debug().Str("endpoint", endpoint).Str("err_type", observability.LabelErr(err)).Int("attempt", i).Msg("places request failed")
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("places", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrNotFound

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return domain.ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt and adds up to 50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
