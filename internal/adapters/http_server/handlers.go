// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"madrid_barmap/internal/app"
	"madrid_barmap/internal/domain"
)

type Handlers struct {
	Q    *app.QueryService
	C    *app.CommandService
	P    *app.PlacesService
	Auth TokenVerifier
}

type problem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/api", func(r chi.Router) {
		r.Get("/bars", h.listBars)
		r.Get("/bars/{id}", h.getBar)
		r.Get("/places/search", h.searchPlaces)
		r.Get("/places/{id}", h.getPlace)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser(h.Auth))
			r.Post("/bars", h.createBar)
			r.Post("/bars/{id}/reviews", h.submitReview)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors to problem responses. upstream marks calls
// whose unexpected failures come from the place catalogue.
func writeError(w http.ResponseWriter, r *http.Request, err error, upstream bool) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblemBody(w, problem{Type: "about:blank", Title: "Invalid input", Status: http.StatusBadRequest, Errors: ve.Fields})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", "a bar for this place already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
	case upstream:
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("place catalogue failure")
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "place catalogue unavailable")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached writes v as JSON with a weak ETag, or 304 when the client has it.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &domain.ValidationError{Fields: map[string]string{"body": err.Error()}}
	}
	return nil
}

// ---- bars ----

func (h *Handlers) listBars(w http.ResponseWriter, r *http.Request) {
	vs, err := h.Q.ListVenues(r.Context(), r.URL.Query().Get("placeId"))
	if err != nil {
		writeError(w, r, err, false)
		return
	}
	out := make([]venueSummaryJSON, 0, len(vs))
	for _, v := range vs {
		out = append(out, toSummaryJSON(v))
	}
	writeCached(w, r, out)
}

func (h *Handlers) getBar(w http.ResponseWriter, r *http.Request) {
	d, err := h.Q.GetVenue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, false)
		return
	}
	writeCached(w, r, toDetailJSON(d))
}

func (h *Handlers) createBar(w http.ResponseWriter, r *http.Request) {
	var in domain.NewVenue
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, r, err, false)
		return
	}
	v, err := h.C.CreateVenue(r.Context(), UserFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, err, false)
		return
	}
	writeJSON(w, http.StatusCreated, toVenueJSON(v))
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	var in domain.NewReview
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, r, err, false)
		return
	}
	rv, created, err := h.C.SubmitReview(r.Context(), UserFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err, false)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toReviewJSON(rv))
}

// ---- places ----

func (h *Handlers) searchPlaces(w http.ResponseWriter, r *http.Request) {
	out, err := h.P.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, r, err, true)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) getPlace(w http.ResponseWriter, r *http.Request) {
	d, err := h.P.Details(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, true)
		return
	}
	writeCached(w, r, d)
}
