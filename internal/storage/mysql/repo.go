package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"madrid_barmap/internal/domain"
)

const (
	errDuplicateKey = 1062
	errNoReferenced = 1452
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptrNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func mysqlErrNo(err error) uint16 {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, upsertUserSQL, u.ID, valStr(u.Name), valStr(u.Image))
	return err
}

func (r *Repo) CreateVenue(ctx context.Context, v domain.Venue) error {
	_, err := r.db.ExecContext(ctx, insertVenueSQL,
		v.ID,
		v.Name,
		v.Lat,
		v.Lon,
		valStr(v.Address),
		valStr(v.PlaceID),
		v.CreatedBy,
		v.CreatedAt.UTC(),
	)
	if mysqlErrNo(err) == errDuplicateKey && v.PlaceID != nil {
		return fmt.Errorf("venue with place id %q: %w", *v.PlaceID, domain.ErrConflict)
	}
	return err
}

func (r *Repo) UpsertReview(ctx context.Context, rv domain.Review) (bool, error) {
	res, err := r.db.ExecContext(ctx, upsertReviewSQL,
		rv.ID,
		rv.VenueID,
		rv.UserID,
		string(rv.Terrace),
		string(rv.Tapa),
		rv.Price,
		rv.CreatedAt.UTC(),
		rv.UpdatedAt.UTC(),
	)
	if err != nil {
		if mysqlErrNo(err) == errNoReferenced {
			return false, fmt.Errorf("venue %s: %w", rv.VenueID, domain.ErrNotFound)
		}
		return false, err
	}
	// MySQL reports 1 for an insert and 2 for an update of an existing row.
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(s rowScanner) (domain.Venue, error) {
	var v domain.Venue
	var address, placeID, creator sql.NullString
	if err := s.Scan(
		&v.ID,
		&v.Name,
		&v.Lat, &v.Lon,
		&address,
		&placeID,
		&v.CreatedBy,
		&v.CreatedAt,
		&creator,
	); err != nil {
		return domain.Venue{}, err
	}
	v.Address = ptrNull(address)
	v.PlaceID = ptrNull(placeID)
	v.CreatorName = ptrNull(creator)
	return v, nil
}

func scanReview(s rowScanner) (domain.Review, error) {
	var rv domain.Review
	var terrace, tapa string
	var name, image sql.NullString
	if err := s.Scan(
		&rv.ID,
		&rv.VenueID,
		&rv.UserID,
		&terrace,
		&tapa,
		&rv.Price,
		&rv.CreatedAt,
		&rv.UpdatedAt,
		&name,
		&image,
	); err != nil {
		return domain.Review{}, err
	}
	// enum columns only ever hold valid labels
	rv.Terrace = domain.Terrace(terrace)
	rv.Tapa = domain.Tapa(tapa)
	rv.UserName = ptrNull(name)
	rv.UserImage = ptrNull(image)
	return rv, nil
}

func (r *Repo) GetVenue(ctx context.Context, id string) (domain.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx, getVenueSQL, id))
	if err == sql.ErrNoRows {
		return domain.Venue{}, domain.ErrNotFound
	}
	return v, err
}

func (r *Repo) FindByPlaceID(ctx context.Context, placeID string) (domain.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx, getVenueByPlaceSQL, placeID))
	if err == sql.ErrNoRows {
		return domain.Venue{}, domain.ErrNotFound
	}
	return v, err
}

func (r *Repo) ListVenues(ctx context.Context, q domain.VenuesQuery) ([]domain.Venue, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT` + venueColumns)
	var args []any
	if q.PlaceID != nil {
		sb.WriteString("WHERE v.place_id = ?\n")
		args = append(args, *q.PlaceID)
	}
	sb.WriteString("ORDER BY v.created_at DESC, v.id DESC")
	if q.Limit > 0 {
		sb.WriteString("\nLIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) ListReviews(ctx context.Context, venueID string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) GetReview(ctx context.Context, venueID, userID string) (domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, getReviewSQL, venueID, userID))
	if err == sql.ErrNoRows {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) ReviewFactsByVenue(ctx context.Context, venueIDs []string) (map[string][]domain.ReviewFacts, error) {
	out := make(map[string][]domain.ReviewFacts, len(venueIDs))
	if len(venueIDs) == 0 {
		return out, nil
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(venueIDs)), ",")
	args := make([]any, 0, len(venueIDs))
	for _, id := range venueIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, reviewFactsPrefix+marks+reviewFactsSuffix, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var venueID, terrace, tapa string
		var f domain.ReviewFacts
		if err := rows.Scan(&venueID, &terrace, &tapa, &f.Price); err != nil {
			return nil, err
		}
		f.Terrace = domain.Terrace(terrace)
		f.Tapa = domain.Tapa(tapa)
		out[venueID] = append(out[venueID], f)
	}
	return out, rows.Err()
}
