package mysql

const upsertUserSQL = `
INSERT INTO users (id, name, image)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  name  = COALESCE(VALUES(name), users.name),
  image = COALESCE(VALUES(image), users.image)
`

const insertVenueSQL = `
INSERT INTO venues
  (id, name, lat, lon, address, place_id, created_by, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

// Keyed by uq_reviews_venue_user: a repeat submission overwrites the values
// and keeps id and created_at. updated_at is set explicitly so an identical
// resubmission still counts as an update (rows affected = 2).
const upsertReviewSQL = `
INSERT INTO reviews
  (id, venue_id, user_id, terrace, tapa, price, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  terrace    = VALUES(terrace),
  tapa       = VALUES(tapa),
  price      = VALUES(price),
  updated_at = VALUES(updated_at)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const venueColumns = `
  v.id, v.name, v.lat, v.lon, v.address, v.place_id, v.created_by, v.created_at, u.name
FROM venues v
LEFT JOIN users u ON u.id = v.created_by
`

const getVenueSQL = `SELECT` + venueColumns + `WHERE v.id = ?`

const getVenueByPlaceSQL = `SELECT` + venueColumns + `WHERE v.place_id = ?`

const reviewColumns = `
  r.id, r.venue_id, r.user_id, r.terrace, r.tapa, r.price, r.created_at, r.updated_at, u.name, u.image
FROM reviews r
LEFT JOIN users u ON u.id = r.user_id
`

const listReviewsSQL = `SELECT` + reviewColumns + `WHERE r.venue_id = ? ORDER BY r.created_at DESC, r.id DESC`

const getReviewSQL = `SELECT` + reviewColumns + `WHERE r.venue_id = ? AND r.user_id = ?`

// Facts come back in submission order; the modal tie-break depends on it.
const reviewFactsPrefix = `
SELECT venue_id, terrace, tapa, price
FROM reviews
WHERE venue_id IN (`

const reviewFactsSuffix = `)
ORDER BY venue_id, created_at, id`
