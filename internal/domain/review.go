package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Terrace string

const (
	TerraceNone  Terrace = "NONE"
	TerraceSmall Terrace = "SMALL"
	TerraceLarge Terrace = "LARGE"
)

func ParseTerrace(s string) (Terrace, error) {
	switch t := Terrace(s); t {
	case TerraceNone, TerraceSmall, TerraceLarge:
		return t, nil
	}
	return "", fmt.Errorf("unknown terrace %q", s)
}

type Tapa string

const (
	TapaNone     Tapa = "NONE"
	TapaRegular  Tapa = "REGULAR"
	TapaGenerous Tapa = "GENEROUS"
)

func ParseTapa(s string) (Tapa, error) {
	switch t := Tapa(s); t {
	case TapaNone, TapaRegular, TapaGenerous:
		return t, nil
	}
	return "", fmt.Errorf("unknown tapa %q", s)
}

// MaxPrice is the upper bound accepted for a reference drink price.
var MaxPrice = decimal.RequireFromString("999.99")

type Review struct {
	ID        string
	VenueID   string
	UserID    string
	Terrace   Terrace
	Tapa      Tapa
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time

	// read side only
	UserName  *string
	UserImage *string
}

// ReviewFacts is the part of a review the aggregator looks at.
type ReviewFacts struct {
	Terrace Terrace
	Tapa    Tapa
	Price   decimal.Decimal
}

func (r Review) Facts() ReviewFacts {
	return ReviewFacts{Terrace: r.Terrace, Tapa: r.Tapa, Price: r.Price}
}

// NewReview is the payload a user submits for a venue.
type NewReview struct {
	Terrace string           `json:"terrace" validate:"required,terrace"`
	Tapa    string           `json:"tapa" validate:"required,tapa"`
	Price   *decimal.Decimal `json:"price" validate:"required,price"`
}
