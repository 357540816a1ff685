package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Stats summarises the reviews of one venue. It is derived on every read.
type Stats struct {
	ReviewCount         int
	RepresentativePrice decimal.Decimal
	ModalTerrace        *Terrace
	ModalTapa           *Tapa
}

// ModalCategory returns the most frequent value. On ties the value that
// reached the leading count first wins. ok is false for empty input.
func ModalCategory[T comparable](values []T) (mode T, ok bool) {
	if len(values) == 0 {
		return mode, false
	}
	counts := make(map[T]int, 4)
	best := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > best {
			best = counts[v]
			mode = v
		}
	}
	return mode, true
}

var two = decimal.NewFromInt(2)

// RepresentativePrice is the median of prices rounded to cents, or zero
// when there are none. The input slice is left untouched.
func RepresentativePrice(prices []decimal.Decimal) decimal.Decimal {
	n := len(prices)
	if n == 0 {
		return decimal.Zero
	}
	sorted := slices.Clone(prices)
	slices.SortFunc(sorted, func(a, b decimal.Decimal) int { return a.Cmp(b) })

	mid := n / 2
	median := sorted[mid]
	if n%2 == 0 {
		median = sorted[mid-1].Add(sorted[mid]).Div(two)
	}
	return median.Round(2)
}

func Aggregate(reviews []ReviewFacts) Stats {
	terraces := make([]Terrace, 0, len(reviews))
	tapas := make([]Tapa, 0, len(reviews))
	prices := make([]decimal.Decimal, 0, len(reviews))
	for _, r := range reviews {
		terraces = append(terraces, r.Terrace)
		tapas = append(tapas, r.Tapa)
		prices = append(prices, r.Price)
	}

	st := Stats{
		ReviewCount:         len(reviews),
		RepresentativePrice: RepresentativePrice(prices),
	}
	if t, ok := ModalCategory(terraces); ok {
		st.ModalTerrace = &t
	}
	if t, ok := ModalCategory(tapas); ok {
		st.ModalTapa = &t
	}
	return st
}
