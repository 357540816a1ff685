package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"madrid_barmap/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decs(ss ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(ss))
	for _, s := range ss {
		out = append(out, dec(s))
	}
	return out
}

func TestModalCategory(t *testing.T) {
	cases := []struct {
		name   string
		in     []string
		want   string
		wantOK bool
	}{
		{"empty", nil, "", false},
		{"single", []string{"A"}, "A", true},
		{"majority", []string{"A", "B", "A"}, "A", true},
		{"tie keeps first leader", []string{"B", "A", "B", "A"}, "B", true},
		{"later value overtakes", []string{"B", "A", "A"}, "A", true},
		{"opaque labels", []string{"weird", "weird", "A"}, "weird", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := domain.ModalCategory(tc.in)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("ModalCategory(%v) = %q,%v; want %q,%v", tc.in, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestModalCategory_TypedEnums(t *testing.T) {
	got, ok := domain.ModalCategory([]domain.Tapa{domain.TapaNone, domain.TapaGenerous, domain.TapaNone, domain.TapaGenerous})
	if !ok || got != domain.TapaNone {
		t.Fatalf("got %q,%v; want NONE", got, ok)
	}
}

func TestRepresentativePrice(t *testing.T) {
	cases := []struct {
		name string
		in   []decimal.Decimal
		want string
	}{
		{"empty", nil, "0"},
		{"single", decs("2.50"), "2.5"},
		{"even takes mean of middles", decs("2.00", "3.00"), "2.5"},
		{"odd takes middle", decs("1.00", "2.00", "3.00"), "2"},
		{"unsorted input", decs("3.00", "1.00", "2.00", "10.00"), "2.5"},
		{"rounds half away from zero", decs("2.205", "2.205"), "2.21"},
		{"mean rounded at the end only", decs("1.005", "1.00"), "1"},
		{"outlier ignored", decs("1.50", "1.60", "999.99"), "1.6"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.RepresentativePrice(tc.in)
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("RepresentativePrice(%v) = %s; want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestRepresentativePrice_DoesNotMutateInput(t *testing.T) {
	in := decs("3", "1", "2")
	_ = domain.RepresentativePrice(in)
	if !in[0].Equal(dec("3")) || !in[1].Equal(dec("1")) {
		t.Fatalf("input reordered: %v", in)
	}
}

func TestAggregate_Empty(t *testing.T) {
	st := domain.Aggregate(nil)
	if st.ReviewCount != 0 || !st.RepresentativePrice.IsZero() || st.ModalTerrace != nil || st.ModalTapa != nil {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestAggregate_Scenario(t *testing.T) {
	st := domain.Aggregate([]domain.ReviewFacts{
		{Terrace: domain.TerraceSmall, Tapa: domain.TapaRegular, Price: dec("2.00")},
		{Terrace: domain.TerraceSmall, Tapa: domain.TapaNone, Price: dec("3.00")},
		{Terrace: domain.TerraceLarge, Tapa: domain.TapaRegular, Price: dec("2.50")},
	})
	if st.ReviewCount != 3 {
		t.Fatalf("count: %d", st.ReviewCount)
	}
	if !st.RepresentativePrice.Equal(dec("2.50")) {
		t.Fatalf("price: %s", st.RepresentativePrice)
	}
	if st.ModalTerrace == nil || *st.ModalTerrace != domain.TerraceSmall {
		t.Fatalf("terrace: %v", st.ModalTerrace)
	}
	if st.ModalTapa == nil || *st.ModalTapa != domain.TapaRegular {
		t.Fatalf("tapa: %v", st.ModalTapa)
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := domain.ParseTerrace("SMALL"); err != nil {
		t.Fatalf("SMALL: %v", err)
	}
	if _, err := domain.ParseTerrace("small"); err == nil {
		t.Fatalf("lowercase accepted")
	}
	if _, err := domain.ParseTapa("GENEROUS"); err != nil {
		t.Fatalf("GENEROUS: %v", err)
	}
	if _, err := domain.ParseTapa("SUPER_TAPA"); err == nil {
		t.Fatalf("legacy label accepted")
	}
}
