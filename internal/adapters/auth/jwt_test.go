package auth_test

import (
	"errors"
	"testing"
	"time"

	"madrid_barmap/internal/adapters/auth"
	"madrid_barmap/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestIssueAndVerify(t *testing.T) {
	a := auth.NewJWTAuthenticator("s3cret", "barmap", "barmap-api")
	tok, err := a.Issue(domain.User{ID: "u-1", Name: ptr("Lola")}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	u, err := a.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if u.ID != "u-1" || u.Name == nil || *u.Name != "Lola" || u.Image != nil {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestVerify_Rejects(t *testing.T) {
	a := auth.NewJWTAuthenticator("s3cret", "barmap", "barmap-api")

	expired, _ := a.Issue(domain.User{ID: "u-1"}, -time.Minute)
	otherKey, _ := auth.NewJWTAuthenticator("other", "barmap", "barmap-api").Issue(domain.User{ID: "u-1"}, time.Hour)
	otherAud, _ := auth.NewJWTAuthenticator("s3cret", "barmap", "elsewhere").Issue(domain.User{ID: "u-1"}, time.Hour)
	noSub, _ := a.Issue(domain.User{}, time.Hour)

	for name, tok := range map[string]string{
		"garbage":   "not-a-token",
		"expired":   expired,
		"other key": otherKey,
		"other aud": otherAud,
		"no sub":    noSub,
	} {
		if _, err := a.Verify(tok); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", name, err)
		}
	}
}

func TestVerify_EmptySecret(t *testing.T) {
	a := auth.NewJWTAuthenticator("", "barmap", "barmap-api")
	if _, err := a.Verify("anything"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
