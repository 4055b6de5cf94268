package phone

import (
	"errors"
	"testing"
)

func TestNormalizeE164(t *testing.T) {
	got, err := NormalizeE164(" +44 20 7946 0958 ", "")
	if err != nil || got != "+442079460958" {
		t.Fatalf("expected +442079460958, got %q (%v)", got, err)
	}

	got, err = NormalizeE164("020 7946 0958", "gb")
	if err != nil || got != "+442079460958" {
		t.Fatalf("expected national number to resolve in region, got %q (%v)", got, err)
	}

	if got, err := NormalizeE164("   ", "GB"); err != nil || got != "" {
		t.Fatalf("expected empty result for blank input, got %q (%v)", got, err)
	}

	if _, err := NormalizeE164("not a number", "GB"); !errors.Is(err, ErrInvalidNumber) {
		t.Fatalf("expected ErrInvalidNumber, got %v", err)
	}
}

func TestRegionFromLocale(t *testing.T) {
	cases := map[string]string{
		"en-GB": "GB",
		"nl_NL": "NL",
		"en":    "",
		"":      "",
	}
	for in, want := range cases {
		if got := RegionFromLocale(in); got != want {
			t.Fatalf("RegionFromLocale(%q) = %q, want %q", in, got, want)
		}
	}
}
