package validator

import (
	"errors"
	"testing"
)

type sample struct {
	Title string `json:"title" validate:"required,max=5"`
	Kind  string `form:"kind" validate:"omitempty,oneof=a b"`
}

func TestDetailsUsesJSONAndFormNames(t *testing.T) {
	v := New()

	err := v.Struct(sample{Kind: "c"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	details := Details(err)
	if len(details) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(details))
	}
	if details[0].Field != "title" || details[0].Rule != "required" {
		t.Fatalf("unexpected first error %+v", details[0])
	}
	if details[1].Field != "kind" || details[1].Rule != "oneof" {
		t.Fatalf("unexpected second error %+v", details[1])
	}
}

func TestSummaryFallsBackToErrorText(t *testing.T) {
	if got := Summary(errors.New("boom")); got != "boom" {
		t.Fatalf("expected plain message, got %q", got)
	}
}
