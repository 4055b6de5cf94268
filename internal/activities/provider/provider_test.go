package provider

import (
	"context"
	"testing"

	"educare/platform/apperr"
)

func TestEmbeddedCatalogLoads(t *testing.T) {
	p, err := NewStaticProvider()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	all, _ := p.Recommend(context.Background(), RecommendationQuery{Limit: maxLimit})
	if len(all) < 10 {
		t.Fatalf("expected the full catalog, got %d entries", len(all))
	}
}

func TestRecommendFiltersByAgeAndCategory(t *testing.T) {
	p, err := ParseCatalog([]byte(`
activities:
  - {id: a, title: A, category: motor, min_age_months: 0, max_age_months: 12}
  - {id: b, title: B, category: Motor, min_age_months: 6, max_age_months: 24}
  - {id: c, title: C, category: language, min_age_months: 6, max_age_months: 24}
`))
	if err != nil {
		t.Fatal(err)
	}

	age := 18
	got, _ := p.Recommend(context.Background(), RecommendationQuery{AgeMonths: &age, Category: "motor"})
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected only b, got %+v", got)
	}

	got, _ = p.Recommend(context.Background(), RecommendationQuery{Limit: 2})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("expected first two in catalog order, got %+v", got)
	}

	if _, err := p.Get(context.Background(), "zzz"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseCatalogRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"duplicate":  "activities:\n  - {id: a, title: A}\n  - {id: a, title: B}\n",
		"age range":  "activities:\n  - {id: a, title: A, min_age_months: 10, max_age_months: 2}\n",
		"missing id": "activities:\n  - {title: A}\n",
		"not yaml":   "activities: [",
	}
	for name, doc := range cases {
		if _, err := ParseCatalog([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestEffectiveLimit(t *testing.T) {
	for in, want := range map[int]int{0: defaultLimit, -3: defaultLimit, 7: 7, 500: maxLimit} {
		if got := (RecommendationQuery{Limit: in}).EffectiveLimit(); got != want {
			t.Errorf("limit %d: got %d, want %d", in, got, want)
		}
	}
}
