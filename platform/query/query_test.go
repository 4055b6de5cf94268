package query

import (
	"math"
	"net/url"
	"strings"
	"testing"
)

var childrenConfig = Config{
	Filters:      map[string]string{"team_id": "c.team_id", "level": "c.level"},
	SearchFields: []string{"c.name", "c.notes"},
	Sorts:        map[string]string{"name": "c.name", "created_at": "c.created_at"},
}

func TestParseDefaults(t *testing.T) {
	spec := Parse(url.Values{}, childrenConfig)

	if spec.Page != DefaultPage || spec.Limit != DefaultLimit {
		t.Fatalf("expected page=%d limit=%d, got page=%d limit=%d", DefaultPage, DefaultLimit, spec.Page, spec.Limit)
	}
	if spec.SortColumn != "created_at" {
		t.Fatalf("expected default sort created_at, got %q", spec.SortColumn)
	}
	if spec.Order != Desc {
		t.Fatalf("expected DESC, got %q", spec.Order)
	}
	if len(spec.Filters) != 0 || spec.Search != "" {
		t.Fatalf("expected no filters or search, got %+v", spec)
	}
}

func TestParseMalformedNumbersFallBack(t *testing.T) {
	spec := Parse(url.Values{"page": {"abc"}, "limit": {"-5"}}, childrenConfig)
	if spec.Page != 1 || spec.Limit != 20 {
		t.Fatalf("expected fallback page=1 limit=20, got page=%d limit=%d", spec.Page, spec.Limit)
	}
}

func TestParseHugePageKeepsOffsetPositive(t *testing.T) {
	cases := []struct {
		page  string
		limit string
	}{
		{"9223372036854775807", "20"},
		{"9223372036854775807", "1"},
		{"4611686018427387904", "100"},
	}
	for _, tc := range cases {
		spec := Parse(url.Values{"page": {tc.page}, "limit": {tc.limit}}, childrenConfig)
		if spec.Offset() < 0 {
			t.Fatalf("page=%s limit=%s: negative offset %d", tc.page, tc.limit, spec.Offset())
		}
		if p := NewPagination(40, spec); p.Pages != (40+spec.Limit-1)/spec.Limit || p.Page < 1 {
			t.Fatalf("page=%s limit=%s: unexpected pagination %+v", tc.page, tc.limit, p)
		}
		if got := Window([]int{1, 2, 3}, spec); len(got) != 0 {
			t.Fatalf("page=%s limit=%s: expected empty window, got %v", tc.page, tc.limit, got)
		}
	}
}

func TestParseCapsLimit(t *testing.T) {
	spec := Parse(url.Values{"limit": {"1000"}}, childrenConfig)
	if spec.Limit != MaxLimit {
		t.Fatalf("expected limit capped at %d, got %d", MaxLimit, spec.Limit)
	}
}

func TestParseUnknownSortFallsBack(t *testing.T) {
	spec := Parse(url.Values{"sort_by": {"password; DROP TABLE users"}, "sort_order": {"sideways"}}, childrenConfig)
	if spec.SortColumn != "created_at" {
		t.Fatalf("expected fallback sort, got %q", spec.SortColumn)
	}
	if spec.Order != Desc {
		t.Fatalf("expected fallback order DESC, got %q", spec.Order)
	}

	spec = Parse(url.Values{"sort_by": {"name"}, "sort_order": {"asc"}}, childrenConfig)
	if spec.SortColumn != "c.name" || spec.Order != Asc {
		t.Fatalf("expected c.name ASC, got %q %q", spec.SortColumn, spec.Order)
	}
}

func TestParseFiltersIgnoreUnknownKeys(t *testing.T) {
	spec := Parse(url.Values{
		"team_id": {"t-1"},
		"level":   {"  "},
		"role":    {"admin"},
	}, childrenConfig)

	if len(spec.Filters) != 1 {
		t.Fatalf("expected one filter, got %+v", spec.Filters)
	}
	if v, ok := spec.FilterValue("c.team_id"); !ok || v != "t-1" {
		t.Fatalf("expected team filter t-1, got %q %v", v, ok)
	}
}

func TestStatementRendersPlaceholdersInOrder(t *testing.T) {
	spec := Parse(url.Values{
		"team_id": {"t-1"},
		"search":  {"50%_off"},
		"page":    {"2"},
		"limit":   {"1"},
	}, childrenConfig)

	stmt := NewStatement().
		Where("c.deleted_at IS NULL").
		Add(Predicate{SQL: "c.parent_id = ?", Args: []any{"p-1"}}).
		Apply(spec)

	where := stmt.WhereSQL()
	want := "WHERE c.deleted_at IS NULL AND c.parent_id = $1 AND CAST(c.team_id AS text) = $2 AND (COALESCE(c.name, '') ILIKE $3 OR COALESCE(c.notes, '') ILIKE $3)"
	if where != want {
		t.Fatalf("unexpected where clause:\n got: %s\nwant: %s", where, want)
	}

	page, args := stmt.PageSQL(spec)
	if page != "LIMIT $4 OFFSET $5" {
		t.Fatalf("unexpected page clause %q", page)
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(args))
	}
	if args[2] != `%50\%\_off%` {
		t.Fatalf("expected escaped search pattern, got %v", args[2])
	}
	if args[3] != 1 || args[4] != 1 {
		t.Fatalf("expected limit=1 offset=1, got %v %v", args[3], args[4])
	}
}

func TestStatementWithoutConditions(t *testing.T) {
	stmt := NewStatement().Add(Predicate{})
	if stmt.WhereSQL() != "" {
		t.Fatalf("expected empty where, got %q", stmt.WhereSQL())
	}
	if len(stmt.Args()) != 0 {
		t.Fatalf("expected no args, got %v", stmt.Args())
	}
}

func TestOrderSQLAddsTiebreak(t *testing.T) {
	spec := Parse(url.Values{"sort_by": {"name"}, "sort_order": {"ASC"}}, childrenConfig)
	got := NewStatement().OrderSQL(spec, "c.id")
	if got != "ORDER BY c.name ASC, c.id ASC" {
		t.Fatalf("unexpected order clause %q", got)
	}
	if strings.Contains(NewStatement().OrderSQL(Spec{SortColumn: "c.id", Order: Desc}, "c.id"), ", c.id") {
		t.Fatal("tiebreak must not repeat the sort column")
	}
}

func TestNewPaginationPages(t *testing.T) {
	cases := []struct {
		total, limit, pages int
	}{
		{0, 20, 0},
		{3, 1, 3},
		{21, 20, 2},
		{40, 20, 2},
		{math.MaxInt, 1, math.MaxInt},
		{-1, 20, 0},
	}
	for _, tc := range cases {
		p := NewPagination(tc.total, Spec{Page: 1, Limit: tc.limit})
		if p.Pages != tc.pages {
			t.Fatalf("total=%d limit=%d: expected pages=%d, got %d", tc.total, tc.limit, tc.pages, p.Pages)
		}
	}
}

func TestWindow(t *testing.T) {
	items := []string{"a", "b", "c"}

	got := Window(items, Spec{Page: 2, Limit: 1})
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected [b], got %v", got)
	}
	if got := Window(items, Spec{Page: 5, Limit: 1}); len(got) != 0 {
		t.Fatalf("expected empty page, got %v", got)
	}
}
