package query

import (
	"strconv"
	"strings"
)

// Predicate is a reusable SQL condition with `?` placeholders.
// An empty SQL predicate matches everything.
type Predicate struct {
	SQL  string
	Args []any
}

// Statement accumulates WHERE conditions and their arguments and renders
// them with PostgreSQL `$n` placeholders.
type Statement struct {
	conds []string
	args  []any
}

// NewStatement returns an empty statement.
func NewStatement() *Statement {
	return &Statement{}
}

// Where adds a condition. Each `?` in expr is bound to the next argument.
func (s *Statement) Where(expr string, args ...any) *Statement {
	var b strings.Builder
	next := 0
	for _, r := range expr {
		if r == '?' && next < len(args) {
			s.args = append(s.args, args[next])
			next++
			b.WriteString(s.placeholder())
			continue
		}
		b.WriteRune(r)
	}
	s.conds = append(s.conds, b.String())
	return s
}

// Add adds a predicate produced elsewhere (e.g. a row-level scope).
func (s *Statement) Add(p Predicate) *Statement {
	if strings.TrimSpace(p.SQL) == "" {
		return s
	}
	return s.Where(p.SQL, p.Args...)
}

// Apply adds the spec's equality filters and search condition.
// Filters compare the column's text form so malformed values simply match
// nothing instead of failing the cast.
func (s *Statement) Apply(spec Spec) *Statement {
	for _, f := range spec.Filters {
		s.Where("CAST("+f.Column+" AS text) = ?", f.Value)
	}

	if spec.Search != "" && len(spec.SearchFields) > 0 {
		s.args = append(s.args, "%"+EscapeLike(spec.Search)+"%")
		ph := s.placeholder()
		parts := make([]string, 0, len(spec.SearchFields))
		for _, field := range spec.SearchFields {
			parts = append(parts, "COALESCE("+field+", '') ILIKE "+ph)
		}
		s.conds = append(s.conds, "("+strings.Join(parts, " OR ")+")")
	}
	return s
}

// WhereSQL renders the WHERE clause, or "" when there are no conditions.
func (s *Statement) WhereSQL() string {
	if len(s.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(s.conds, " AND ")
}

// Args returns a copy of the bound arguments.
func (s *Statement) Args() []any {
	return append([]any(nil), s.args...)
}

// OrderSQL renders ORDER BY for the spec. tiebreak (usually the primary
// key) keeps paging deterministic when sort values collide.
func (s *Statement) OrderSQL(spec Spec, tiebreak string) string {
	order := spec.Order
	if order != Asc {
		order = Desc
	}
	clause := "ORDER BY " + spec.SortColumn + " " + string(order)
	if tiebreak != "" && tiebreak != spec.SortColumn {
		clause += ", " + tiebreak + " " + string(order)
	}
	return clause
}

// PageSQL renders LIMIT/OFFSET and returns the full argument list
// (conditions followed by limit and offset).
func (s *Statement) PageSQL(spec Spec) (string, []any) {
	args := s.Args()
	limitPH := "$" + strconv.Itoa(len(args)+1)
	offsetPH := "$" + strconv.Itoa(len(args)+2)
	args = append(args, spec.Limit, spec.Offset())
	return "LIMIT " + limitPH + " OFFSET " + offsetPH, args
}

func (s *Statement) placeholder() string {
	return "$" + strconv.Itoa(len(s.args))
}

// EscapeLike escapes LIKE metacharacters so user input matches literally.
func EscapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}
