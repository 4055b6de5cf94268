// Package provider serves activity recommendations. The static catalog and
// the database table are interchangeable behind Provider.
package provider

import (
	"context"
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"educare/platform/apperr"

	"gopkg.in/yaml.v3"
)

// Sources accepted by New.
const (
	SourceStatic   = "static"
	SourceDatabase = "database"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

//go:embed catalog.yaml
var catalogYAML []byte

// Activity is a recommendable activity.
type Activity struct {
	ID              string `yaml:"id" json:"id"`
	Title           string `yaml:"title" json:"title"`
	Description     string `yaml:"description" json:"description"`
	Category        string `yaml:"category" json:"category"`
	MinAgeMonths    int    `yaml:"min_age_months" json:"min_age_months"`
	MaxAgeMonths    int    `yaml:"max_age_months" json:"max_age_months"`
	DurationMinutes int    `yaml:"duration_minutes" json:"duration_minutes"`
}

// SuitsAge reports whether the activity fits a child of ageMonths.
func (a Activity) SuitsAge(ageMonths int) bool {
	return ageMonths >= a.MinAgeMonths && ageMonths <= a.MaxAgeMonths
}

// RecommendationQuery narrows recommendations. Zero values mean no filter.
type RecommendationQuery struct {
	AgeMonths *int
	Category  string
	Limit     int
}

// EffectiveLimit clamps Limit to the accepted range.
func (q RecommendationQuery) EffectiveLimit() int {
	switch {
	case q.Limit <= 0:
		return defaultLimit
	case q.Limit > maxLimit:
		return maxLimit
	default:
		return q.Limit
	}
}

// Provider returns activities.
type Provider interface {
	Recommend(ctx context.Context, q RecommendationQuery) ([]Activity, error)
	Get(ctx context.Context, id string) (Activity, error)
}

// StaticProvider serves the catalog bundled with the binary.
type StaticProvider struct {
	activities []Activity
}

var _ Provider = (*StaticProvider)(nil)

type catalogFile struct {
	Activities []Activity `yaml:"activities"`
}

// NewStaticProvider loads the embedded catalog.
func NewStaticProvider() (*StaticProvider, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog builds a StaticProvider from a YAML document.
func ParseCatalog(data []byte) (*StaticProvider, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse activity catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Activities))
	for _, a := range file.Activities {
		if a.ID == "" || a.Title == "" {
			return nil, fmt.Errorf("activity catalog: entry without id or title")
		}
		if a.MinAgeMonths > a.MaxAgeMonths {
			return nil, fmt.Errorf("activity catalog: %s has min age above max age", a.ID)
		}
		if _, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("activity catalog: duplicate id %s", a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return &StaticProvider{activities: file.Activities}, nil
}

// Recommend filters the catalog in catalog order.
func (p *StaticProvider) Recommend(_ context.Context, q RecommendationQuery) ([]Activity, error) {
	limit := q.EffectiveLimit()
	out := make([]Activity, 0, limit)
	for _, a := range p.activities {
		if q.AgeMonths != nil && !a.SuitsAge(*q.AgeMonths) {
			continue
		}
		if q.Category != "" && !strings.EqualFold(a.Category, q.Category) {
			continue
		}
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Get returns one catalog entry.
func (p *StaticProvider) Get(_ context.Context, id string) (Activity, error) {
	i := slices.IndexFunc(p.activities, func(a Activity) bool { return a.ID == id })
	if i < 0 {
		return Activity{}, apperr.NotFound("activity not found")
	}
	return p.activities[i], nil
}
