package services

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortNone       SortKey = ""
	SortName       SortKey = "name"
	SortTime       SortKey = "time"
	SortEvaluation SortKey = "evaluation"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortNone, SortName, SortTime, SortEvaluation:
		return true
	}
	return false
}

// Sorter carries the locale used for name ordering.
type Sorter struct {
	Locale language.Tag
}

// DefaultSorter orders names the way a Japanese user expects.
var DefaultSorter = Sorter{Locale: language.Japanese}

// hasAllTags is the AND tag filter shared with the gacha draw.
func hasAllTags(g *AnnotatedGame, tags []string) bool {
	for _, t := range tags {
		if !g.HasTag(t) {
			return false
		}
	}
	return true
}

func matchesQuery(fold cases.Caser, g *AnnotatedGame, q string) bool {
	if strings.Contains(fold.String(g.Name), q) {
		return true
	}
	for _, t := range g.Tags {
		if strings.Contains(fold.String(t), q) {
			return true
		}
	}
	return false
}

// FilterAndSort keeps games matching query (case-insensitive substring of the
// name or any tag) that carry every tag in tags, then orders them by key.
// The input slice is not modified.
func (s Sorter) FilterAndSort(games []AnnotatedGame, query string, tags []string, key SortKey) []AnnotatedGame {
	// casers are stateful
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))
	out := make([]AnnotatedGame, 0, len(games))
	for i := range games {
		g := &games[i]
		if q != "" && !matchesQuery(fold, g, q) {
			continue
		}
		if !hasAllTags(g, tags) {
			continue
		}
		out = append(out, *g)
	}

	switch key {
	case SortName:
		// collators are not safe for concurrent use
		c := collate.New(s.Locale)
		slices.SortStableFunc(out, func(a, b AnnotatedGame) int {
			return c.CompareString(a.Name, b.Name)
		})
	case SortTime:
		slices.SortStableFunc(out, func(a, b AnnotatedGame) int {
			return a.PlayTimeMinutes - b.PlayTimeMinutes
		})
	case SortEvaluation:
		slices.SortStableFunc(out, func(a, b AnnotatedGame) int {
			switch {
			case a.AverageEvaluation > b.AverageEvaluation:
				return -1
			case a.AverageEvaluation < b.AverageEvaluation:
				return 1
			}
			return 0
		})
	}
	return out
}

// FilterAndSort uses DefaultSorter.
func FilterAndSort(games []AnnotatedGame, query string, tags []string, key SortKey) []AnnotatedGame {
	return DefaultSorter.FilterAndSort(games, query, tags, key)
}

// CollectTags returns the distinct tags across games in collation order.
func (s Sorter) CollectTags(games []AnnotatedGame) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, g := range games {
		for _, t := range g.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	collate.New(s.Locale).SortStrings(out)
	if out == nil {
		out = []string{}
	}
	return out
}
