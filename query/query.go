// Package query remembers catalog searches and suggests previous ones.
package query

import (
	"strings"

	"github.com/lectern-cli/lectern/internal/store"
	"github.com/lectern-cli/lectern/key"
	"github.com/lectern-cli/lectern/where"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

type record struct {
	Rank  int    `json:"rank"`
	Query string `json:"query"`
}

var history = store.New(where.Queries, func() map[string]*record {
	return make(map[string]*record)
})

func load() map[string]*record {
	records, err := history.Load()
	if err != nil {
		return make(map[string]*record)
	}
	return records
}

// Remember adds weight to q, recording it on first use.
func Remember(q string, weight int) error {
	q = sanitize(q)
	if q == "" {
		return nil
	}

	return history.Update(func(records map[string]*record) (map[string]*record, error) {
		if r, ok := records[q]; ok {
			r.Rank += weight
		} else {
			records[q] = &record{Rank: weight, Query: q}
		}
		return records, nil
	})
}

// Suggest returns the highest ranked previous query matching q.
func Suggest(q string) mo.Option[string] {
	suggestions := SuggestMany(q)
	if len(suggestions) == 0 {
		return mo.None[string]()
	}
	return mo.Some(suggestions[0])
}

// SuggestMany returns previous queries fuzzily matching q, highest rank first.
func SuggestMany(q string) []string {
	if !viper.GetBool(key.SearchShowQuerySuggestions) {
		return []string{}
	}

	q = sanitize(q)
	matches := lo.Filter(lo.Values(load()), func(r *record, _ int) bool {
		return r.Query != q && fuzzy.Match(q, r.Query)
	})

	slices.SortFunc(matches, func(a, b *record) int {
		if a.Rank != b.Rank {
			return b.Rank - a.Rank
		}
		return strings.Compare(a.Query, b.Query)
	})

	return lo.Map(matches, func(r *record, _ int) string {
		return r.Query
	})
}

func sanitize(q string) string {
	return strings.TrimSpace(strings.ToLower(q))
}
