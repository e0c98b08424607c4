package filepress

import (
	"slices"
	"sort"
	"time"

	"cloud.google.com/go/civil"
)

// Limits are named constraints for GetPostsWithLimits.
//
// title, layout, author, email, tags and categories take a string or a list
// of strings and keep posts whose attribute shares a value with it. created
// and updated take a two element interval of time.Time or civil.Date values
// and keep posts strictly inside it. A civil.Date end stands for the start
// of the following day, so the whole end date is included.
type Limits map[string]any

var postAttrs = map[string]func(*Post) []string{
	"title":      func(p *Post) []string { return []string{p.Title()} },
	"layout":     func(p *Post) []string { return []string{p.Layout()} },
	"author":     func(p *Post) []string { return []string{p.Author()} },
	"email":      func(p *Post) []string { return []string{p.Email()} },
	"tags":       (*Post).Tags,
	"categories": (*Post).Categories,
}

var postTimes = map[string]func(*Post) time.Time{
	"created": (*Post).Created,
	"updated": (*Post).Updated,
}

// GetPostsWithLimits returns the posts matching every limit, newest first.
// Unknown keys and malformed intervals are logged and ignored.
func (s *Store) GetPostsWithLimits(includeDraft bool, limits Limits) ([]*Post, error) {
	return s.GetPosts(includeDraft, s.limitFilters(limits)...)
}

func (s *Store) limitFilters(limits Limits) []PostFilter {
	keys := make([]string, 0, len(limits))
	for k := range limits {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var filters []PostFilter
	for _, key := range keys {
		value := limits[key]
		if attr, ok := postAttrs[key]; ok {
			want := toList(value)
			if len(want) == 0 {
				continue
			}
			filters = append(filters, func(p *Post) bool {
				return slices.ContainsFunc(attr(p), func(v string) bool {
					return slices.Contains(want, v)
				})
			})
			continue
		}
		if at, ok := postTimes[key]; ok {
			start, end, ok := s.interval(value)
			if !ok {
				s.logger.Warn("ignoring malformed interval", "limit", key, "value", value)
				continue
			}
			filters = append(filters, func(p *Post) bool {
				t := at(p)
				return t.After(start) && t.Before(end)
			})
			continue
		}
		s.logger.Warn("ignoring unknown limit", "limit", key)
	}
	return filters
}

func (s *Store) interval(v any) (start, end time.Time, ok bool) {
	var pair []any
	switch val := v.(type) {
	case []any:
		pair = val
	case [2]any:
		pair = val[:]
	case []time.Time:
		for _, t := range val {
			pair = append(pair, t)
		}
	case []civil.Date:
		for _, d := range val {
			pair = append(pair, d)
		}
	}
	if len(pair) != 2 {
		return time.Time{}, time.Time{}, false
	}

	loc := s.site.Location()
	start, ok = boundary(pair[0], loc, false)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok = boundary(pair[1], loc, true)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func boundary(v any, loc *time.Location, isEnd bool) (time.Time, bool) {
	switch b := v.(type) {
	case time.Time:
		return b, true
	case civil.Date:
		if !b.IsValid() {
			return time.Time{}, false
		}
		if isEnd {
			return b.AddDays(1).In(loc), true
		}
		// Just below midnight, so posts at the very start of the day stay
		// inside the strict interval.
		return b.In(loc).Add(-time.Nanosecond), true
	default:
		return time.Time{}, false
	}
}
