//go:build property
// +build property

package filepress

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestPostURLProperties checks that surface forms of a post locator share
// one canonical identity.
func TestPostURLProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	names := gen.RegexMatch(`^[a-z][a-z0-9-]{0,15}$`)

	// Property: day width, trailing slash and .html suffix do not change the identity
	properties.Property("surface forms collapse", prop.ForAll(
		func(year, month, day int, name string) bool {
			want := fmt.Sprintf("%04d/%02d/%02d/%s/", year, month, day, name)
			forms := []string{
				fmt.Sprintf("%d/%d/%d/%s", year, month, day, name),
				fmt.Sprintf("%04d/%02d/%02d/%s/", year, month, day, name),
				fmt.Sprintf("%d/%02d/%d/%s.html", year, month, day, name),
				fmt.Sprintf("%d/%d/%02d/%s.htm", year, month, day, name),
			}
			for _, f := range forms {
				got, ok := FixPostRelativeURL(f)
				if !ok || got != want {
					return false
				}
			}
			return true
		},
		gen.IntRange(1000, 9999),
		gen.IntRange(1, 12),
		gen.IntRange(1, 28),
		names,
	))

	// Property: an explicit index form keeps the index.html suffix
	properties.Property("index forms keep the suffix", prop.ForAll(
		func(year, month, day int, name, index string) bool {
			got, ok := FixPostRelativeURL(fmt.Sprintf("%d/%d/%d/%s/%s", year, month, day, name, index))
			return ok && strings.HasSuffix(got, "/"+name+"/index.html")
		},
		gen.IntRange(1000, 9999),
		gen.IntRange(1, 12),
		gen.IntRange(1, 28),
		names,
		gen.OneConstOf("index", "index.htm", "index.html"),
	))

	// Property: months past December never canonicalize
	properties.Property("invalid months rejected", prop.ForAll(
		func(year, month int, name string) bool {
			_, ok := FixPostRelativeURL(fmt.Sprintf("%d/%d/1/%s", year, month, name))
			return !ok
		},
		gen.IntRange(1000, 9999),
		gen.IntRange(13, 99),
		names,
	))

	// Property: canonical output is a fixed point
	properties.Property("canonicalization is idempotent", prop.ForAll(
		func(year, month, day int, name string) bool {
			first, ok := FixPostRelativeURL(fmt.Sprintf("%d/%d/%d/%s", year, month, day, name))
			if !ok {
				return false
			}
			second, ok := FixPostRelativeURL(first)
			return ok && first == second
		},
		gen.IntRange(1000, 9999),
		gen.IntRange(1, 12),
		gen.IntRange(1, 28),
		names,
	))

	properties.TestingRun(t)
}
