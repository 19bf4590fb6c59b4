// Package tier classifies libraries into registry tiers by repository ownership
package tier

import (
	"net/url"
	"strings"

	"registrygate/internal/core/repourl"
)

// Tier is a registry trust label
type Tier string

// Tier labels as written to the index
const (
	Arduino     Tier = "Arduino"
	Partner     Tier = "Partner"
	Recommended Tier = "Recommended"
	Contributed Tier = "Contributed"
)

// Separator joins the fields of an index entry
const Separator = "|"

// Lookup maps a repository location to the tiers its owner belongs to
type Lookup interface {
	TiersOf(u *url.URL) []Tier
}

// Registry is the static ownership registry: "host/owner" prefixes per tier
type Registry struct {
	Official    []string
	Partner     []string
	Recommended []string
}

// TiersOf returns every tier whose ownership list covers u, in rank order
func (r Registry) TiersOf(u *url.URL) []Tier {
	var out []Tier
	if repourl.IsUnder(u, r.Official...) {
		out = append(out, Arduino)
	}
	if repourl.IsUnder(u, r.Partner...) {
		out = append(out, Partner)
	}
	if repourl.IsUnder(u, r.Recommended...) {
		out = append(out, Recommended)
	}
	return out
}

// Class is the outcome of classification
type Class struct {
	Tiers    []Tier
	Official bool
}

// Label renders the tiers as written to the index
func (c Class) Label() string {
	parts := make([]string, len(c.Tiers))
	for i, t := range c.Tiers {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

// Classify assigns tiers to the repository at u. Repositories matching no
// ownership list are Contributed
func Classify(l Lookup, u *url.URL) Class {
	tiers := l.TiersOf(u)
	c := Class{Tiers: tiers}
	for _, t := range tiers {
		if t == Arduino {
			c.Official = true
		}
	}
	if len(c.Tiers) == 0 {
		c.Tiers = []Tier{Contributed}
	}
	return c
}

// Entry renders the index entry line. The repository name stands in for a
// missing display name
func Entry(normalizedURL string, c Class, name, repoName string) string {
	if name == "" {
		name = repoName
	}
	return strings.Join([]string{normalizedURL, c.Label(), name}, Separator)
}
