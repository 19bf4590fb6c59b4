// Package repourl holds the pure URL rules for registry submissions:
// parsing, canonical clone form, host allow-list, clone shape, ownership
// prefixes and indexer log locations
package repourl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Parse parses a submitted URL the way an HTTP client would before dialing.
// Errors render like the client's own so they can be echoed verbatim
func Parse(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, &url.Error{Op: "Get", URL: raw, Err: fmt.Errorf("unsupported protocol scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &url.Error{Op: "Get", URL: raw, Err: errors.New("http: no Host in request URL")}
	}
	return u, nil
}

// Normalize returns the canonical clone URL: https, lower-case host, no
// query or fragment, no trailing slash and a .git suffix. A root path stays "/"
func Normalize(u *url.URL) *url.URL {
	p := strings.TrimRight(u.Path, "/")
	switch {
	case p == "":
		p = "/"
	case !strings.HasSuffix(p, ".git"):
		p += ".git"
	}
	return &url.URL{Scheme: "https", Host: strings.ToLower(u.Host), Path: p}
}

// Segments returns the non-empty path segments with any .git suffix removed
func Segments(u *url.URL) []string {
	p := strings.TrimSuffix(strings.Trim(u.Path, "/"), ".git")
	if p == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Owner returns the first path segment (the account owning the repository)
func Owner(u *url.URL) string {
	if s := Segments(u); len(s) > 0 {
		return s[0]
	}
	return ""
}

// RepoName returns the last path segment without .git
func RepoName(u *url.URL) string {
	if s := Segments(u); len(s) > 0 {
		return s[len(s)-1]
	}
	return ""
}

// HostRule is one supported hosting site. Depth, when set, is the exact
// number of path segments of a clone URL on that host
type HostRule struct {
	Host  string `mapstructure:"host" yaml:"host" validate:"required,barehost"`
	Depth int    `mapstructure:"depth" yaml:"depth" validate:"min=0"`
}

// Hosts is the supported-host allow-list
type Hosts []HostRule

// Lookup returns the rule for host, if supported
func (h Hosts) Lookup(host string) (HostRule, bool) {
	host = strings.ToLower(host)
	for _, r := range h {
		if strings.ToLower(r.Host) == host {
			return r, true
		}
	}
	return HostRule{}, false
}

// IsClone reports whether u has the path shape of a clone URL under rule
func (r HostRule) IsClone(u *url.URL) bool {
	n := len(Segments(u))
	if r.Depth > 0 {
		return n == r.Depth
	}
	return n >= 2
}

// IsUnder reports whether u equals or lies below one of the "host/path"
// prefixes. Hosts compare case-insensitively, path segments exactly
func IsUnder(u *url.URL, prefixes ...string) bool {
	segs := Segments(u)
	for _, p := range prefixes {
		host, rest, _ := strings.Cut(strings.Trim(p, "/"), "/")
		if !strings.EqualFold(host, u.Host) {
			continue
		}
		want := Segments(&url.URL{Path: rest})
		if len(want) > len(segs) {
			continue
		}
		match := true
		for i := range want {
			if want[i] != segs[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// LogsURL renders the indexer log location for loc under base. A nil loc
// yields the sparse form with empty host and path
func LogsURL(base string, loc *url.URL) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	if loc == nil {
		return base + "/"
	}
	return base + loc.Host + strings.TrimSuffix(loc.Path, ".git") + "/"
}
