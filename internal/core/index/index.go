// Package index answers whether a repository is already listed in the
// registry list file
package index

import (
	"net/url"
	"strings"

	"registrygate/internal/core/repourl"
	perr "registrygate/internal/platform/errors"
	"registrygate/internal/platform/logger"

	"github.com/arduino/go-paths-helper"
)

// Match says how a submission collided with the list
type Match uint8

const (
	// MatchNone means the repository is not listed
	MatchNone Match = iota
	// MatchLiteral means the submitted URL itself is listed
	MatchLiteral
	// MatchResolved means only the post-redirect URL is listed
	MatchResolved
)

// List is the set of normalized URLs in the list file
type List struct {
	urls map[string]struct{}
}

// New builds a List from raw list lines. Blank lines are skipped and lines
// that do not parse as URLs are logged and ignored
func New(lines []string) *List {
	l := &List{urls: make(map[string]struct{}, len(lines))}
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		u, err := url.Parse(line)
		if err != nil {
			logger.Named("index").Warn().Err(err).Int("line", i+1).Msg("skipping unparsable list line")
			continue
		}
		l.urls[repourl.Normalize(u).String()] = struct{}{}
	}
	return l
}

// Load reads the list file at p
func Load(p *paths.Path) (*List, error) {
	if ok, _ := p.ExistCheck(); !ok {
		return nil, perr.InvalidArgf("list file %s not found", p)
	}
	lines, err := p.ReadFileAsLines()
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read list file %s", p)
	}
	return New(lines), nil
}

// Len returns the number of distinct listed repositories
func (l *List) Len() int { return len(l.urls) }

// Contains reports whether u, once normalized, is listed
func (l *List) Contains(u *url.URL) bool {
	if l == nil || u == nil {
		return false
	}
	_, ok := l.urls[repourl.Normalize(u).String()]
	return ok
}

// Check matches the literal submission first, then the resolved location
func (l *List) Check(literal, resolved *url.URL) Match {
	switch {
	case l.Contains(literal):
		return MatchLiteral
	case l.Contains(resolved):
		return MatchResolved
	default:
		return MatchNone
	}
}
