// Package access evaluates the registry access list for submitters and
// repository owners
package access

import (
	"net/url"
	"strings"

	"registrygate/internal/core/repourl"
	perr "registrygate/internal/platform/errors"
	"registrygate/internal/platform/validate"

	"github.com/arduino/go-paths-helper"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// Level is an access control level
type Level string

const (
	// Allow lets the account submit even repositories whose owner is denied
	Allow Level = "allow"
	// Default is the implicit level of accounts absent from the list
	Default Level = "default"
	// Deny revokes submission rights and blocks repositories the account owns
	Deny Level = "deny"
)

// SubmitterHost is the only host whose accounts can open pull requests
const SubmitterHost = "github.com"

// Entry is one access list record
type Entry struct {
	Access    Level  `yaml:"access" validate:"required,oneof=allow default deny"`
	Host      string `yaml:"host" validate:"required,barehost"`
	Name      string `yaml:"name" validate:"required"`
	Reference string `yaml:"reference" validate:"omitempty,url"`
}

// Slug is the host/name path the entry governs
func (e Entry) Slug() string { return e.Host + "/" + e.Name }

// document wraps the top-level sequence so the validator can dive into it
type document struct {
	Entries []Entry `yaml:"entries" validate:"dive"`
}

// List is a parsed access list. The zero value allows everyone
type List struct {
	entries []Entry
}

// New builds a List from entries
func New(entries ...Entry) *List {
	return &List{entries: entries}
}

// Parse decodes and validates a YAML access list document
func Parse(data []byte) (*List, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc.Entries); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeParse, "Access control file has invalid format")
	}
	if err := validate.Struct(doc); err != nil {
		return nil, perr.WithOp(err, "access.parse")
	}
	return New(doc.Entries...), nil
}

// Load reads and parses the access list at p
func Load(p *paths.Path) (*List, error) {
	if ok, err := p.ExistCheck(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "access control file %s unreadable", p)
	} else if !ok {
		return nil, perr.InvalidArgf("Access control file not found")
	}
	data, err := p.ReadFile()
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read access control file %s", p)
	}
	return Parse(data)
}

// Len returns the number of entries
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// sameLogin compares account names under Unicode case folding. Casers are
// stateful, so each call gets its own
func sameLogin(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

// Submitter returns the access level of a GitHub login and the entry that set it
func (l *List) Submitter(login string) (Level, *Entry) {
	if l == nil || login == "" {
		return Default, nil
	}
	for i := range l.entries {
		e := &l.entries[i]
		if strings.EqualFold(e.Host, SubmitterHost) && sameLogin(e.Name, login) {
			return e.Access, e
		}
	}
	return Default, nil
}

// DeniedOwner returns the deny entry governing u, if any. An entry name may
// span several path segments, as in a group or a single repository
func (l *List) DeniedOwner(u *url.URL) (*Entry, bool) {
	if l == nil || u == nil {
		return nil, false
	}
	segs := repourl.Segments(u)
	for i := range l.entries {
		e := &l.entries[i]
		if e.Access != Deny || !strings.EqualFold(e.Host, u.Host) {
			continue
		}
		if underName(segs, e.Name) {
			return e, true
		}
	}
	return nil, false
}

// underName reports whether the path segments start with the segments of name
func underName(segs []string, name string) bool {
	want := repourl.Segments(&url.URL{Path: name})
	if len(want) == 0 || len(want) > len(segs) {
		return false
	}
	for i := range want {
		if !sameLogin(want[i], segs[i]) {
			return false
		}
	}
	return true
}
