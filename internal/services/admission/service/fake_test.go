package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"registrygate/internal/core/access"
	"registrygate/internal/core/index"
	perr "registrygate/internal/platform/errors"
	"registrygate/internal/services/admission/domain"
)

const listName = "repositories.txt"

type fakeRepo struct {
	tags    []string
	tagsErr error
	files   map[string]string
}

// fakeTransport serves a fixed world of repositories. Maps are read only
// once a test starts, so concurrent resolutions need no locking
type fakeTransport struct {
	redirects  map[string]string // literal URL -> final URL
	resolveErr map[string]error
	delay      map[string]time.Duration
	repos      map[string]fakeRepo // clone URL -> repository
	calls      atomic.Int32
}

func (f *fakeTransport) Resolve(ctx context.Context, u *url.URL) (*url.URL, error) {
	f.calls.Add(1)
	key := u.String()
	if d := f.delay[key]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.resolveErr[key]; ok {
		return nil, err
	}
	final, ok := f.redirects[key]
	if !ok {
		return nil, perr.Wrapf(domain.ErrUnreachable, perr.ErrorCodeNotFound, "resolve %s: status 404", key)
	}
	return url.Parse(final)
}

func (f *fakeTransport) Probe(_ context.Context, cloneURL string) error {
	f.calls.Add(1)
	if _, ok := f.repos[cloneURL]; !ok {
		return domain.ErrNotCloneable
	}
	return nil
}

func (f *fakeTransport) Tags(_ context.Context, cloneURL string) ([]string, error) {
	f.calls.Add(1)
	r := f.repos[cloneURL]
	return r.tags, r.tagsErr
}

func (f *fakeTransport) ReadFile(_ context.Context, cloneURL, _, path string) ([]byte, error) {
	f.calls.Add(1)
	content, ok := f.repos[cloneURL].files[path]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	return []byte(content), nil
}

func props(name, version string) map[string]string {
	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "name=%s\n", name)
	}
	if version != "" {
		fmt.Fprintf(&b, "version=%s\n", version)
	}
	return map[string]string{"library.properties": b.String()}
}

// world returns the transport used by most tests
func world() *fakeTransport {
	return &fakeTransport{
		redirects: map[string]string{
			"https://github.com/arduino-libraries/Servo": "https://github.com/arduino-libraries/Servo",
			"https://github.com/old-org/Servo":           "https://github.com/arduino-libraries/Servo",
			"https://github.com/someone/FooLib":          "https://github.com/someone/FooLib",
			"https://github.com/someone/FooLib.git":      "https://github.com/someone/FooLib",
			"https://github.com/badowner/Evil":           "https://github.com/badowner/Evil",
			"https://github.com/badowner/Other":          "https://github.com/badowner/Other",
			"https://github.com/arduino-libraries/New":   "https://github.com/arduino-libraries/New",
			"https://github.com/someone/NoTags":          "https://github.com/someone/NoTags",
			"https://github.com/someone/NoProps":         "https://github.com/someone/NoProps",
			"https://github.com/someone/NoVersion":       "https://github.com/someone/NoVersion",
			"https://github.com/someone/NoName":          "https://github.com/someone/NoName",
			"https://github.com/someone/Unreleased":      "https://github.com/someone/Unreleased",
			"https://github.com/someone/TagsDown":        "https://github.com/someone/TagsDown",
			"https://github.com/someone/Site":            "https://github.com/someone/Site",
			"https://github.com/someone/Away":            "https://example.org/someone/Away",
		},
		repos: map[string]fakeRepo{
			"https://github.com/arduino-libraries/Servo.git": {tags: []string{"1.1.0"}, files: props("Servo", "1.1.0")},
			"https://github.com/someone/FooLib.git":          {tags: []string{"1.0.0", "v1.2.0"}, files: props("Foo Lib", "1.2.0")},
			"https://github.com/badowner/Evil.git":           {tags: []string{"0.1.0"}, files: props("Evil", "0.1.0")},
			"https://github.com/badowner/Other.git":          {tags: []string{"0.1.0"}, files: props("Other", "0.1.0")},
			"https://github.com/arduino-libraries/New.git":   {tags: []string{"2.0.0"}, files: props("New", "2.0")},
			"https://github.com/someone/NoTags.git":          {files: props("NoTags", "1.0.0")},
			"https://github.com/someone/NoProps.git":         {tags: []string{"1.0.0"}},
			"https://github.com/someone/NoVersion.git":       {tags: []string{"1.0.0"}, files: props("NoVersion", "")},
			"https://github.com/someone/NoName.git":          {tags: []string{"1.0.0"}, files: props("", "1.0.0")},
			"https://github.com/someone/Unreleased.git":      {tags: []string{"1.0.0"}, files: props("Unreleased", "1.1.0")},
			"https://github.com/someone/TagsDown.git":        {tagsErr: perr.Unavailablef("connection reset")},
		},
	}
}

func fixtureIndex() *index.List {
	return index.New([]string{
		"https://github.com/arduino-libraries/Servo.git",
		"https://github.com/adafruit/Adafruit_Sensor",
	})
}

func fixtureAccess() *access.List {
	return access.New(
		access.Entry{Access: access.Deny, Host: "github.com", Name: "badowner", Reference: "https://example.com/issue/1"},
		access.Entry{Access: access.Deny, Host: "github.com", Name: "badsubmitter"},
		access.Entry{Access: access.Allow, Host: "github.com", Name: "trusted"},
	)
}

func diffHeader() string {
	return "diff --git a/" + listName + " b/" + listName + "\n" +
		"index 1111111..2222222 100644\n" +
		"--- a/" + listName + "\n" +
		"+++ b/" + listName + "\n"
}

const context2 = " https://github.com/arduino-libraries/Servo.git\n https://github.com/adafruit/Adafruit_Sensor\n"

// addDiff appends lines after two context lines
func addDiff(lines ...string) []byte {
	var b strings.Builder
	b.WriteString(diffHeader())
	fmt.Fprintf(&b, "@@ -1,2 +1,%d @@\n", 2+len(lines))
	b.WriteString(context2)
	for _, l := range lines {
		b.WriteString("+" + l + "\n")
	}
	return []byte(b.String())
}

func request(diff []byte, submitter string) domain.Request {
	return domain.Request{
		Diff:      diff,
		ListName:  listName,
		Submitter: submitter,
		Index:     fixtureIndex(),
		Access:    fixtureAccess(),
	}
}
