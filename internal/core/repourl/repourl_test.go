package repourl

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		wantErr string
	}{
		{"https://github.com/arduino-libraries/Servo", ""},
		{"http://gitlab.com/a/b", ""},
		{"foo", `Get "foo": unsupported protocol scheme ""`},
		{"ftp://github.com/a/b", `Get "ftp://github.com/a/b": unsupported protocol scheme "ftp"`},
		{"https:///a/b", `Get "https:///a/b": http: no Host in request URL`},
		{"http://[::1", `parse "http://[::1": missing ']' in host`},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			u, err := Parse(c.in)
			if c.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, u)
				return
			}
			require.Error(t, err)
			assert.Equal(t, c.wantErr, err.Error())
		})
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"https://github.com/arduino-libraries/Servo":       "https://github.com/arduino-libraries/Servo.git",
		"http://GitHub.com/arduino-libraries/Servo/":       "https://github.com/arduino-libraries/Servo.git",
		"https://github.com/arduino-libraries/Servo.git":   "https://github.com/arduino-libraries/Servo.git",
		"https://github.com/a/b?tab=readme#top":            "https://github.com/a/b.git",
		"https://example.com":                              "https://example.com/",
		"https://example.com/":                             "https://example.com/",
		"https://gitlab.com/group/sub/project":             "https://gitlab.com/group/sub/project.git",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(mustURL(t, in)).String(), in)
	}
}

func TestOwnerAndRepoName(t *testing.T) {
	u := mustURL(t, "https://github.com/arduino-libraries/Servo.git")
	assert.Equal(t, "arduino-libraries", Owner(u))
	assert.Equal(t, "Servo", RepoName(u))

	root := mustURL(t, "https://example.com/")
	assert.Equal(t, "", Owner(root))
	assert.Equal(t, "", RepoName(root))
	assert.Nil(t, Segments(root))
}

func TestHosts(t *testing.T) {
	hosts := Hosts{{Host: "github.com", Depth: 2}, {Host: "gitlab.com"}}

	gh, ok := hosts.Lookup("GitHub.com")
	require.True(t, ok)
	assert.True(t, gh.IsClone(mustURL(t, "https://github.com/a/b")))
	assert.False(t, gh.IsClone(mustURL(t, "https://github.com/a/b/releases")))
	assert.False(t, gh.IsClone(mustURL(t, "https://github.com/a")))

	gl, ok := hosts.Lookup("gitlab.com")
	require.True(t, ok)
	assert.True(t, gl.IsClone(mustURL(t, "https://gitlab.com/group/sub/project")))
	assert.False(t, gl.IsClone(mustURL(t, "https://gitlab.com/group")))

	_, ok = hosts.Lookup("example.com")
	assert.False(t, ok)
}

func TestIsUnder(t *testing.T) {
	u := mustURL(t, "https://github.com/arduino-libraries/Servo.git")
	assert.True(t, IsUnder(u, "github.com/arduino-libraries"))
	assert.True(t, IsUnder(u, "github.com/arduino-libraries/"))
	assert.True(t, IsUnder(u, "github.com"))
	assert.True(t, IsUnder(u, "gitlab.com/x", "GITHUB.COM/arduino-libraries"))
	assert.False(t, IsUnder(u, "github.com/arduino"))
	assert.False(t, IsUnder(u, "github.com/Arduino-Libraries"))
	assert.False(t, IsUnder(u, "gitlab.com/arduino-libraries"))
	assert.False(t, IsUnder(u, "github.com/arduino-libraries/Servo/extra"))
}

func TestLogsURL(t *testing.T) {
	base := "http://downloads.arduino.cc/libraries/logs/"
	assert.Equal(t,
		"http://downloads.arduino.cc/libraries/logs/github.com/arduino-libraries/Servo/",
		LogsURL(base, mustURL(t, "https://github.com/arduino-libraries/Servo.git")))
	assert.Equal(t, "http://downloads.arduino.cc/libraries/logs//", LogsURL(base, nil))
	assert.Equal(t, "http://downloads.arduino.cc/libraries/logs/example.com//",
		LogsURL("http://downloads.arduino.cc/libraries/logs", mustURL(t, "https://example.com/")))
}
