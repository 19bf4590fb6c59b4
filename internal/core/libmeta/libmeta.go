// Package libmeta reads the library.properties metadata descriptor and
// matches its declared version against repository tags
package libmeta

import (
	"slices"
	"strings"

	perr "registrygate/internal/platform/errors"

	"github.com/Masterminds/semver/v3"
	properties "github.com/arduino/go-properties-orderedmap"
)

// FileName is the metadata descriptor path at the repository root
const FileName = "library.properties"

// Sentinel failures for descriptors that parse but are incomplete
var (
	ErrMissingName    = perr.Validationf("library.properties is missing a name field")
	ErrMissingVersion = perr.Validationf("library.properties is missing a version field")
)

// Metadata holds the descriptor fields the registry cares about
type Metadata struct {
	Name    string
	Version string
	Props   *properties.Map
}

// Parse decodes a descriptor. Syntax errors are ErrorCodeParse; missing
// required fields return the sentinels above
func Parse(data []byte) (*Metadata, error) {
	props, err := properties.LoadFromBytes(data)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeParse, "invalid library.properties")
	}
	name, ok := props.GetOk("name")
	if !ok || strings.TrimSpace(name) == "" {
		return nil, ErrMissingName
	}
	version, ok := props.GetOk("version")
	if !ok || strings.TrimSpace(version) == "" {
		return nil, ErrMissingVersion
	}
	return &Metadata{Name: strings.TrimSpace(name), Version: strings.TrimSpace(version), Props: props}, nil
}

// MatchTag returns the tag that releases version. An exact name wins, then a
// "v" prefixed name, then the lowest tag that is semver-equal to version
func MatchTag(tags []string, version string) (string, bool) {
	version = strings.TrimSpace(version)
	if version == "" {
		return "", false
	}
	sorted := slices.Clone(tags)
	slices.Sort(sorted)

	for _, want := range []string{version, "v" + version} {
		if slices.Contains(sorted, want) {
			return want, true
		}
	}

	wantV, err := semver.NewVersion(version)
	if err != nil {
		return "", false
	}
	for _, tag := range sorted {
		v, err := semver.NewVersion(tag)
		if err != nil {
			continue
		}
		if v.Equal(wantV) {
			return tag, true
		}
	}
	return "", false
}
