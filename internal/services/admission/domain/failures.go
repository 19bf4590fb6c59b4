package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	perr "registrygate/internal/platform/errors"
)

// Transport sentinels recognized by the assembler
var (
	ErrUnreachable  = perr.New(perr.ErrorCodeNotFound, "repository unreachable")
	ErrNotCloneable = perr.New(perr.ErrorCodeNotFound, "not a git repository")
	ErrFileNotFound = perr.New(perr.ErrorCodeNotFound, "file not found")
)

// FailureKind enumerates per-submission failures
type FailureKind uint8

// Failure kinds
const (
	FailTransport FailureKind = iota + 1
	FailUnreachable
	FailUnsupportedHost
	FailNotClone
	FailAlreadyIndexed
	FailResolvedIndexed
	FailOwnerDenied
	FailNoTags
	FailMissingMetadata
	FailInvalidMetadata
	FailMissingName
	FailMissingVersion
	FailNoMatchingTag
	FailDuplicate
)

var kindNames = map[FailureKind]string{
	FailTransport:       "transport",
	FailUnreachable:     "unreachable",
	FailUnsupportedHost: "unsupported_host",
	FailNotClone:        "not_clone",
	FailAlreadyIndexed:  "already_indexed",
	FailResolvedIndexed: "resolved_indexed",
	FailOwnerDenied:     "owner_denied",
	FailNoTags:          "no_tags",
	FailMissingMetadata: "missing_metadata",
	FailInvalidMetadata: "invalid_metadata",
	FailMissingName:     "missing_name",
	FailMissingVersion:  "missing_version",
	FailNoMatchingTag:   "no_matching_tag",
	FailDuplicate:       "duplicate",
}

func (k FailureKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Failure is a rendered per-submission failure
type Failure struct {
	Kind    FailureKind
	Message string
}

const (
	faqURL      = "https://github.com/arduino/library-registry/blob/main/FAQ.md#what-are-the-requirements-for-a-library-to-be-added-to-library-manager"
	metadataURL = "https://arduino.github.io/arduino-cli/latest/library-specification/#library-metadata"
	releaseHelp = "You need to create a [release](https://docs.github.com/en/github/administering-a-repository/managing-releases-in-a-repository) or [tag](https://git-scm.com/docs/git-tag) that matches the `version` value in the library's library.properties file."
)

// Escape encodes line breaks with LineSeparator
func Escape(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", LineSeparator)
}

func fail(k FailureKind, format string, a ...any) *Failure {
	return &Failure{Kind: k, Message: Escape(fmt.Sprintf(format, a...))}
}

// TransportText is the client error text to echo for a transport failure.
// An HTTP client error is echoed as is; anything else keeps its full chain
// so git stderr survives
func TransportText(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Error()
	}
	return err.Error()
}

// TransportFailure renders a network failure, echoing the client error
func TransportFailure(err error) *Failure {
	return fail(FailTransport, "Unable to load submission URL: %s", TransportText(err))
}

// Unreachable renders a missing, private or timed out repository
func Unreachable() *Failure {
	return fail(FailUnreachable, "Unable to load submission URL. Is the repository public?")
}

// UnsupportedHost renders a host outside the allow-list
func UnsupportedHost(host string) *Failure {
	return fail(FailUnsupportedHost, "`%s` is not currently supported as a Git hosting website for Library Manager.\n\nSee: %s", host, faqURL)
}

// NotClone renders a URL that is not a Git clone URL
func NotClone() *Failure {
	return fail(FailNotClone, "Submission URL is not a Git clone URL (e.g., `https://github.com/arduino-libraries/Servo`).")
}

// AlreadyIndexed renders a submission URL that is already listed
func AlreadyIndexed() *Failure {
	return fail(FailAlreadyIndexed, "Submission URL is already in the Library Manager index.")
}

// ResolvedIndexed renders a redirect target that is already listed
func ResolvedIndexed(resolved string) *Failure {
	return fail(FailResolvedIndexed, "Resolved URL %s is already in the Library Manager index.", resolved)
}

// OwnerDenied renders a revoked repository owner
func OwnerDenied(slug, reference string) *Failure {
	return fail(FailOwnerDenied, "Library registry privileges for library repository owner `%s` have been revoked.%s", slug, seeAlso(reference))
}

// SubmitterDenied renders the request-level message for a revoked submitter
func SubmitterDenied(login, reference string) string {
	return Escape(fmt.Sprintf("Library registry privileges for @%s have been revoked.%s", login, seeAlso(reference)))
}

func seeAlso(reference string) string {
	if reference == "" {
		return ""
	}
	return "\nSee: " + reference
}

// NoTags renders a repository without any tag
func NoTags() *Failure {
	return fail(FailNoTags, "The repository has no tags. %s", releaseHelp)
}

// NoMatchingTag renders a declared version with no corresponding tag
func NoMatchingTag(version string) *Failure {
	return fail(FailNoMatchingTag, "The repository has no tag matching the library.properties version `%s`. %s", version, releaseHelp)
}

// MissingMetadata renders a repository without library.properties
func MissingMetadata() *Failure {
	return fail(FailMissingMetadata, "Library is missing a library.properties metadata file.\n\nSee: %s", metadataURL)
}

// InvalidMetadata renders an unparsable library.properties
func InvalidMetadata(err error) *Failure {
	return fail(FailInvalidMetadata, "Invalid library.properties file: %s\n\nSee: %s", perr.Root(err), metadataURL)
}

// MissingName renders library.properties without a name
func MissingName() *Failure {
	return fail(FailMissingName, "library.properties is missing a name field.\n\nSee: %s", metadataURL)
}

// MissingVersion renders library.properties without a version
func MissingVersion() *Failure {
	return fail(FailMissingVersion, "library.properties is missing a version field.\n\nSee: %s", metadataURL)
}

// Duplicate renders a repeat of an earlier submission in the same request
func Duplicate() *Failure {
	return fail(FailDuplicate, "Submission contains duplicate URLs.")
}

// MissingNewline is the request-level message for a diff that drops the final newline
func MissingNewline() string {
	return Escape("Pull request removes newline from the end of a file.\nPlease add a blank line to the end of the file.")
}

// MalformedDiff is the request-level message for an unparsable diff
func MalformedDiff(err error) string {
	return Escape(fmt.Sprintf("Unable to parse the pull request diff: %s", err))
}
