// Package listdiff classifies a pull request diff against the registry list file
package listdiff

import (
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// Kind is the structural classification of a diff
type Kind string

// Kinds reported by Parse. Values are part of the verdict wire format
const (
	KindOther        Kind = "other"
	KindRemoval      Kind = "removal"
	KindModification Kind = "modification"
	KindSubmission   Kind = "submission"
	KindInvalid      Kind = "invalid"
)

// Reason explains a KindInvalid classification
type Reason uint8

const (
	// ReasonNone is set for every kind other than invalid
	ReasonNone Reason = iota
	// ReasonMissingNewline means the change leaves the file without a trailing newline
	ReasonMissingNewline
	// ReasonMalformed means the diff text could not be parsed
	ReasonMalformed
)

// Change is the parsed, classified diff
type Change struct {
	Kind    Kind
	Reason  Reason
	Err     error    // parse error when Reason is ReasonMalformed
	Added   []string // trimmed added lines in diff order
	Removed []string
}

// LintSetting returns the library manager lint mode implied by the change
func (c Change) LintSetting() string {
	switch c.Kind {
	case KindSubmission:
		return "submit"
	case KindModification:
		return "update"
	default:
		return ""
	}
}

// Parse classifies raw against the tracked list file listName
func Parse(raw []byte, listName string) Change {
	files, err := diff.ParseMultiFileDiff(raw)
	if err != nil {
		return Change{Kind: KindInvalid, Reason: ReasonMalformed, Err: err}
	}
	if len(files) != 1 || !touchesOnly(files[0], listName) {
		return Change{Kind: KindOther}
	}
	fd := files[0]

	for _, h := range fd.Hunks {
		// go-diff strips the final newline from the body when the new side
		// lacks one and records the original side's marker separately
		if h.OrigNoNewlineAt > 0 || (len(h.Body) > 0 && h.Body[len(h.Body)-1] != '\n') {
			return Change{Kind: KindInvalid, Reason: ReasonMissingNewline}
		}
	}

	var c Change
	for _, h := range fd.Hunks {
		for _, line := range strings.Split(string(h.Body), "\n") {
			line = strings.TrimRight(line, " \t")
			if len(line) < 2 {
				continue
			}
			switch line[0] {
			case '+':
				c.Added = append(c.Added, strings.TrimSpace(line[1:]))
			case '-':
				c.Removed = append(c.Removed, strings.TrimSpace(line[1:]))
			}
		}
	}

	switch {
	case len(c.Added) > 0 && len(c.Removed) > 0:
		c.Kind = KindModification
	case len(c.Added) > 0:
		c.Kind = KindSubmission
	case len(c.Removed) > 0:
		c.Kind = KindRemoval
	default:
		c.Kind = KindOther
	}
	return c
}

// touchesOnly reports whether fd edits listName in place (no rename, copy, create or delete)
func touchesOnly(fd *diff.FileDiff, listName string) bool {
	orig := stripSide(fd.OrigName, "a/")
	neu := stripSide(fd.NewName, "b/")
	if orig != listName || neu != listName {
		return false
	}
	for _, x := range fd.Extended {
		for _, p := range []string{"rename from", "rename to", "copy from", "copy to", "new file mode", "deleted file mode"} {
			if strings.HasPrefix(x, p) {
				return false
			}
		}
	}
	return true
}

func stripSide(name, prefix string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), prefix)
}
