// Package domain defines the admission verdict model, the failure catalogue
// and the ports of the admission service
package domain

import (
	"encoding/json"
	"io"
	"net/url"

	"registrygate/internal/core/access"
	"registrygate/internal/core/index"
	"registrygate/internal/core/listdiff"
)

// Conclusion values
const (
	ConclusionNone     = ""
	ConclusionDeclined = "declined"
)

// LineSeparator joins multi-line values; consumers read each field as a single line
const LineSeparator = "%0A"

// Request is one pull request event to evaluate
type Request struct {
	Diff      []byte
	ListName  string
	Submitter string
	Index     *index.List
	Access    *access.List
}

// Repository is a fully resolved submission
type Repository struct {
	NormalizedURL  string
	Owner          string
	RepositoryName string
	Name           string
	Official       bool
	Tag            string
	Tier           string
}

// Submission is one record of the verdict, in diff order. Either Repo is set,
// or Failure is, or both when the record repeats an earlier one
type Submission struct {
	URL     string
	Repo    *Repository
	Failure *Failure
	Entry   string // index entry line, empty unless the repository resolved

	Location *url.URL // best-known location for the indexer logs URL
}

// OK reports whether the record carries no failure
func (s Submission) OK() bool { return s.Failure == nil }

type submissionWire struct {
	SubmissionURL  string `json:"submissionURL"`
	NormalizedURL  string `json:"normalizedURL"`
	Owner          string `json:"owner"`
	RepositoryName string `json:"repositoryName"`
	Name           string `json:"name"`
	Official       bool   `json:"official"`
	Tag            string `json:"tag"`
	Tier           string `json:"tier"`
	Error          string `json:"error"`
}

// MarshalJSON flattens the record into the wire shape
func (s Submission) MarshalJSON() ([]byte, error) {
	w := submissionWire{SubmissionURL: s.URL}
	if r := s.Repo; r != nil {
		w.NormalizedURL = r.NormalizedURL
		w.Owner = r.Owner
		w.RepositoryName = r.RepositoryName
		w.Name = r.Name
		w.Official = r.Official
		w.Tag = r.Tag
		w.Tier = r.Tier
	}
	if s.Failure != nil {
		w.Error = s.Failure.Message
	}
	return json.Marshal(w)
}

// Verdict is the single report produced per invocation
type Verdict struct {
	Conclusion      string        `json:"conclusion"`
	Type            listdiff.Kind `json:"type"`
	LintSetting     string        `json:"arduinoLintLibraryManagerSetting"`
	Submissions     []Submission  `json:"submissions"`
	IndexEntry      string        `json:"indexEntry"`
	IndexerLogsURLs string        `json:"indexerLogsURLs"`
	Error           string        `json:"error"`
}

// Encode writes v as one JSON line without HTML escaping
func Encode(w io.Writer, v Verdict) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
