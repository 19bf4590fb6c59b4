package service

import (
	"strings"

	"registrygate/internal/core/repourl"
	"registrygate/internal/services/admission/domain"
)

// assemble merges ordered outcomes into v. Repeats of an earlier location
// are flagged but kept, so entries and log URLs list them again
func assemble(v domain.Verdict, outcomes []outcome, logsBase string) domain.Verdict {
	seen := make(map[string]struct{}, len(outcomes))
	entries := make([]string, 0, len(outcomes))
	logs := make([]string, 0, len(outcomes))
	denied := 0

	v.Submissions = make([]domain.Submission, 0, len(outcomes))
	for _, o := range outcomes {
		sub := o.sub
		key := sub.URL
		if sub.Location != nil {
			key = sub.Location.String()
		}
		if _, dup := seen[key]; dup {
			sub.Failure = domain.Duplicate()
		} else {
			seen[key] = struct{}{}
		}
		if o.ownerDenied {
			denied++
		}
		if sub.Entry != "" {
			entries = append(entries, sub.Entry)
		}
		logs = append(logs, repourl.LogsURL(logsBase, sub.Location))
		v.Submissions = append(v.Submissions, sub)
	}

	v.IndexEntry = strings.Join(entries, domain.LineSeparator)
	v.IndexerLogsURLs = strings.Join(logs, domain.LineSeparator)
	if len(outcomes) > 0 && denied == len(outcomes) {
		v.Conclusion = domain.ConclusionDeclined
	}
	return v
}
