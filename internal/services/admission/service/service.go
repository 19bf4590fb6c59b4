// Package service evaluates pull request events against the registry rules
package service

import (
	"context"
	"time"

	"registrygate/internal/core/access"
	"registrygate/internal/core/listdiff"
	"registrygate/internal/core/repourl"
	"registrygate/internal/core/tier"
	"registrygate/internal/modkit"
	perr "registrygate/internal/platform/errors"
	"registrygate/internal/platform/logger"
	"registrygate/internal/platform/tracing"
	"registrygate/internal/services/admission/domain"

	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "registrygate/admission"

// Config carries the runtime knobs of the evaluator
type Config struct {
	Concurrency int           // concurrent submission resolutions
	Timeout     time.Duration // per network operation
	LogsBaseURL string
	Hosts       repourl.Hosts
	Tiers       tier.Lookup
}

// Svc implements domain.EvaluatorPort
type Svc struct {
	deps      modkit.Deps
	cfg       Config
	transport domain.Transport
}

var _ domain.EvaluatorPort = (*Svc)(nil)

// New constructs the evaluator
func New(deps modkit.Deps, cfg Config, transport domain.Transport) *Svc {
	if transport == nil {
		panic("admission.Service requires a non nil Transport")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Tiers == nil {
		cfg.Tiers = tier.Registry{}
	}
	return &Svc{deps: deps, cfg: cfg, transport: transport}
}

// Evaluate produces the verdict for one pull request event
func (s *Svc) Evaluate(ctx context.Context, req domain.Request) (v domain.Verdict, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "admission.Evaluate",
		attribute.String("list", req.ListName),
		attribute.String("submitter", req.Submitter),
	)
	defer func() { tracing.End(span, err) }()
	log := logger.C(ctx)

	level, entry := req.Access.Submitter(req.Submitter)
	if level == access.Deny {
		ref := ""
		if entry != nil {
			ref = entry.Reference
		}
		log.Info().Msg("submitter privileges revoked")
		return domain.Verdict{
			Conclusion: domain.ConclusionDeclined,
			Type:       listdiff.KindInvalid,
			Error:      domain.SubmitterDenied(req.Submitter, ref),
		}, nil
	}

	change := listdiff.Parse(req.Diff, req.ListName)
	v = domain.Verdict{Type: change.Kind, LintSetting: change.LintSetting()}
	span.SetAttributes(attribute.String("change.kind", string(change.Kind)))

	switch change.Kind {
	case listdiff.KindInvalid:
		if change.Reason == listdiff.ReasonMalformed {
			v.Error = domain.MalformedDiff(change.Err)
		} else {
			v.Error = domain.MissingNewline()
		}
		log.Info().Str("type", string(v.Type)).Msg("diff rejected")
		return v, nil
	case listdiff.KindSubmission, listdiff.KindModification:
	default:
		log.Info().Str("type", string(v.Type)).Msg("no submissions to validate")
		return v, nil
	}

	outcomes := s.resolveAll(ctx, change.Added, req, level == access.Allow)
	if cerr := ctx.Err(); cerr != nil {
		return domain.Verdict{}, perr.Wrap(cerr, perr.ErrorCodeTimeout, "evaluate")
	}

	v = assemble(v, outcomes, s.cfg.LogsBaseURL)
	log.Info().
		Str("type", string(v.Type)).
		Str("conclusion", v.Conclusion).
		Int("submissions", len(v.Submissions)).
		Msg("verdict assembled")
	return v, nil
}
