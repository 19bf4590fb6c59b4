package service

import (
	"context"
	"errors"
	"net/url"

	"registrygate/internal/core/index"
	"registrygate/internal/core/libmeta"
	"registrygate/internal/core/repourl"
	"registrygate/internal/core/tier"
	perr "registrygate/internal/platform/errors"
	"registrygate/internal/platform/logger"
	"registrygate/internal/platform/tracing"
	"registrygate/internal/services/admission/domain"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// outcome is the resolution result of one added line
type outcome struct {
	sub         domain.Submission
	ownerDenied bool
}

// resolveAll resolves urls concurrently; results keep the input order
func (s *Svc) resolveAll(ctx context.Context, urls []string, req domain.Request, skipOwner bool) []outcome {
	out := make([]outcome, len(urls))
	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i, raw := range urls {
		g.Go(func() error {
			out[i] = s.resolve(ctx, i, raw, req, skipOwner)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// resolve runs the validation pipeline for one submission URL. The first
// failing step ends it
func (s *Svc) resolve(ctx context.Context, idx int, raw string, req domain.Request, skipOwner bool) (o outcome) {
	ctx, span := tracing.Start(ctx, tracerName, "admission.resolve",
		attribute.String("submission.url", raw),
		attribute.Int("submission.index", idx),
	)
	defer func() {
		result := "ok"
		if o.sub.Failure != nil {
			result = o.sub.Failure.Kind.String()
		}
		span.SetAttributes(attribute.String("outcome", result))
		tracing.End(span, nil)
	}()

	log := logger.C(ctx).With().Str("url", raw).Logger()
	defer func() {
		if f := o.sub.Failure; f != nil {
			log.Info().Str("failure", f.Kind.String()).Msg("submission rejected")
			return
		}
		log.Info().Str("entry", o.sub.Entry).Msg("submission accepted")
	}()

	o.sub.URL = raw
	reject := func(f *domain.Failure) outcome {
		o.sub.Failure = f
		return o
	}

	u, err := repourl.Parse(raw)
	if err != nil {
		return reject(domain.TransportFailure(err))
	}
	literal := repourl.Normalize(u)
	o.sub.Location = literal

	if f := s.checkShape(literal); f != nil {
		return reject(f)
	}
	log.Debug().Msg("host and path shape accepted")

	// a listed repository is rejected even when it can no longer be reached
	if req.Index.Contains(literal) {
		return reject(domain.AlreadyIndexed())
	}

	rctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	final, resolveErr := s.transport.Resolve(rctx, u)
	cancel()

	target := literal
	if resolveErr == nil {
		target = repourl.Normalize(final)
		o.sub.Location = target
		log.Debug().Str("resolved", target.String()).Msg("redirects resolved")
	}

	// owner revocation outranks a failed resolution
	if !skipOwner {
		if e, denied := req.Access.DeniedOwner(target); denied {
			o.ownerDenied = true
			return reject(domain.OwnerDenied(e.Slug(), e.Reference))
		}
	}
	if resolveErr != nil {
		return reject(networkFailure(resolveErr))
	}

	if f := s.checkShape(target); f != nil {
		return reject(f)
	}
	cloneURL := target.String()

	pctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	err = s.transport.Probe(pctx, cloneURL)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrNotCloneable) {
			return reject(domain.NotClone())
		}
		return reject(networkFailure(err))
	}
	log.Debug().Msg("clone probe passed")

	if req.Index.Check(literal, target) == index.MatchResolved {
		return reject(domain.ResolvedIndexed(cloneURL))
	}

	tctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	tags, err := s.transport.Tags(tctx, cloneURL)
	cancel()
	if err != nil {
		return reject(networkFailure(err))
	}
	if len(tags) == 0 {
		return reject(domain.NoTags())
	}

	fctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	data, err := s.transport.ReadFile(fctx, cloneURL, "", libmeta.FileName)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			return reject(domain.MissingMetadata())
		}
		return reject(networkFailure(err))
	}

	meta, err := libmeta.Parse(data)
	switch {
	case errors.Is(err, libmeta.ErrMissingName):
		return reject(domain.MissingName())
	case errors.Is(err, libmeta.ErrMissingVersion):
		return reject(domain.MissingVersion())
	case err != nil:
		return reject(domain.InvalidMetadata(err))
	}

	tag, ok := libmeta.MatchTag(tags, meta.Version)
	if !ok {
		return reject(domain.NoMatchingTag(meta.Version))
	}

	class := tier.Classify(s.cfg.Tiers, target)
	repo := &domain.Repository{
		NormalizedURL:  cloneURL,
		Owner:          repourl.Owner(target),
		RepositoryName: repourl.RepoName(target),
		Name:           meta.Name,
		Official:       class.Official,
		Tag:            tag,
		Tier:           class.Label(),
	}
	o.sub.Repo = repo
	o.sub.Entry = tier.Entry(cloneURL, class, repo.Name, repo.RepositoryName)
	return o
}

// checkShape applies the host allow-list and the clone path shape to u
func (s *Svc) checkShape(u *url.URL) *domain.Failure {
	rule, ok := s.cfg.Hosts.Lookup(u.Host)
	if !ok {
		return domain.UnsupportedHost(u.Host)
	}
	if !rule.IsClone(u) {
		return domain.NotClone()
	}
	return nil
}

// networkFailure maps a transport error; timeouts read as unreachable
func networkFailure(err error) *domain.Failure {
	switch {
	case errors.Is(err, domain.ErrUnreachable),
		errors.Is(err, context.DeadlineExceeded),
		perr.IsCode(err, perr.ErrorCodeTimeout):
		return domain.Unreachable()
	default:
		return domain.TransportFailure(err)
	}
}
