package main

import (
	"context"
	"io"
	"time"

	"registrygate/internal/core/access"
	"registrygate/internal/core/index"
	"registrygate/internal/core/rules"
	"registrygate/internal/core/version"
	"registrygate/internal/modkit"
	"registrygate/internal/modkit/module"
	perr "registrygate/internal/platform/errors"
	"registrygate/internal/platform/logger"
	"registrygate/internal/platform/tracing"
	"registrygate/internal/services/admission/domain"
	admission "registrygate/internal/services/admission/module"

	"github.com/arduino/go-paths-helper"
	"github.com/google/uuid"
)

func (o runOptions) validate() error {
	for _, req := range []struct{ flag, val string }{
		{"accesslist", o.AccessList},
		{"diffpath", o.DiffPath},
		{"repopath", o.RepoPath},
		{"listname", o.ListName},
		{"submitter", o.Submitter},
	} {
		if req.val == "" {
			return perr.InvalidArgf("--%s flag is required", req.flag)
		}
	}
	return nil
}

// run loads the inputs, evaluates the request and writes the verdict
func run(ctx context.Context, o runOptions, stdout io.Writer) (err error) {
	if err := o.validate(); err != nil {
		return err
	}

	logger.Init(logger.FromEnv())
	ctx = logger.WithRun(ctx, uuid.NewString(), o.Submitter)
	log := logger.C(ctx)

	acl, err := access.Load(paths.New(o.RepoPath, o.AccessList))
	if err != nil {
		return err
	}

	diffPath := paths.New(o.DiffPath)
	if ok, _ := diffPath.ExistCheck(); !ok {
		return perr.InvalidArgf("diff file not found")
	}
	diff, err := diffPath.ReadFile()
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read diff %s", diffPath)
	}

	list, err := index.Load(paths.New(o.RepoPath, o.ListName))
	if err != nil {
		return err
	}

	r, err := rules.Load(o.RulesPath)
	if err != nil {
		return err
	}

	deps := modkit.NewDeps()
	m := module.Publish(admission.New(deps.Named("admission"), admission.Options{
		Concurrency: o.Concurrency,
		Timeout:     o.Timeout,
	}, r))

	bi := version.Info(serviceName)
	shutdown, err := tracing.Init(ctx, tracing.Options{
		Exporter: m.Options().TraceExporter,
		Service:  serviceName,
		Version:  bi.Version,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if serr := shutdown(sctx); serr != nil {
			log.Warn().Err(serr).Msg("tracer shutdown failed")
		}
	}()

	log.Info().
		Str("version", bi.Version).
		Int("access_entries", acl.Len()).
		Int("listed", list.Len()).
		Strs("modules", module.Names()).
		Msg("inputs loaded")

	ev := module.MustPortsOf[domain.EvaluatorPort](m)
	v, err := ev.Evaluate(ctx, domain.Request{
		Diff:      diff,
		ListName:  o.ListName,
		Submitter: o.Submitter,
		Index:     list,
		Access:    acl,
	})
	if err != nil {
		return err
	}
	return domain.Encode(stdout, v)
}
