package hosting

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
	"strings"

	"registrygate/internal/adapters/hosting/github"
	perr "registrygate/internal/platform/errors"
	"registrygate/internal/platform/tracing"
	"registrygate/internal/services/admission/domain"

	"github.com/arduino/go-paths-helper"
	"go.opentelemetry.io/otel/attribute"
)

// runGit executes git and returns its stdout. Swapped in tests
var runGit = func(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	// never block on a credential prompt for private repositories
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "GIT_ASKPASS=true")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return out, perr.Wrapf(cerr, perr.ErrorCodeTimeout, "git %s", args[0])
		}
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return out, perr.Wrapf(err, perr.ErrorCodeUnavailable, "git %s: %s", args[0], strings.TrimSpace(stderr.String()))
		}
		return out, perr.Wrapf(err, perr.ErrorCodeConfig, "run %s", bin)
	}
	return out, nil
}

// Probe confirms cloneURL serves a Git repository
func (t *Transport) Probe(ctx context.Context, cloneURL string) (err error) {
	ctx, span := tracing.Start(ctx, "hosting", "hosting.probe", attribute.String("url", cloneURL))
	defer func() { tracing.End(span, err) }()

	if err := t.wait(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeTimeout, "rate limiter wait")
	}
	if _, err := runGit(ctx, t.opts.GitBin, "ls-remote", "--quiet", "--heads", cloneURL); err != nil {
		if perr.IsCode(err, perr.ErrorCodeConfig) || perr.IsCode(err, perr.ErrorCodeTimeout) {
			return err
		}
		t.log.Debug().Err(err).Str("url", cloneURL).Msg("ls-remote failed")
		return perr.Wrapf(domain.ErrNotCloneable, perr.ErrorCodeNotFound, "probe %s", cloneURL)
	}
	return nil
}

// Tags lists tag names, sorted
func (t *Transport) Tags(ctx context.Context, cloneURL string) (_ []string, err error) {
	ctx, span := tracing.Start(ctx, "hosting", "hosting.tags", attribute.String("url", cloneURL))
	defer func() { tracing.End(span, err) }()

	if err := t.wait(ctx); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeTimeout, "rate limiter wait")
	}
	if owner, repo, ok := t.githubRepo(cloneURL); ok {
		tags, err := t.gh.RepoTags(ctx, owner, repo)
		if err == nil {
			sort.Strings(tags)
			return tags, nil
		}
		t.log.Warn().Err(err).Str("url", cloneURL).Msg("github tags failed, falling back to git")
	}

	out, err := runGit(ctx, t.opts.GitBin, "ls-remote", "--quiet", "--tags", "--refs", cloneURL)
	if err != nil {
		return nil, err
	}
	return parseTagRefs(out), nil
}

// parseTagRefs extracts tag names from ls-remote output ("<sha>\trefs/tags/<name>")
func parseTagRefs(out []byte) []string {
	var tags []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		_, ref, ok := strings.Cut(sc.Text(), "\t")
		if !ok {
			continue
		}
		if name, ok := strings.CutPrefix(strings.TrimSpace(ref), "refs/tags/"); ok && name != "" {
			tags = append(tags, name)
		}
	}
	sort.Strings(tags)
	return tags
}

// ReadFile returns path at ref from the repository
func (t *Transport) ReadFile(ctx context.Context, cloneURL, ref, path string) (_ []byte, err error) {
	ctx, span := tracing.Start(ctx, "hosting", "hosting.read_file",
		attribute.String("url", cloneURL), attribute.String("ref", ref), attribute.String("path", path))
	defer func() { tracing.End(span, err) }()

	if err := t.wait(ctx); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeTimeout, "rate limiter wait")
	}
	if owner, repo, ok := t.githubRepo(cloneURL); ok {
		b, err := t.gh.RepoContent(ctx, owner, repo, path, ref)
		switch {
		case err == nil:
			return b, nil
		case errors.Is(err, github.ErrNotFound):
			return nil, perr.Wrapf(domain.ErrFileNotFound, perr.ErrorCodeNotFound, "%s not found", path)
		default:
			t.log.Warn().Err(err).Str("url", cloneURL).Msg("github contents failed, falling back to git")
		}
	}

	dir, err := paths.MkTempDir("", "registrygate-")
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "create clone dir")
	}
	defer func() {
		if rerr := dir.RemoveAll(); rerr != nil {
			t.log.Warn().Err(rerr).Str("dir", dir.String()).Msg("clone dir cleanup failed")
		}
	}()

	args := []string{"clone", "--quiet", "--depth", "1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, cloneURL, dir.String())
	if _, err := runGit(ctx, t.opts.GitBin, args...); err != nil {
		return nil, err
	}

	file := dir.Join(path)
	if !file.Exist() {
		return nil, perr.Wrapf(domain.ErrFileNotFound, perr.ErrorCodeNotFound, "%s not found", path)
	}
	b, err := file.ReadFile()
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "read %s", path)
	}
	return b, nil
}
