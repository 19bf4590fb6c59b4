package hosting

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"

	perr "registrygate/internal/platform/errors"
	"registrygate/internal/platform/tracing"
	"registrygate/internal/services/admission/domain"

	"go.opentelemetry.io/otel/attribute"
)

// Resolve fetches u, following redirects, and returns the final location
func (t *Transport) Resolve(ctx context.Context, u *url.URL) (_ *url.URL, err error) {
	ctx, span := tracing.Start(ctx, "hosting", "hosting.resolve", attribute.String("url", u.String()))
	defer func() { tracing.End(span, err) }()

	if err := t.wait(ctx); err != nil {
		return nil, perr.Wrap(domain.ErrUnreachable, perr.ErrorCodeTimeout, "rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "build resolve request")
	}
	req.Header.Set("User-Agent", t.opts.UserAgent)

	resp, err := t.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, perr.Wrapf(domain.ErrUnreachable, perr.ErrorCodeTimeout, "resolve %s timed out", u)
		}
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "resolve")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	final := resp.Request.URL
	t.log.Debug().Str("url", u.String()).Str("final", final.String()).Int("status", resp.StatusCode).Msg("resolved")
	if resp.StatusCode != http.StatusOK {
		return nil, perr.Wrapf(domain.ErrUnreachable, perr.ErrorCodeNotFound, "resolve %s: status %d", u, resp.StatusCode)
	}
	return final, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
