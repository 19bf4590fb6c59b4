package domain

import (
	"context"
	"net/url"
)

// EvaluatorPort turns a pull request event into a verdict. Rejections are
// part of the verdict; the error is reserved for cancellation
type EvaluatorPort interface {
	Evaluate(ctx context.Context, req Request) (Verdict, error)
}

// Transport is the network capability used to inspect repositories
type Transport interface {
	// Resolve follows redirects and returns the final location. A missing
	// or private repository, or a timeout, is ErrUnreachable
	Resolve(ctx context.Context, u *url.URL) (*url.URL, error)
	// Probe confirms cloneURL serves a Git repository, else ErrNotCloneable
	Probe(ctx context.Context, cloneURL string) error
	// Tags lists the repository tag names
	Tags(ctx context.Context, cloneURL string) ([]string, error)
	// ReadFile returns path at ref ("" = default branch), else ErrFileNotFound
	ReadFile(ctx context.Context, cloneURL, ref, path string) ([]byte, error)
}
