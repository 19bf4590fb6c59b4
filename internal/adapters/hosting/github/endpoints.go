package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	perr "registrygate/internal/platform/errors"
)

// ErrNotFound is returned when the repository or file does not exist
var ErrNotFound = perr.New(perr.ErrorCodeNotFound, "github resource not found")

const maxTagPages = 10

// Tag is a partial tag document
type Tag struct {
	Name string `json:"name"`
}

// RepoTags lists tag names of owner/repo, following pagination up to a bound
func (c *Client) RepoTags(ctx context.Context, owner, repo string) ([]string, error) {
	var names []string
	for page := 1; page <= maxTagPages; page++ {
		p := fmt.Sprintf("/repos/%s/%s/tags?per_page=100&page=%d", url.PathEscape(owner), url.PathEscape(repo), page)
		var batch []Tag
		found, err := c.getJSON(ctx, p, &batch)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrNotFound
		}
		for _, t := range batch {
			names = append(names, t.Name)
		}
		if len(batch) < 100 {
			break
		}
	}
	return names, nil
}

// RepoContent returns the raw bytes of path at ref ("" = default branch)
func (c *Client) RepoContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	p := fmt.Sprintf("/repos/%s/%s/contents/%s", url.PathEscape(owner), url.PathEscape(repo), strings.TrimLeft(path, "/"))
	if ref != "" {
		p += "?ref=" + url.QueryEscape(ref)
	}
	resp, err := c.Do(ctx, http.MethodGet, p, "application/vnd.github.raw+json")
	if err != nil {
		return nil, err
	}
	defer c.closeBody(resp, p)
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "github read contents")
	}
	return b, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) (bool, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, "")
	if err != nil {
		return false, err
	}
	defer c.closeBody(resp, path)
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, perr.Wrap(err, perr.ErrorCodeUnavailable, "github read body")
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, perr.Wrap(err, perr.ErrorCodeParse, "github decode body")
	}
	return true, nil
}

func (c *Client) closeBody(resp *http.Response, path string) {
	if cerr := resp.Body.Close(); cerr != nil {
		c.log.Error().Err(cerr).Str("path", path).Msg("github close body failed")
	}
}
