package githubapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v66/github"

	"github.com/reviewlens/reviewlens/pkg/types"
)

// RemoteFile is one entry of a repository's remote file listing.
type RemoteFile struct {
	Path string
	Size int64
}

// Provider is the source repository boundary consumed by the indexing
// core. Rate-limit and retry handling live behind this interface, not in
// the callers.
type Provider interface {
	// ListFiles returns the full recursive file listing of the default
	// branch, blobs only.
	ListFiles(ctx context.Context, owner, repo string) ([]RemoteFile, error)

	// GetFileContent fetches the raw bytes of one file.
	GetFileContent(ctx context.Context, owner, repo, path string) ([]byte, error)

	// GetLanguages returns the per-language byte counts reported by the
	// provider.
	GetLanguages(ctx context.Context, owner, repo string) (map[string]int64, error)
}

// Client implements Provider against the GitHub REST API.
type Client struct {
	gh    *github.Client
	retry RetryConfig
	log   *slog.Logger
}

// NewClient builds a token-authenticated GitHub client. baseURL is empty
// for github.com or points at a GitHub Enterprise instance.
func NewClient(token, baseURL string, logger *slog.Logger) (*Client, error) {
	gh := github.NewClient(nil)
	if baseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base URL: %v", types.ErrConfiguration, err)
		}
	}
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		gh:    gh,
		retry: DefaultRetryConfig(),
		log:   logger,
	}, nil
}

func (c *Client) ListFiles(ctx context.Context, owner, repo string) ([]RemoteFile, error) {
	tree, err := retryWithBackoff(ctx, c.retry, func() (*github.Tree, error) {
		rep, _, err := c.gh.Repositories.Get(ctx, owner, repo)
		if err != nil {
			return nil, err
		}
		tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, rep.GetDefaultBranch(), true)
		return tree, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list files %s/%s: %v", types.ErrProvider, owner, repo, err)
	}

	if tree.GetTruncated() {
		// GitHub truncates very large trees; the listing is still usable
		// but incomplete.
		c.log.Warn("remote tree listing truncated by provider", "owner", owner, "repo", repo)
	}

	files := make([]RemoteFile, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		files = append(files, RemoteFile{
			Path: entry.GetPath(),
			Size: int64(entry.GetSize()),
		})
	}
	return files, nil
}

func (c *Client) GetFileContent(ctx context.Context, owner, repo, path string) ([]byte, error) {
	content, err := retryWithBackoff(ctx, c.retry, func() ([]byte, error) {
		rc, _, err := c.gh.Repositories.DownloadContents(ctx, owner, repo, path, nil)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()
		return io.ReadAll(rc)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get content %s/%s %s: %v", types.ErrProvider, owner, repo, path, err)
	}
	return content, nil
}

func (c *Client) GetLanguages(ctx context.Context, owner, repo string) (map[string]int64, error) {
	langs, err := retryWithBackoff(ctx, c.retry, func() (map[string]int, error) {
		langs, _, err := c.gh.Repositories.ListLanguages(ctx, owner, repo)
		return langs, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list languages %s/%s: %v", types.ErrProvider, owner, repo, err)
	}

	result := make(map[string]int64, len(langs))
	for lang, bytes := range langs {
		result[lang] = int64(bytes)
	}
	return result, nil
}

// isRetryable reports whether a GitHub API error is worth retrying:
// rate limits and server-side failures, but never auth or not-found.
func isRetryable(err error) bool {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode >= http.StatusInternalServerError
	}
	return false
}
