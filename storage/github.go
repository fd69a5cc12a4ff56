package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/google/go-github/v66/github"
)

// GitHubConfig points the GitHub backend at a directory in a repository.
type GitHubConfig struct {
	Token  string
	Owner  string
	Repo   string
	Branch string
	// Dir is the repository directory holding the documents.
	Dir string
	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string
	// HTTPClient overrides the transport; nil uses a plain client without
	// response caching.
	HTTPClient *http.Client
}

// GitHubBackend stores objects as files committed to a repository through
// the contents API. The blob SHA is the version token; GitHub itself rejects
// updates whose SHA is stale.
type GitHubBackend struct {
	client *github.Client
	owner  string
	repo   string
	branch string
	dir    string
}

func NewGitHubBackend(cfg GitHubConfig) (*GitHubBackend, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, errors.New("github: owner and repo are required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	client := github.NewClient(httpClient)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("github: parse base url: %w", err)
		}
		client.BaseURL = u
	}
	branch := cfg.Branch
	if branch == "" {
		branch = "master"
	}
	return &GitHubBackend{
		client: client,
		owner:  cfg.Owner,
		repo:   cfg.Repo,
		branch: branch,
		dir:    strings.Trim(cfg.Dir, "/"),
	}, nil
}

func (b *GitHubBackend) Name() string { return "github" }

func (b *GitHubBackend) repoPath(key string) string {
	return path.Join(b.dir, key)
}

func (b *GitHubBackend) GetObject(ctx context.Context, key string) (*Object, error) {
	file, _, resp, err := b.client.Repositories.GetContents(ctx, b.owner, b.repo, b.repoPath(key),
		&github.RepositoryContentGetOptions{Ref: b.branch})
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("github: get %s: %w", b.repoPath(key), err)
	}
	if file == nil {
		return nil, fmt.Errorf("github: %s is a directory", b.repoPath(key))
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("github: decode %s: %w", b.repoPath(key), err)
	}
	return &Object{Key: key, Data: []byte(content), Version: file.GetSHA()}, nil
}

func (b *GitHubBackend) PutObject(ctx context.Context, key string, data []byte, expectedVersion string) (string, error) {
	sha := expectedVersion
	switch sha {
	case AbsentVersion:
		// Creating without a SHA fails with 422 when the file exists.
		sha = ""
	case "":
		// Unconditional writes still need the current blob SHA to update.
		current, err := b.GetObject(ctx, key)
		switch {
		case err == nil:
			sha = current.Version
		case !errors.Is(err, ErrNotFound):
			return "", err
		}
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(fmt.Sprintf("Update %s via admin panel", path.Base(key))),
		Content: data,
		Branch:  github.String(b.branch),
	}

	var (
		res  *github.RepositoryContentResponse
		resp *github.Response
		err  error
	)
	if sha == "" {
		res, resp, err = b.client.Repositories.CreateFile(ctx, b.owner, b.repo, b.repoPath(key), opts)
	} else {
		opts.SHA = github.String(sha)
		res, resp, err = b.client.Repositories.UpdateFile(ctx, b.owner, b.repo, b.repoPath(key), opts)
	}
	if resp != nil && (resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity) {
		return "", ErrVersionMismatch
	}
	if err != nil {
		return "", fmt.Errorf("github: put %s: %w", b.repoPath(key), err)
	}
	if res == nil || res.Content == nil {
		return "", fmt.Errorf("github: put %s: empty response", b.repoPath(key))
	}
	return res.Content.GetSHA(), nil
}

func (b *GitHubBackend) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	_, entries, resp, err := b.client.Repositories.GetContents(ctx, b.owner, b.repo, b.dir,
		&github.RepositoryContentGetOptions{Ref: b.branch})
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("github: list %s: %w", b.dir, err)
	}
	var keys []string
	for _, e := range entries {
		if e.GetType() != "file" || !strings.HasPrefix(e.GetName(), prefix) {
			continue
		}
		keys = append(keys, e.GetName())
	}
	sort.Strings(keys)
	return keys, nil
}
