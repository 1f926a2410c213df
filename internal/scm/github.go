package scm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v72/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the public GitHub REST API root
	DefaultBaseURL = "https://api.github.com/"

	dependabotAuthor = "app/dependabot"
	searchPerPage    = 100
)

type githubClient struct {
	client *github.Client
	logger *zap.Logger
}

// Option configures a githubClient
type Option func(*githubClient) error

// WithBaseURL points the client at a GitHub Enterprise or test API root.
// An empty value keeps the default.
func WithBaseURL(baseURL string) Option {
	return func(g *githubClient) error {
		if baseURL == "" {
			return nil
		}
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
		}
		g.client.BaseURL = u
		return nil
	}
}

// WithLogger sets the logger used for skipped results
func WithLogger(logger *zap.Logger) Option {
	return func(g *githubClient) error {
		g.logger = logger
		return nil
	}
}

// NewGithubClient returns a client authenticating with token on top of the
// transport of client.
func NewGithubClient(ctx context.Context, client *http.Client, token string, opts ...Option) (*githubClient, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})

	g := &githubClient{
		client: github.NewClient(oauth2.NewClient(ctx, ts)),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ReposPrefix is the API URL prefix that precedes "owner/name" in a
// repository_url returned by the search endpoint.
func (g *githubClient) ReposPrefix() string {
	return g.client.BaseURL.String() + "repos/"
}

// BuildSearchQuery returns the issue search query matching open Dependabot
// PRs in any of repos.
func BuildSearchQuery(repos []string) string {
	terms := []string{"state:open", "type:pr", "author:" + dependabotAuthor}
	for _, r := range repos {
		terms = append(terms, "repo:"+r)
	}
	return strings.Join(terms, " ")
}

// RepoFromAPIURL strips prefix from a repository API URL, returning the
// "owner/name" part. ok is false when apiURL does not start with prefix or
// nothing follows it.
func RepoFromAPIURL(prefix, apiURL string) (repo string, ok bool) {
	repo, ok = strings.CutPrefix(apiURL, prefix)
	if !ok || repo == "" {
		return "", false
	}
	return repo, true
}

// SearchDependabotPRs issues a single search for open Dependabot PRs across
// repos. Items are returned in API order; items missing a title, URL or a
// recognizable repository URL are skipped.
func (g *githubClient) SearchDependabotPRs(ctx context.Context, repos []string) ([]PRInfo, error) {
	query := BuildSearchQuery(repos)

	result, _, err := g.client.Search.Issues(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{
			PerPage: searchPerPage,
		},
	})
	if err != nil {
		return nil, err
	}

	if result.GetIncompleteResults() {
		g.logger.Warn("search results are incomplete", zap.String("query", query))
	}

	prefix := g.ReposPrefix()
	prs := make([]PRInfo, 0, len(result.Issues))
	for _, issue := range result.Issues {
		repo, ok := RepoFromAPIURL(prefix, issue.GetRepositoryURL())
		if !ok || issue.GetTitle() == "" || issue.GetHTMLURL() == "" {
			g.logger.Warn("skipping malformed search result",
				zap.String("title", issue.GetTitle()),
				zap.String("html_url", issue.GetHTMLURL()),
				zap.String("repository_url", issue.GetRepositoryURL()),
			)
			continue
		}

		prs = append(prs, PRInfo{
			Title: issue.GetTitle(),
			URL:   issue.GetHTMLURL(),
			Repo:  repo,
		})
	}

	return prs, nil
}

// GetDependabotPRs returns the open Dependabot PRs for q with denied
// packages and organizations removed
func (g *githubClient) GetDependabotPRs(ctx context.Context, q DependencyUpdateQuery) ([]PRInfo, error) {
	prs, err := g.SearchDependabotPRs(ctx, q.Repositories)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("found dependabot pull requests", zap.Int("pull_requests", len(prs)))

	return filterDenied(prs, q.DeniedPackages, q.DeniedOrgs, g.logger), nil
}
