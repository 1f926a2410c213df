package scm

// DependencyUpdateQuery contains parameters for querying dependency PRs
type DependencyUpdateQuery struct {
	Repositories   []string // "owner/name" entries, searched together
	DeniedPackages []string // List of package names to exclude
	DeniedOrgs     []string // List of organization names to exclude (e.g., "datadog")
}

// PRInfo contains information about an open Dependabot pull request
type PRInfo struct {
	Title string
	URL   string // web URL of the PR
	Repo  string // "owner/name"
}
