package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Environment variables read by the resolver.
const (
	GithubTokenEnv        = "GITHUB_TOKEN"
	SlackTokenEnv         = "SLACK_TOKEN"
	SlackChannelEnv       = "SLACK_CHANNEL"
	GithubRepositoriesEnv = "GITHUB_REPOSITORIES"

	GithubAPIURLEnv   = "GITHUB_API_URL"
	SlackAPIURLEnv    = "SLACK_API_URL"
	DeniedPackagesEnv = "DENIED_PACKAGES"
	DeniedOrgsEnv     = "DENIED_ORGS"
)

// required lists the mandatory variables in the order they are checked.
var required = []string{
	GithubTokenEnv,
	SlackTokenEnv,
	SlackChannelEnv,
	GithubRepositoriesEnv,
}

var optional = []string{
	GithubAPIURLEnv,
	SlackAPIURLEnv,
	DeniedPackagesEnv,
	DeniedOrgsEnv,
}

// RunConfig is the validated context shared by every step of a run.
type RunConfig struct {
	GithubToken  string
	SlackToken   string
	SlackChannel string
	Repositories []string

	// Optional settings, empty when unset.
	GithubAPIURL   string
	SlackAPIURL    string
	DeniedPackages []string
	DeniedOrgs     []string
}

// MissingError reports a required variable that is unset or empty.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s environment variable is required", e.Name)
}

// Key returns the viper key an environment variable is bound to.
func Key(name string) string {
	return strings.ToLower(name)
}

// Bind registers every variable the resolver reads with v.
func Bind(v *viper.Viper) error {
	for _, name := range append(append([]string{}, required...), optional...) {
		if err := v.BindEnv(Key(name), name); err != nil {
			return fmt.Errorf("failed to bind %s: %w", name, err)
		}
	}
	return nil
}

// ReadEnvFile loads a dotenv file into v. Values already present in the
// process environment take precedence over the file. A missing file is only
// an error when mustExist is set.
func ReadEnvFile(v *viper.Viper, path string, mustExist bool) (bool, error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !mustExist {
			return false, nil
		}
		return false, fmt.Errorf("env file %s: %w", path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return false, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return true, nil
}

// Resolve builds a RunConfig from v. The first missing required variable is
// reported as a *MissingError.
func Resolve(v *viper.Viper) (RunConfig, error) {
	values := make(map[string]string, len(required))
	for _, name := range required {
		value := v.GetString(Key(name))
		if value == "" {
			return RunConfig{}, &MissingError{Name: name}
		}
		values[name] = value
	}

	return RunConfig{
		GithubToken:  values[GithubTokenEnv],
		SlackToken:   values[SlackTokenEnv],
		SlackChannel: values[SlackChannelEnv],
		// No trimming or deduplication: entries are used exactly as given.
		Repositories: strings.Split(values[GithubRepositoriesEnv], ","),

		GithubAPIURL:   v.GetString(Key(GithubAPIURLEnv)),
		SlackAPIURL:    v.GetString(Key(SlackAPIURLEnv)),
		DeniedPackages: splitList(v.GetString(Key(DeniedPackagesEnv))),
		DeniedOrgs:     splitList(v.GetString(Key(DeniedOrgsEnv))),
	}, nil
}

// splitList splits a comma-separated list, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
