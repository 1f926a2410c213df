package scm

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// titlePatterns match the package name in the Dependabot title formats seen
// in the wild; the first submatch is the package.
var titlePatterns = []*regexp.Regexp{
	// "⬆️ (deps): Bump package from x to y"
	regexp.MustCompile(`(?i)⬆️\s+\(deps\):\s+bump\s+(\S+)\s+(?:from|to)`),
	// "⬆️ (deps): Bump the aws-sdk-go-v2 group with N updates"
	regexp.MustCompile(`(?i)⬆️\s+\(deps\):\s+bump\s+the\s+(\S+)\s+group`),
	// "Bump package from x to y", "Update package to y"
	regexp.MustCompile(`(?i)^(?:bump|update)\s+(\S+)\s+(?:from|to)`),
	// "chore(deps): bump package from x to y"
	regexp.MustCompile(`(?i)^chore.*bump\s+(\S+)\s+(?:from|to)`),
	// "Bump the npm group across 2 directories with 3 updates"
	regexp.MustCompile(`(?i)^bump\s+the\s+(\S+)\s+group`),
}

// extractPackageInfo extracts package name and organization from a Dependabot PR title
// Examples:
// "Bump github.com/datadog/datadog-go from 1.0.0 to 2.0.0" -> "github.com/datadog/datadog-go", "datadog"
// "Bump @datadog/browser-rum from 4.0.0 to 5.0.0" -> "@datadog/browser-rum", "datadog"
// "Update rails to 7.0.0" -> "rails", ""
func extractPackageInfo(title string) (packageName string, orgName string) {
	for _, re := range titlePatterns {
		if m := re.FindStringSubmatch(title); len(m) > 1 {
			packageName = m[1]
			break
		}
	}

	if packageName == "" {
		// Fall back to the first package-looking word after the verb
		fields := strings.Fields(title)
		for i := 1; i < len(fields); i++ {
			if strings.ContainsAny(fields[i], "/@") {
				packageName = fields[i]
				break
			}
		}
	}

	return packageName, orgFromPackage(packageName)
}

// orgFromPackage returns the owning organization of a package path, or ""
// when the path has none.
func orgFromPackage(pkg string) string {
	parts := strings.Split(pkg, "/")
	if len(parts) < 2 {
		return ""
	}

	switch {
	case strings.HasPrefix(pkg, "@"):
		// scoped npm package: @org/name
		return strings.TrimPrefix(parts[0], "@")
	case strings.HasPrefix(pkg, "golang.org/x/"), strings.HasPrefix(pkg, "google.golang.org/"):
		return ""
	case strings.HasPrefix(pkg, "gopkg.in/"):
		// gopkg.in/DataDog/dd-trace-go.v1 -> datadog, gopkg.in/mgo.v2 -> ""
		if len(parts) > 2 {
			return strings.ToLower(parts[1])
		}
		return ""
	case strings.HasPrefix(pkg, "github.com/"):
		if len(parts) >= 3 {
			return parts[1]
		}
		return ""
	}

	for _, part := range parts[1:] {
		if !strings.Contains(part, ".") && !strings.HasPrefix(part, "v") {
			return part
		}
	}
	return ""
}

// matchWildcard reports whether name matches pattern, where '*' matches any
// run of characters including '/'. Matching is case-insensitive.
func matchWildcard(pattern, name string) bool {
	expr := "(?i)^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*") + "$"
	re, err := regexp.Compile(expr)
	if err != nil {
		return false
	}
	return re.MatchString(name)
}

// denyReason returns why a package or organization is denied, or "" when it
// is allowed.
func denyReason(packageName, orgName string, deniedPackages, deniedOrgs []string) string {
	pkg := strings.ToLower(packageName)

	for _, denied := range deniedPackages {
		d := strings.ToLower(denied)
		switch {
		case strings.Contains(d, "*"):
			if pkg != "" && matchWildcard(d, pkg) {
				return fmt.Sprintf("package matches '%s'", denied)
			}
		case strings.Contains(d, "@"):
			// versioned denial: github.com/gin-gonic/gin@v1 denies gin@v1.7.0
			if strings.Contains(pkg, d) {
				return fmt.Sprintf("package '%s' is denied", denied)
			}
		default:
			// exact only, so aws-sdk-go does not deny aws-sdk-go-v2
			base, _, _ := strings.Cut(pkg, "@")
			if pkg == d || base == d {
				return fmt.Sprintf("package '%s' is denied", denied)
			}
		}
	}

	if orgName != "" {
		for _, denied := range deniedOrgs {
			if strings.EqualFold(orgName, denied) {
				return fmt.Sprintf("org '%s' is denied", orgName)
			}
		}
	}

	return ""
}

// isDenied checks if a package or organization is in the deny list
func isDenied(packageName, orgName string, deniedPackages, deniedOrgs []string) bool {
	return denyReason(packageName, orgName, deniedPackages, deniedOrgs) != ""
}

// filterDenied drops PRs whose package or organization is denied. With both
// lists empty prs is returned unchanged.
func filterDenied(prs []PRInfo, deniedPackages, deniedOrgs []string, logger *zap.Logger) []PRInfo {
	if len(deniedPackages) == 0 && len(deniedOrgs) == 0 {
		return prs
	}

	kept := make([]PRInfo, 0, len(prs))
	for _, pr := range prs {
		packageName, orgName := extractPackageInfo(pr.Title)
		if reason := denyReason(packageName, orgName, deniedPackages, deniedOrgs); reason != "" {
			logger.Info("skipping denied pull request",
				zap.String("repository", pr.Repo),
				zap.String("title", pr.Title),
				zap.String("reason", reason),
			)
			continue
		}
		kept = append(kept, pr)
	}
	return kept
}
