// Package report renders open Dependabot pull requests as Slack message
// blocks.
package report

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/promiseofcake/dependaslack/internal/scm"
	"github.com/slack-go/slack"
)

const (
	// EmptyText is the whole message when nothing is open.
	EmptyText = "🎉 *No opened dependabot pull request*"
	// HeaderText opens a non-empty report.
	HeaderText = "*Currently opened dependabot pull request:*"
)

// Group holds the pull requests of one repository in fetch order.
type Group struct {
	Repo         string
	PullRequests []scm.PRInfo
}

// GroupByRepo buckets prs by repository. Groups are sorted by repository
// name; each group keeps the relative order of its pull requests.
func GroupByRepo(prs []scm.PRInfo) []Group {
	buckets := make(map[string][]scm.PRInfo)
	for _, pr := range prs {
		buckets[pr.Repo] = append(buckets[pr.Repo], pr)
	}

	groups := make([]Group, 0, len(buckets))
	for _, repo := range slices.Sorted(maps.Keys(buckets)) {
		groups = append(groups, Group{Repo: repo, PullRequests: buckets[repo]})
	}
	return groups
}

// Format renders prs as a Slack message. An empty input yields a single
// celebratory section; otherwise a header, a divider and, per repository,
// a name section followed by a section listing its pull requests.
func Format(prs []scm.PRInfo) []slack.Block {
	if len(prs) == 0 {
		return []slack.Block{section(EmptyText)}
	}

	groups := GroupByRepo(prs)
	blocks := make([]slack.Block, 0, 2+2*len(groups))
	blocks = append(blocks, section(HeaderText), slack.NewDividerBlock())

	for _, g := range groups {
		lines := make([]string, len(g.PullRequests))
		for i, pr := range g.PullRequests {
			lines[i] = fmt.Sprintf("• <%s|%s>", pr.URL, pr.Title)
		}
		blocks = append(blocks,
			section("*"+g.Repo+"*"),
			section(strings.Join(lines, "\n")),
		)
	}

	return blocks
}

func section(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}
