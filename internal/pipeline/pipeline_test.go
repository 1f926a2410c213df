package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/promiseofcake/dependaslack/internal/report"
	"github.com/promiseofcake/dependaslack/internal/scm"
	"github.com/slack-go/slack"
	"go.uber.org/zap/zaptest"
)

type fakeFetcher struct {
	prs   []scm.PRInfo
	err   error
	panic any

	queries []scm.DependencyUpdateQuery
}

func (f *fakeFetcher) GetDependabotPRs(_ context.Context, q scm.DependencyUpdateQuery) ([]scm.PRInfo, error) {
	f.queries = append(f.queries, q)
	if f.panic != nil {
		panic(f.panic)
	}
	return f.prs, f.err
}

type fakePublisher struct {
	err   error
	panic any

	published [][]slack.Block
}

func (f *fakePublisher) Publish(_ context.Context, blocks []slack.Block) error {
	f.published = append(f.published, blocks)
	if f.panic != nil {
		panic(f.panic)
	}
	return f.err
}

func sectionTexts(blocks []slack.Block) []string {
	var out []string
	for _, b := range blocks {
		if s, ok := b.(*slack.SectionBlock); ok {
			out = append(out, s.Text.Text)
		}
	}
	return out
}

func TestRun(t *testing.T) {
	fetcher := &fakeFetcher{prs: []scm.PRInfo{
		{Title: "Bump lodash", URL: "https://github.com/acme/a/pull/1", Repo: "acme/a"},
	}}
	publisher := &fakePublisher{}
	q := scm.DependencyUpdateQuery{Repositories: []string{"acme/a", "acme/b"}}

	if err := New(fetcher, publisher, zaptest.NewLogger(t)).Run(context.Background(), q); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff([]scm.DependencyUpdateQuery{q}, fetcher.queries); diff != "" {
		t.Errorf("fetch queries mismatch (-want +got):\n%s", diff)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(publisher.published))
	}

	blocks := publisher.published[0]
	if len(blocks) != 4 {
		t.Fatalf("published %d blocks, want 4", len(blocks))
	}
	if _, ok := blocks[1].(*slack.DividerBlock); !ok {
		t.Errorf("block 1 = %T, want *slack.DividerBlock", blocks[1])
	}
	want := []string{report.HeaderText, "*acme/a*", "• <https://github.com/acme/a/pull/1|Bump lodash>"}
	if diff := cmp.Diff(want, sectionTexts(blocks)); diff != "" {
		t.Errorf("published texts mismatch (-want +got):\n%s", diff)
	}
}

func TestRunNothingOpenStillPublishes(t *testing.T) {
	publisher := &fakePublisher{}

	if err := New(&fakeFetcher{}, publisher, zaptest.NewLogger(t)).Run(context.Background(), scm.DependencyUpdateQuery{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(publisher.published))
	}
	if diff := cmp.Diff([]string{report.EmptyText}, sectionTexts(publisher.published[0])); diff != "" {
		t.Errorf("published texts mismatch (-want +got):\n%s", diff)
	}
	if len(publisher.published[0]) != 1 {
		t.Errorf("published %d blocks, want 1", len(publisher.published[0]))
	}
}

func TestRunFetchFailure(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name    string
		fetcher *fakeFetcher
		want    string
	}{
		{name: "error", fetcher: &fakeFetcher{err: cause}, want: "connection refused"},
		{name: "panic with value", fetcher: &fakeFetcher{panic: "boom"}, want: "panic during fetch: boom"},
		{name: "panic with error", fetcher: &fakeFetcher{panic: cause}, want: "panic during fetch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &fakePublisher{}

			err := New(tt.fetcher, publisher, zaptest.NewLogger(t)).Run(context.Background(), scm.DependencyUpdateQuery{})

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("Run() error = %v, want *FetchError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Run() error = %v, want it to contain %q", err, tt.want)
			}
			if tt.fetcher.err != nil && !errors.Is(err, tt.fetcher.err) {
				t.Errorf("Run() error does not wrap the fetch cause")
			}
			if len(publisher.published) != 0 {
				t.Errorf("publisher invoked %d times after failed fetch", len(publisher.published))
			}
		})
	}
}

func TestRunPublishFailure(t *testing.T) {
	cause := errors.New("channel_not_found")

	tests := []struct {
		name      string
		publisher *fakePublisher
		want      string
	}{
		{name: "error", publisher: &fakePublisher{err: cause}, want: "channel_not_found"},
		{name: "panic", publisher: &fakePublisher{panic: "boom"}, want: "panic during publish: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(&fakeFetcher{}, tt.publisher, zaptest.NewLogger(t)).Run(context.Background(), scm.DependencyUpdateQuery{})

			var publishErr *PublishError
			if !errors.As(err, &publishErr) {
				t.Fatalf("Run() error = %v, want *PublishError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Run() error = %v, want it to contain %q", err, tt.want)
			}
			if tt.publisher.err != nil && !errors.Is(err, tt.publisher.err) {
				t.Errorf("Run() error does not wrap the publish cause")
			}
		})
	}
}
