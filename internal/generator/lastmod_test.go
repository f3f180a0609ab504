package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-site/pkg/interfaces"
)

func TestGitLastModParsesCommitDate(t *testing.T) {
	var gotArgs []string
	resolver := &GitLastMod{dir: "content", run: func(_ context.Context, dir string, args ...string) ([]byte, error) {
		if dir != "content" {
			t.Fatalf("expected git to run in content, got %s", dir)
		}
		gotArgs = args
		return []byte("2024-05-06T07:08:09+02:00\n"), nil
	}}

	when, err := resolver.LastModified(context.Background(), "about.md")
	if err != nil {
		t.Fatalf("LastModified: %v", err)
	}
	if !when.Equal(time.Date(2024, 5, 6, 5, 8, 9, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", when)
	}
	if len(gotArgs) != 5 || gotArgs[0] != "log" || gotArgs[4] != "about.md" {
		t.Fatalf("unexpected git args %v", gotArgs)
	}
}

func TestGitLastModUntrackedFile(t *testing.T) {
	resolver := &GitLastMod{run: func(context.Context, string, ...string) ([]byte, error) {
		return []byte("\n"), nil
	}}
	when, err := resolver.LastModified(context.Background(), "new.md")
	if err != nil || !when.IsZero() {
		t.Fatalf("expected zero time without error, got %v %v", when, err)
	}
}

func TestLastModifiedFallbackChain(t *testing.T) {
	build := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	failing := &GitLastMod{run: func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("not a git repository")
	}}
	svc := NewService(Config{}, Dependencies{LastMod: failing}).(*service)

	page := &PageData{Document: testDocument("a.md", pageFrontMatter(updated, date), "")}
	if got := svc.lastModified(context.Background(), page, build); !got.Equal(updated) {
		t.Fatalf("expected updated, got %v", got)
	}
	page = &PageData{Document: testDocument("a.md", pageFrontMatter(time.Time{}, date), "")}
	if got := svc.lastModified(context.Background(), page, build); !got.Equal(date) {
		t.Fatalf("expected date, got %v", got)
	}
	page = &PageData{Document: testDocument("a.md", pageFrontMatter(time.Time{}, time.Time{}), "")}
	if got := svc.lastModified(context.Background(), page, build); !got.Equal(build) {
		t.Fatalf("expected build time, got %v", got)
	}
}

func pageFrontMatter(updated, date time.Time) interfaces.FrontMatter {
	return interfaces.FrontMatter{Updated: updated, Date: date, Sitemap: true}
}
