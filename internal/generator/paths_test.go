package generator

import (
	"testing"

	"github.com/goliatone/go-site/pkg/interfaces"
)

func TestRouteFor(t *testing.T) {
	cases := []struct {
		name string
		path string
		fm   interfaces.FrontMatter
		want string
	}{
		{name: "index", path: "index.md", want: "/"},
		{name: "page", path: "about.md", want: "/about/"},
		{name: "nested index", path: "blog/index.md", want: "/blog/"},
		{name: "nested page", path: "blog/post.md", want: "/blog/post/"},
		{name: "slug replaces file name", path: "blog/post.md", fm: interfaces.FrontMatter{Slug: "first-post"}, want: "/blog/first-post/"},
		{name: "permalink wins", path: "blog/post.md", fm: interfaces.FrontMatter{Slug: "x", Permalink: "/news/launch"}, want: "/news/launch/"},
		{name: "permalink with extension", path: "errors/404.md", fm: interfaces.FrontMatter{Permalink: "404.html"}, want: "/404.html"},
		{name: "dot segments are cleaned", path: "../escape.md", want: "/escape/"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := &interfaces.Document{FilePath: tc.path, FrontMatter: tc.fm}
			if got := routeFor(doc); got != tc.want {
				t.Fatalf("routeFor(%s) = %q, want %q", tc.path, got, tc.want)
			}
		})
	}
}

func TestBuildOutputPath(t *testing.T) {
	cases := map[string]string{
		"/":             "index.html",
		"":              "index.html",
		"/about/":       "about/index.html",
		"/blog/post/":   "blog/post/index.html",
		"/404.html":     "404.html",
		"/../../etc/x/": "etc/x/index.html",
	}
	for route, want := range cases {
		if got := buildOutputPath(route); got != want {
			t.Fatalf("buildOutputPath(%q) = %q, want %q", route, got, want)
		}
	}
}
