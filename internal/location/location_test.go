package location

import (
	"errors"
	"testing"

	"github.com/danmuck/microsync/internal/testutil/testlog"
)

func TestFromHref(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		href string
		want Location
	}{
		{"https://host/page?other=1", Location{Pathname: "/page", Search: "?other=1"}},
		{"https://host/page#/home", Location{Pathname: "/page", Hash: "#/home"}},
		{"https://host", Location{Pathname: "/"}},
		{"https://host?x=1#/a?b=2", Location{Pathname: "/", Search: "?x=1", Hash: "#/a?b=2"}},
		{"/local/path?#", Location{Pathname: "/local/path"}},
		{"https://host/p#/h?app=%2Fa%25M1", Location{Pathname: "/p", Hash: "#/h?app=%2Fa%25M1"}},
	}
	for _, tc := range cases {
		if got := FromHref(tc.href); got != tc.want {
			t.Fatalf("FromHref(%q) = %+v want %+v", tc.href, got, tc.want)
		}
	}
}

func TestFullPath(t *testing.T) {
	testlog.Start(t)
	loc := Location{Pathname: "/p", Search: "?a=1", Hash: "#/h"}
	if got := loc.FullPath(); got != "/p?a=1#/h" {
		t.Fatalf("unexpected full path: %q", got)
	}
}

func TestResolveDropsHash(t *testing.T) {
	testlog.Start(t)
	got, err := Resolve("/child/page?x=1#frag", "https://host:8443/base/")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := Resolved{Origin: "https://host:8443", Pathname: "/child/page", Search: "?x=1"}
	if got != want {
		t.Fatalf("resolve mismatch: %+v", got)
	}
	if got.String() != "https://host:8443/child/page?x=1" {
		t.Fatalf("unexpected string: %q", got.String())
	}
}

func TestResolveRelative(t *testing.T) {
	testlog.Start(t)
	got, err := Resolve("detail", "https://host/app/list")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.String() != "https://host/app/detail" {
		t.Fatalf("unexpected resolve: %q", got.String())
	}
}

func TestResolveEmptyPathIsRoot(t *testing.T) {
	testlog.Start(t)
	got, err := Resolve("", "https://host")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Pathname != "/" || got.Search != "" {
		t.Fatalf("unexpected resolve: %+v", got)
	}
}

func TestResolveRejectsRelativeBase(t *testing.T) {
	testlog.Start(t)
	if _, err := Resolve("/a", "/not/absolute"); !errors.Is(err, ErrNotAbsolute) {
		t.Fatalf("expected ErrNotAbsolute, got %v", err)
	}
}

func TestResolveKeepsStrayPercent(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		path, base, want string
	}{
		{"/100%/x", "https://e.com/", "https://e.com/100%/x"},
		{"/a%2Fb/%?q=5%&r=%25", "https://e.com/", "https://e.com/a%2Fb/%?q=5%&r=%25"},
		{"../b%", "https://e.com/a/c/", "https://e.com/a/b%"},
		{"/x%FF%FE/%", "https://e.com/", "https://e.com/x%FF%FE/%"},
		{"c", "https://e.com/50%/", "https://e.com/50%/c"},
	}
	for _, tc := range cases {
		got, err := Resolve(tc.path, tc.base)
		if err != nil {
			t.Fatalf("resolve(%q, %q): %v", tc.path, tc.base, err)
		}
		if got.String() != tc.want {
			t.Fatalf("resolve(%q, %q) = %q want %q", tc.path, tc.base, got.String(), tc.want)
		}
	}
}
