package apifit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindPlaceholders(t *testing.T) {
	cases := []struct {
		template string
		want     []string
	}{
		{
			template: "get",
			want:     []string{},
		},
		{
			template: "get?value={value}",
			want:     []string{"value"},
		},
		{
			template: "basic-auth/{user}/{password}",
			want:     []string{"user", "password"},
		},
		{
			template: "users/{id}/posts?sort={sort}&page={page}",
			want:     []string{"id", "sort", "page"},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.template, func(t *testing.T) {
			require.Equal(t, tc.want, findPlaceholders(tc.template))
		})
	}
}

func TestSubstituteTemplate(t *testing.T) {
	cases := []struct {
		name     string
		template string
		args     map[string]interface{}
		want     string
	}{
		{
			name:     "no placeholders",
			template: "get",
			args:     nil,
			want:     "get",
		},
		{
			name:     "query placeholder",
			template: "get?value={value}",
			args:     map[string]interface{}{"value": 42},
			want:     "get?value=42",
		},
		{
			name:     "path placeholders",
			template: "basic-auth/{user}/{password}",
			args:     map[string]interface{}{"user": "foo", "password": "bar"},
			want:     "basic-auth/foo/bar",
		},
		{
			name:     "path value is path-escaped",
			template: "users/{id}",
			args:     map[string]interface{}{"id": "a/b"},
			want:     "users/a%2Fb",
		},
		{
			name:     "query value is query-escaped",
			template: "get?q={q}",
			args:     map[string]interface{}{"q": "a&b=c"},
			want:     "get?q=a%26b%3Dc",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := substituteTemplate(tc.template, Args{values: tc.args})
			require.Equal(t, tc.want, got)
		})
	}
}

func TestJoinBaseURL(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		path    string
		want    string
	}{
		{
			name:    "base with slash, path without",
			baseURL: "https://httpbin.org/",
			path:    "get",
			want:    "https://httpbin.org/get",
		},
		{
			name:    "base without slash, path without",
			baseURL: "https://httpbin.org",
			path:    "get",
			want:    "https://httpbin.org/get",
		},
		{
			name:    "base with slash, path with",
			baseURL: "https://httpbin.org/",
			path:    "/get",
			want:    "https://httpbin.org/get",
		},
		{
			name:    "base without slash, path with",
			baseURL: "https://httpbin.org",
			path:    "/get",
			want:    "https://httpbin.org/get",
		},
		{
			name:    "empty path",
			baseURL: "https://httpbin.org/",
			path:    "",
			want:    "https://httpbin.org/",
		},
		{
			name:    "base with prefix path",
			baseURL: "https://api.example.com/v2",
			path:    "users",
			want:    "https://api.example.com/v2/users",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, joinBaseURL(tc.baseURL, tc.path))
		})
	}
}
