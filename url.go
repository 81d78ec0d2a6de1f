package apifit

import (
	"net/url"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{([^{}/?&=]+)\}`)

// findPlaceholders returns the {name} placeholders of a URL template
// in order of appearance.
func findPlaceholders(template string) []string {
	matches := placeholderRe.FindAllStringSubmatch(template, -1)
	result := make([]string, 0, len(matches))
	for _, m := range matches {
		result = append(result, m[1])
	}
	return result
}

// substituteTemplate replaces {name} placeholders with stringified
// bound arguments. Values in the path part are path-escaped, values in
// the query part are query-escaped, so the result always parses.
// Unknown placeholders cannot occur here: validate rejects them at
// declaration time.
func substituteTemplate(template string, args Args) string {
	pathPart, queryPart, hasQuery := strings.Cut(template, "?")
	pathPart = placeholderRe.ReplaceAllStringFunc(pathPart, func(m string) string {
		name := m[1 : len(m)-1]
		return url.PathEscape(args.String(name))
	})
	if !hasQuery {
		return pathPart
	}
	queryPart = placeholderRe.ReplaceAllStringFunc(queryPart, func(m string) string {
		name := m[1 : len(m)-1]
		return url.QueryEscape(args.String(name))
	})
	return pathPart + "?" + queryPart
}

// joinBaseURL joins the base URL with a relative path so that exactly
// one "/" separates them: a trailing "/" on the base and a leading "/"
// on the path collapse, and if neither side has one, "/" is inserted.
func joinBaseURL(baseURL, path string) string {
	if path == "" {
		return baseURL
	}
	slashBase := strings.HasSuffix(baseURL, "/")
	slashPath := strings.HasPrefix(path, "/")
	switch {
	case slashBase && slashPath:
		return baseURL + path[1:]
	case !slashBase && !slashPath:
		return baseURL + "/" + path
	default:
		return baseURL + path
	}
}
