// Package bintest is an httpbin-style HTTP server used by tests. It
// echoes back query arguments, headers, cookies and basic auth the way
// httpbin.org does, so client behavior can be asserted end to end
// without network access.
package bintest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request, params map[string]string)

type route struct {
	mask    string
	handler handlerFunc
}

// Handler returns the httpbin-style handler. Supported paths:
//
//	/get                          echo args, headers, origin, url
//	/anything                     echo method, args, headers, url, body
//	/cookies                      echo cookies
//	/basic-auth/{user}/{password} check basic auth
//	/status/{code}                reply with the given status
//	/delay/{seconds}              sleep, then behave like /get
func Handler() http.Handler {
	cl := newClassifier([]route{
		{mask: "/get", handler: handleGet},
		{mask: "/anything", handler: handleAnything},
		{mask: "/cookies", handler: handleCookies},
		{mask: "/basic-auth/{user}/{password}", handler: handleBasicAuth},
		{mask: "/status/{code}", handler: handleStatus},
		{mask: "/delay/{seconds}", handler: handleDelay},
	})
	return cl
}

type classifier struct {
	routes         []route
	maskPartsArray [][]string
	paramsArray    [][]bool
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	for len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func newClassifier(routes []route) *classifier {
	maskPartsArray := make([][]string, 0, len(routes))
	paramsArray := make([][]bool, 0, len(routes))
	for _, route := range routes {
		parts := splitPath(route.mask)
		params := make([]bool, len(parts))
		for i, part := range parts {
			if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
				parts[i] = part[1 : len(part)-1]
				params[i] = true
			}
		}
		maskPartsArray = append(maskPartsArray, parts)
		paramsArray = append(paramsArray, params)
	}
	return &classifier{
		routes:         routes,
		maskPartsArray: maskPartsArray,
		paramsArray:    paramsArray,
	}
}

func match(pathParts, maskParts []string, params []bool) (bool, map[string]string) {
	if len(pathParts) != len(maskParts) {
		return false, nil
	}
	for i := range pathParts {
		if !params[i] && pathParts[i] != maskParts[i] {
			return false, nil
		}
	}
	param2value := make(map[string]string)
	for i := range pathParts {
		if params[i] {
			param2value[maskParts[i]] = pathParts[i]
		}
	}
	return true, param2value
}

func (c *classifier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pathParts := splitPath(r.URL.Path)
	for i, maskParts := range c.maskPartsArray {
		if ok, param2value := match(pathParts, maskParts, c.paramsArray[i]); ok {
			c.routes[i].handler(w, r, param2value)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"error": fmt.Sprintf("no route for %s", r.URL.Path),
	})
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func firstValues(values map[string][]string) map[string]string {
	result := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			result[k] = vs[0]
		}
	}
	return result
}

func headerMap(h http.Header) map[string]string {
	return firstValues(map[string][]string(h))
}

func handleGet(w http.ResponseWriter, r *http.Request, params map[string]string) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"args":    firstValues(r.URL.Query()),
		"headers": headerMap(r.Header),
		"origin":  r.RemoteAddr,
		"url":     r.URL.String(),
	})
}

func handleAnything(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"method":  r.Method,
		"args":    firstValues(r.URL.Query()),
		"headers": headerMap(r.Header),
		"url":     r.URL.String(),
		"json":    body,
	})
}

func handleCookies(w http.ResponseWriter, r *http.Request, params map[string]string) {
	cookies := map[string]string{}
	for _, cookie := range r.Cookies() {
		cookies[cookie.Name] = cookie.Value
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cookies": cookies,
	})
}

func handleBasicAuth(w http.ResponseWriter, r *http.Request, params map[string]string) {
	user, password, ok := r.BasicAuth()
	if !ok || user != params["user"] || password != params["password"] {
		w.Header().Set("WWW-Authenticate", `Basic realm="bintest"`)
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"error": "unauthorized",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          user,
	})
}

func handleStatus(w http.ResponseWriter, r *http.Request, params map[string]string) {
	code, err := strconv.Atoi(params["code"])
	if err != nil || code < 100 || code > 599 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": fmt.Sprintf("bad status code %q", params["code"]),
		})
		return
	}
	if code >= 400 {
		writeJSON(w, code, map[string]interface{}{
			"error": http.StatusText(code),
		})
		return
	}
	writeJSON(w, code, map[string]interface{}{})
}

func handleDelay(w http.ResponseWriter, r *http.Request, params map[string]string) {
	seconds, err := strconv.ParseFloat(params["seconds"], 64)
	if err != nil || seconds < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": fmt.Sprintf("bad delay %q", params["seconds"]),
		})
		return
	}
	select {
	case <-time.After(time.Duration(seconds * float64(time.Second))):
	case <-r.Context().Done():
		return
	}
	handleGet(w, r, params)
}
