package apifit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apierrors "github.com/apifit/apifit/errors"
)

// Hooks are the overridable stages of the response pipeline. A nil
// field means the default behavior. Each hook receives the endpoint's
// opaque hint, so one override can discriminate between endpoints
// without inspecting them.
//
// The exported Default* functions implement the default behavior, so
// an override can delegate to them:
//
//	Extract: func(ctx context.Context, tree interface{}, want apifit.Type, hint interface{}) (interface{}, error) {
//		if hint == "envelope" {
//			tree = tree.(map[string]interface{})["data"]
//		}
//		return apifit.DefaultExtract(ctx, tree, want, hint)
//	},
type Hooks struct {
	// RaiseErrors inspects the response status and returns an error for
	// responses that must fail the call. Returning nil continues the
	// pipeline.
	RaiseErrors func(ctx context.Context, res *http.Response, hint interface{}) error

	// Decode converts the response body into an untyped value tree.
	Decode func(ctx context.Context, res *http.Response, hint interface{}) (interface{}, error)

	// Extract produces the final value from the decoded tree, normally
	// by fitting it into want.
	Extract func(ctx context.Context, tree interface{}, want Type, hint interface{}) (interface{}, error)
}

type errorMessage struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail,omitempty"`
	Code   string          `json:"code,omitempty"`
}

// DefaultRaiseErrors treats 2xx as success. For any other status it
// reads the body, harvests the {"error": ...} message if the body
// carries one, and returns a *TransportError wrapping a code error
// classified from the status.
func DefaultRaiseErrors(ctx context.Context, res *http.Response, hint interface{}) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	message := ""
	if buf, err := io.ReadAll(res.Body); err == nil {
		message = strings.TrimSpace(string(buf))
		var msg errorMessage
		if json.Unmarshal(buf, &msg) == nil && msg.Error != "" {
			message = msg.Error
		}
	}
	return &TransportError{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Body:       message,
		Err:        apierrors.FromStatusCode(res.StatusCode, "API returned HTTP status %s", res.Status),
	}
}

// DefaultDecode parses the body as one JSON value. Numbers are kept as
// json.Number so integers survive undamaged. Trailing data after the
// value is an error.
func DefaultDecode(ctx context.Context, res *http.Response, hint interface{}) (interface{}, error) {
	decoder := json.NewDecoder(res.Body)
	decoder.UseNumber()
	var tree interface{}
	if err := decoder.Decode(&tree); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if decoder.More() {
		return nil, &DecodeError{Err: fmt.Errorf("trailing data after JSON value")}
	}
	return tree, nil
}

// DefaultExtract fits the tree into want. A nil want passes the tree
// through unchanged.
func DefaultExtract(ctx context.Context, tree interface{}, want Type, hint interface{}) (interface{}, error) {
	if want == nil {
		return tree, nil
	}
	return Fit(tree, want)
}
