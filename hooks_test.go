package apifit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	apierrors "github.com/apifit/apifit/errors"
)

func response(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestDefaultRaiseErrors(t *testing.T) {
	ctx := context.Background()

	for _, statusCode := range []int{200, 201, 204, 299} {
		require.NoError(t, DefaultRaiseErrors(ctx, response(statusCode, ""), nil))
	}

	err := DefaultRaiseErrors(ctx, response(404, `{"error": "document is not found"}`), nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, 404, transportErr.StatusCode)
	require.Equal(t, "document is not found", transportErr.Body)

	// The wrapped code error is reachable with errors.As.
	var codeErr *apierrors.CodeError
	require.ErrorAs(t, err, &codeErr)
	require.Equal(t, codes.NotFound, codeErr.Code())
}

func TestDefaultRaiseErrorsPlainBody(t *testing.T) {
	err := DefaultRaiseErrors(context.Background(), response(500, "all shards failed\n"), nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, "all shards failed", transportErr.Body)
}

func TestDefaultDecode(t *testing.T) {
	ctx := context.Background()

	tree, err := DefaultDecode(ctx, response(200, `{"value": 42}`), nil)
	require.NoError(t, err)
	m, ok := tree.(map[string]interface{})
	require.True(t, ok)
	// Numbers survive as json.Number, integers stay undamaged.
	require.Equal(t, json.Number("42"), m["value"])

	_, err = DefaultDecode(ctx, response(200, `{"broken`), nil)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)

	_, err = DefaultDecode(ctx, response(200, `{} trailing`), nil)
	require.ErrorAs(t, err, &decodeErr)
}

func TestDefaultExtract(t *testing.T) {
	ctx := context.Background()

	// Nil want passes the tree through.
	tree := map[string]interface{}{"anything": true}
	got, err := DefaultExtract(ctx, tree, nil, nil)
	require.NoError(t, err)
	require.Equal(t, tree, got)

	got, err = DefaultExtract(ctx, map[string]interface{}{"name": "x"}, Record(Field("name", String())), nil)
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"name": "x"}, got)

	_, err = DefaultExtract(ctx, map[string]interface{}{}, Record(Field("name", String())), nil)
	var fitErr *FitError
	require.ErrorAs(t, err, &fitErr)
}

func TestErrorKindsAreDistinct(t *testing.T) {
	transportErr := &TransportError{StatusCode: 503, Status: "503 Service Unavailable"}
	decodeErr := &DecodeError{Err: errors.New("bad json")}
	fitErr := &FitError{Path: "a.b", Expected: "string", Actual: "number 1"}

	var te *TransportError
	require.True(t, errors.As(transportErr, &te))
	require.False(t, errors.As(decodeErr, &te))

	var fe *FitError
	require.True(t, errors.As(fitErr, &fe))
	require.False(t, errors.As(transportErr, &fe))

	require.Contains(t, fitErr.Error(), "a.b")
	require.Contains(t, fitErr.Error(), "expected string")
}
