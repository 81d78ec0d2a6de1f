// Package example declares a small client for httpbin.org. It shows
// the three ways an endpoint gets its request data: URL templates,
// computed axes and literal axes.
package example

//go:generate go run ./gen/...

import (
	"net/http"

	"github.com/apifit/apifit"
)

type GetResponse struct {
	Args    map[string]string `json:"args"`
	Headers map[string]string `json:"headers"`
	Origin  string            `json:"origin"`
	URL     string            `json:"url"`
}

type AnythingResponse struct {
	Method string            `json:"method"`
	Args   map[string]string `json:"args"`
	JSON   *Payload          `json:"json,omitempty"`
	URL    string            `json:"url"`
}

type Payload struct {
	Text string `json:"text"`
}

type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user"`
}

func Endpoints() []apifit.Endpoint {
	return []apifit.Endpoint{
		{
			Name:    "Get",
			Method:  http.MethodGet,
			Path:    "get?value={value}",
			Args:    []string{"value"},
			Returns: apifit.TypeOf(GetResponse{}),
		},
		{
			Name:   "Post",
			Method: http.MethodPost,
			Path:   "anything",
			Args:   []string{"text"},
			Body: apifit.BodyFrom(func(args apifit.Args) interface{} {
				return Payload{Text: args.String("text")}
			}, "text"),
			Returns: apifit.TypeOf(AnythingResponse{}),
		},
		{
			Name:   "Login",
			Method: http.MethodGet,
			Path:   "basic-auth/{user}/{password}",
			Args:   []string{"user", "password"},
			Auth: apifit.AuthFrom(func(args apifit.Args) apifit.Credentials {
				return apifit.Credentials{
					User:     args.String("user"),
					Password: args.String("password"),
				}
			}, "user", "password"),
			Returns: apifit.TypeOf(AuthResponse{}),
		},
	}
}

func NewClient(baseURL string, opts ...apifit.Option) *apifit.Client {
	return apifit.NewClient(Endpoints(), baseURL, opts...)
}
