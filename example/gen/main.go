package main

import (
	"github.com/apifit/apifit"
	"github.com/apifit/apifit/example"
)

func main() {
	apifit.GenerateClient(&apifit.GenConfig{
		OutFile:    "./httpbin_client.go",
		Package:    "example",
		ClientType: "HttpbinClient",
		Endpoints:  example.Endpoints(),
	})
	apifit.GenerateOpenAPISpec(&apifit.OpenAPIGenConfig{
		OutDir:    "./openapi",
		Endpoints: example.Endpoints(),
		Info: apifit.Info{
			Title:   "httpbin",
			Version: "0.1.0",
		},
	})
}
