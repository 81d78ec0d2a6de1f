package apifit

import (
	"bytes"
	"os"
	"reflect"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

func panicIf(err error) {
	if err != nil {
		panic(err)
	}
}

var staticClientTemplate = template.Must(template.New("static_client").Parse(`// Code generated by apifit. DO NOT EDIT.

package {{.Package}}

import (
	"context"

	"github.com/apifit/apifit"
)

// {{.ClientType}} is a typed wrapper around an apifit client.
type {{.ClientType}} struct {
	c *{{.Qual}}Client
}

func New{{.ClientType}}(c *{{.Qual}}Client) *{{.ClientType}} {
	return &{{.ClientType}}{c: c}
}

func (x *{{.ClientType}}) Close() error {
	return x.c.Close()
}
{{range .Methods}}
{{if .HasReturn}}func (x *{{$.ClientType}}) {{.Name}}(ctx context.Context{{range .Args}}, {{.}} interface{}{{end}}) ({{.ReturnType}}, error) {
	var out {{.ReturnType}}
	err := x.c.Call(ctx, &out, {{printf "%q" .Name}}{{range .Args}}, {{.}}{{end}})
	return out, err
}
{{else}}func (x *{{$.ClientType}}) {{.Name}}(ctx context.Context{{range .Args}}, {{.}} interface{}{{end}}) error {
	return x.c.Call(ctx, nil, {{printf "%q" .Name}}{{range .Args}}, {{.}}{{end}})
}
{{end}}{{end}}`))

// GenConfig configures GenerateClient.
type GenConfig struct {
	// OutFile is the path of the generated Go source file.
	OutFile string

	// Package is the package name of the generated file.
	Package string

	// ClientType is the name of the generated wrapper type.
	ClientType string

	Endpoints []Endpoint
}

type genMethod struct {
	Name       string
	Args       []string
	HasReturn  bool
	ReturnType string
}

// typeName renders a Go type for the generated file. reflect.Type.String
// qualifies every named type with its package name, which is wrong for
// types declared in the output package itself: a self-qualified name
// cannot compile. Such qualifiers are stripped, recursing through
// pointers, slices and maps.
func typeName(t reflect.Type, localPkg string) string {
	if t.Name() != "" {
		s := t.String()
		if i := strings.IndexByte(s, '.'); i >= 0 && s[:i] == localPkg {
			return s[i+1:]
		}
		return s
	}
	switch t.Kind() {
	case reflect.Ptr:
		return "*" + typeName(t.Elem(), localPkg)
	case reflect.Slice:
		return "[]" + typeName(t.Elem(), localPkg)
	case reflect.Map:
		return "map[" + typeName(t.Key(), localPkg) + "]" + typeName(t.Elem(), localPkg)
	default:
		return t.String()
	}
}

// GenerateClient writes a Go source file with one typed wrapper method
// per endpoint, each delegating to Call. The output is formatted with
// goimports. Panics on failure, it is meant to be run from a generator
// program.
func GenerateClient(options *GenConfig) {
	methods := make([]genMethod, 0, len(options.Endpoints))
	for i := range options.Endpoints {
		e := &options.Endpoints[i]
		e.validate()
		m := genMethod{
			Name: e.Name,
			Args: e.Args,
		}
		if e.Returns != nil {
			m.HasReturn = true
			m.ReturnType = typeName(e.Returns.GoType(), options.Package)
		}
		methods = append(methods, m)
	}

	qual := "apifit."
	if options.Package == "apifit" {
		qual = ""
	}

	var buf bytes.Buffer
	err := staticClientTemplate.Execute(&buf, map[string]interface{}{
		"Package":    options.Package,
		"ClientType": options.ClientType,
		"Qual":       qual,
		"Methods":    methods,
	})
	panicIf(err)

	formatted, err := imports.Process(options.OutFile, buf.Bytes(), nil)
	panicIf(err)
	err = os.WriteFile(options.OutFile, formatted, 0o644)
	panicIf(err)
}
