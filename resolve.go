package apifit

import (
	"github.com/samber/lo"
)

// Axis resolution follows one contract for all axes: an absent config
// resolves to nothing, a literal is returned as declared, a computed
// config is invoked with the view restricted to its declared argument
// names.

func resolveValues(spec *ValuesSpec, args Args) Values {
	if spec == nil {
		return nil
	}
	if spec.fn == nil {
		return spec.value
	}
	return spec.fn(args.subset(spec.argNames))
}

func resolveAuth(spec *AuthSpec, args Args) *Credentials {
	if spec == nil {
		return nil
	}
	if spec.fn == nil {
		creds := *spec.value
		return &creds
	}
	creds := spec.fn(args.subset(spec.argNames))
	return &creds
}

func resolvePath(e *Endpoint, args Args) string {
	if e.PathFn != nil {
		return e.PathFn.fn(args.subset(e.PathFn.argNames))
	}
	return substituteTemplate(e.Path, args)
}

func resolveBody(spec *BodySpec, args Args) interface{} {
	if spec.fn == nil {
		return spec.value
	}
	return spec.fn(args.subset(spec.argNames))
}

// mergeValues merges axis values key by key: endpoint-level values win
// over client-level defaults, untouched defaults survive. An absent
// override leaves the defaults as they are.
func mergeValues(defaults, override Values) Values {
	if len(defaults) == 0 && len(override) == 0 {
		return nil
	}
	return lo.Assign(defaults, override)
}
