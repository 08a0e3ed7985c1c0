package mutate

import "github.com/talgya/mini-world/internal/service"

// errKind extracts the service.Error Kind from a Result.Err, or "" if err
// is nil or not a *service.Error.
func errKind(err error) service.Kind {
	if se, ok := err.(*service.Error); ok {
		return se.Kind
	}
	return ""
}
