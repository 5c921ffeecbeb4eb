// Package greeting resolves who to greet and renders the greeting text.
package greeting

import (
	"context"
	"fmt"
)

const (
	// TargetEnv names the environment variable holding the name to greet.
	TargetEnv = "GREETING_TARGET"
	// DefaultTarget is used when TargetEnv is unset or empty.
	DefaultTarget = "World"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Service produces the greeting for one request.
type Service interface {
	Greet(ctx context.Context) string
}

// EnvService reads TargetEnv through its lookup on every call, so changes to
// the environment take effect on the next request.
type EnvService struct {
	lookup LookupFunc
}

var _ Service = (*EnvService)(nil)

// NewEnvService returns a Service backed by lookup.
func NewEnvService(lookup LookupFunc) *EnvService {
	return &EnvService{lookup: lookup}
}

// Greet implements Service.
func (s *EnvService) Greet(_ context.Context) string {
	return Message(Target(s.lookup))
}

// Target returns the configured name. An empty value is treated as unset.
func Target(lookup LookupFunc) string {
	if lookup == nil {
		return DefaultTarget
	}
	if v, ok := lookup(TargetEnv); ok && v != "" {
		return v
	}
	return DefaultTarget
}

// Message renders the greeting for name.
func Message(name string) string {
	return fmt.Sprintf("Hello, %s!", name)
}
