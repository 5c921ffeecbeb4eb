package greeting

import "context"

// StaticService always greets the same name.
type StaticService struct {
	Name string
}

var _ Service = StaticService{}

// Greet implements Service.
func (s StaticService) Greet(_ context.Context) string {
	if s.Name == "" {
		return Message(DefaultTarget)
	}
	return Message(s.Name)
}
