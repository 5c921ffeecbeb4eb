package routes

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	greetingsvc "github.com/janisto/greeting-service/internal/service/greeting"
)

func TestRegisterExposesOnlyGreetingOperation(t *testing.T) {
	api := humachi.New(chi.NewRouter(), huma.DefaultConfig("RoutesTest", "test"))
	Register(api, greetingsvc.StaticService{})

	paths := api.OpenAPI().Paths
	if len(paths) != 1 {
		t.Fatalf("expected exactly one path, got %d", len(paths))
	}
	item, ok := paths["/"]
	if !ok || item.Get == nil || item.Head == nil {
		t.Fatalf("expected GET and HEAD /, got %+v", paths)
	}
	for method, op := range map[string]*huma.Operation{
		http.MethodPost:   item.Post,
		http.MethodPut:    item.Put,
		http.MethodDelete: item.Delete,
	} {
		if op != nil {
			t.Fatalf("unexpected %s operation on /", method)
		}
	}
}
