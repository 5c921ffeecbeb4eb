package greeting

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/greeting-service/internal/platform/logging"
	greetingsvc "github.com/janisto/greeting-service/internal/service/greeting"
)

// Register wires the greeting route into the provided API. HEAD mirrors GET
// without a body; OPTIONS answers requests that are not CORS preflights,
// which the CORS middleware handles before routing.
func Register(api huma.API, svc greetingsvc.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "get-greeting",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Greet the configured target",
		Description: "Returns `Hello, {name}!` where name is read from GREETING_TARGET on every request, defaulting to World.",
		Tags:        []string{"Greeting"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Greeting text",
				Content: map[string]*huma.MediaType{
					"text/plain": {
						Schema: &huma.Schema{Type: huma.TypeString, Examples: []any{"Hello, World!"}},
					},
				},
			},
		},
	}, getHandler(svc))

	huma.Register(api, huma.Operation{
		OperationID:   "head-greeting",
		Method:        http.MethodHead,
		Path:          "/",
		Summary:       "Greeting headers",
		Description:   "Returns the headers of `GET /` without a body.",
		Tags:          []string{"Greeting"},
		DefaultStatus: http.StatusOK,
	}, headHandler(svc))

	huma.Register(api, huma.Operation{
		OperationID:   "options-greeting",
		Method:        http.MethodOptions,
		Path:          "/",
		Hidden:        true,
		DefaultStatus: http.StatusOK,
	}, optionsHandler)
}

func getHandler(svc greetingsvc.Service) func(context.Context, *struct{}) (*GetOutput, error) {
	return func(ctx context.Context, _ *struct{}) (*GetOutput, error) {
		message := svc.Greet(ctx)
		applog.LogInfo(ctx, "greeting served", zap.String("message", message))
		return &GetOutput{ContentType: contentTypeText, Body: []byte(message)}, nil
	}
}

func headHandler(svc greetingsvc.Service) func(context.Context, *struct{}) (*HeadOutput, error) {
	return func(ctx context.Context, _ *struct{}) (*HeadOutput, error) {
		return &HeadOutput{ContentType: contentTypeText, ContentLength: len(svc.Greet(ctx))}, nil
	}
}

func optionsHandler(context.Context, *struct{}) (*OptionsOutput, error) {
	return &OptionsOutput{Allow: allowedMethods}, nil
}
