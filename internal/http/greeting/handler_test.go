package greeting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	applog "github.com/janisto/greeting-service/internal/platform/logging"
	appmiddleware "github.com/janisto/greeting-service/internal/platform/middleware"
	"github.com/janisto/greeting-service/internal/platform/respond"
	greetingsvc "github.com/janisto/greeting-service/internal/service/greeting"
)

func newTestRouter(svc greetingsvc.Service) chi.Router {
	router := chi.NewRouter()
	router.Use(
		appmiddleware.RequestID(),
		chimiddleware.RealIP,
		applog.RequestLogger(),
		respond.Recoverer(),
	)
	api := humachi.New(router, huma.DefaultConfig("GreetingTest", "test"))
	Register(api, svc)
	return router
}

func TestGetReturnsPlainTextGreeting(t *testing.T) {
	router := newTestRouter(greetingsvc.StaticService{Name: "Ada"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "greeting-get")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("expected text/plain, got %q", ct)
	}
	if body := resp.Body.String(); body != "Hello, Ada!" {
		t.Errorf("expected 'Hello, Ada!', got %q", body)
	}
}

func TestHeadMirrorsGetWithoutBody(t *testing.T) {
	router := newTestRouter(greetingsvc.StaticService{Name: "Ada"})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodHead, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("expected text/plain, got %q", ct)
	}
	if cl := resp.Header().Get("Content-Length"); cl != strconv.Itoa(len("Hello, Ada!")) {
		t.Errorf("expected Content-Length of the greeting, got %q", cl)
	}
	if resp.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", resp.Body.String())
	}
}

func TestOptionsListsAllowedMethods(t *testing.T) {
	router := newTestRouter(greetingsvc.StaticService{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if allow := resp.Header().Get("Allow"); allow != "GET, HEAD, OPTIONS" {
		t.Errorf("unexpected Allow header %q", allow)
	}
	if resp.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", resp.Body.String())
	}
}

func TestGetIgnoresAcceptHeader(t *testing.T) {
	router := newTestRouter(greetingsvc.StaticService{})

	for _, accept := range []string{"application/json", "application/cbor", "text/plain", "*/*"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", accept)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("Accept %s: expected 200, got %d", accept, resp.Code)
		}
		if body := resp.Body.String(); body != "Hello, World!" {
			t.Fatalf("Accept %s: expected 'Hello, World!', got %q", accept, body)
		}
	}
}

func TestGetIgnoresQueryParameters(t *testing.T) {
	router := newTestRouter(greetingsvc.StaticService{Name: "Ada"})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?name=Eve", nil))

	if body := resp.Body.String(); body != "Hello, Ada!" {
		t.Fatalf("expected query to be ignored, got %q", body)
	}
}

func TestGetLogsGreeting(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	handler := getHandler(greetingsvc.StaticService{Name: "Ada"})

	ctx := applog.WithLogger(context.Background(), zap.New(core))
	out, err := handler(ctx, &struct{}{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out.Body) != "Hello, Ada!" {
		t.Fatalf("unexpected body %q", out.Body)
	}

	entries := recorded.FilterMessage("greeting served").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["message"] != "Hello, Ada!" {
		t.Fatalf("unexpected log fields: %+v", entries[0].ContextMap())
	}
}

func TestRegisterDocumentsPlainTextResponse(t *testing.T) {
	api := humachi.New(chi.NewRouter(), huma.DefaultConfig("GreetingTest", "test"))
	Register(api, greetingsvc.StaticService{})

	op := api.OpenAPI().Paths["/"].Get
	if op == nil || op.OperationID != "get-greeting" {
		t.Fatalf("expected get-greeting operation, got %+v", op)
	}
	if _, ok := op.Responses["200"].Content["text/plain"]; !ok {
		t.Fatalf("expected text/plain response content, got %+v", op.Responses["200"].Content)
	}
	if head := api.OpenAPI().Paths["/"].Head; head == nil || head.OperationID != "head-greeting" {
		t.Fatalf("expected head-greeting operation, got %+v", head)
	}
	if options := api.OpenAPI().Paths["/"].Options; options != nil {
		t.Fatalf("expected OPTIONS to stay out of the document, got %+v", options)
	}
}
