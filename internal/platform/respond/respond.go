// Package respond renders RFC 9457 problem details for requests that never
// reach a huma operation: unknown paths, wrong methods and recovered panics.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/greeting-service/internal/platform/logging"
)

const (
	msgNotFound          = "resource not found"
	msgInternalServerErr = "internal server error"

	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"
)

var (
	schemasMu   sync.RWMutex
	schemasPath string
)

// SetSchemasPath sets the path prefix under which huma serves JSON schemas.
// Problems carry a $schema link only when it is non-empty.
func SetSchemasPath(path string) {
	schemasMu.Lock()
	defer schemasMu.Unlock()
	schemasPath = strings.TrimSuffix(path, "/")
}

func currentSchemasPath() string {
	schemasMu.RLock()
	defer schemasMu.RUnlock()
	return schemasPath
}

// problem is huma.ErrorModel plus the optional $schema link huma adds to its own errors.
type problem struct {
	Schema string `json:"$schema,omitempty"`
	huma.ErrorModel
}

// NotFoundHandler emits a 404 problem.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, msgNotFound, nil)
	}
}

// MethodNotAllowedHandler emits a 405 problem with an Allow header listing
// the methods the matched route does serve.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		writeProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method), nil)
	}
}

// Recoverer converts panics into 500 problems. http.ErrAbortHandler is
// re-panicked so net/http can abort the connection.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				var err error
				switch v := rec.(type) {
				case error:
					err = v
				default:
					err = fmt.Errorf("%v", v)
				}
				err = fmt.Errorf("%w\n%s", err, debug.Stack())
				if rw.wroteHeader {
					applog.LogError(r.Context(), "panic after response started", err)
					return
				}
				writeProblem(rw, r, http.StatusInternalServerError, msgInternalServerErr, err)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// responseWriter records whether the header has been sent.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string, cause error) {
	ctx := r.Context()
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if status >= http.StatusInternalServerError {
		applog.LogError(ctx, detail, cause, fields...)
	} else {
		applog.LogWarn(ctx, detail, fields...)
	}

	body := problem{
		ErrorModel: huma.ErrorModel{
			Title:  http.StatusText(status),
			Status: status,
			Detail: detail,
		},
	}
	h := w.Header()
	if path := currentSchemasPath(); path != "" {
		body.Schema = schemaURL(r, path)
		h.Set("Link", fmt.Sprintf(`<%s>; rel="describedBy"`, body.Schema))
	}
	ensureVary(h, "Origin", "Accept")

	var (
		payload []byte
		err     error
	)
	if selectFormat(r.Header.Get("Accept")) {
		h.Set("Content-Type", contentTypeProblemCBOR)
		payload, err = cbor.Marshal(body)
	} else {
		h.Set("Content-Type", contentTypeProblemJSON)
		payload, err = marshalJSON(body)
	}
	if err != nil {
		applog.LogError(ctx, "failed to encode problem", err, zap.Int("status", status))
		h.Del("Content-Type")
		w.WriteHeader(status)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		applog.LogWarn(ctx, "failed to write problem", zap.Error(err))
	}
}

func marshalJSON(v any) ([]byte, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func schemaURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s/ErrorModel.json", scheme, r.Host, path)
}

// ensureVary adds each value to Vary unless it is already listed,
// either as its own header line or inside a comma-separated one.
func ensureVary(h http.Header, values ...string) {
	seen := make(map[string]struct{})
	for _, line := range h.Values("Vary") {
		for part := range strings.SplitSeq(line, ",") {
			if p := strings.TrimSpace(part); p != "" {
				seen[strings.ToLower(p)] = struct{}{}
			}
		}
	}
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		h.Add("Vary", v)
	}
}

// allowedMethods inspects chi's routing tree to discover which methods the path serves.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}

	routePath := rctx.RoutePath
	if routePath == "" {
		if r.URL.RawPath != "" {
			routePath = r.URL.RawPath
		} else {
			routePath = r.URL.Path
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	methods := []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowed := make([]string, 0, len(methods))
	for _, method := range methods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}
