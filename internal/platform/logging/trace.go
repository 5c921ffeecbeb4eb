package logging

import (
	"os"
	"regexp"
	"sync"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// {version}-{trace-id}-{parent-id}-{trace-flags}
var traceparentRe = regexp.MustCompile(`^[0-9a-fA-F]{2}-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

var (
	projectIDOnce   sync.Once
	cachedProjectID string
)

// spanContext is the part of a W3C traceparent header Cloud Logging correlates on.
type spanContext struct {
	TraceID string
	SpanID  string
	Sampled bool
}

func parseTraceparent(header string) (spanContext, bool) {
	m := traceparentRe.FindStringSubmatch(header)
	if m == nil {
		return spanContext{}, false
	}
	return spanContext{TraceID: m[1], SpanID: m[2], Sampled: m[3] == "01"}, true
}

// fields returns the Cloud Logging trace correlation fields, or nil when
// there is no project to scope the trace to.
func (sc spanContext) fields(projectID string) []zap.Field {
	if projectID == "" || sc.TraceID == "" {
		return nil
	}
	return []zap.Field{
		zap.String("logging.googleapis.com/trace", "projects/"+projectID+"/traces/"+sc.TraceID),
		zap.String("logging.googleapis.com/spanId", sc.SpanID),
		zap.Bool("logging.googleapis.com/trace_sampled", sc.Sampled),
	}
}

func requestLogger(base *zap.Logger, sc spanContext, projectID, requestID string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	fields := sc.fields(projectID)
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

func resolveProjectID() string {
	projectIDOnce.Do(func() {
		for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCP_PROJECT", "GCLOUD_PROJECT", "PROJECT_ID"} {
			if v := os.Getenv(key); v != "" {
				cachedProjectID = v
				return
			}
		}
	})
	return cachedProjectID
}
