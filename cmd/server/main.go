package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/greeting-service/internal/config"
	"github.com/janisto/greeting-service/internal/http/routes"
	applog "github.com/janisto/greeting-service/internal/platform/logging"
	appmiddleware "github.com/janisto/greeting-service/internal/platform/middleware"
	"github.com/janisto/greeting-service/internal/platform/respond"
	greetingsvc "github.com/janisto/greeting-service/internal/service/greeting"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()
	defer func() {
		// stdout sync fails with EINVAL on some platforms; nothing useful to do about it.
		_ = applog.Sync()
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(ctx, "logger init error", err)
	}

	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		applog.LogError(ctx, "config load failed", err)
		return 1
	}
	applog.SetLevel(cfg.LogLevel)

	svc := greetingsvc.NewEnvService(cfg.Lookup)
	srv := newServer(cfg, newRouter(cfg, svc))

	// Bind synchronously so a busy port fails before we report readiness.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		applog.LogError(ctx, "listen failed", err, zap.String("addr", srv.Addr))
		return 1
	}

	stopCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := serve(stopCtx, srv, ln, cfg.ShutdownTimeout); err != nil {
		applog.LogError(ctx, "server error", err, zap.String("addr", srv.Addr))
		return 1
	}
	return 0
}

// serve runs srv on ln until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening", zap.String("addr", ln.Addr().String()), zap.String("version", Version))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	applog.LogInfo(context.Background(), "server exited")
	return nil
}

func newRouter(cfg config.Config, svc greetingsvc.Service) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	docsPath := ""
	if cfg.APIDocs {
		docsPath = config.DocsPath
	}

	router.Use(
		appmiddleware.Security(docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP / X-Forwarded-For; only deploy behind a trusted proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20),
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	humaCfg := huma.DefaultConfig("Greeting Service", Version)
	humaCfg.OpenAPIPath = ""
	humaCfg.DocsPath = ""
	humaCfg.SchemasPath = ""
	if cfg.APIDocs {
		humaCfg.OpenAPIPath = config.OpenAPIPath
		humaCfg.DocsPath = config.DocsPath
		humaCfg.SchemasPath = config.SchemasPath
	}
	respond.SetSchemasPath(humaCfg.SchemasPath)
	api := humachi.New(router, humaCfg)

	routes.Register(api, svc)
	return router
}

func newServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
}
