package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vvakame/bookgraph/internal/graph"
	"github.com/vvakame/bookgraph/internal/log"
	"github.com/vvakame/bookgraph/internal/metrics"
	"github.com/vvakame/bookgraph/internal/store"
)

type Server struct {
	cfg     *Config
	exec    *graph.Executable
	handler http.Handler
}

// NewExecutableSchema builds the schema served for cfg, with its own store.
func NewExecutableSchema(cfg *Config) (*graph.Executable, error) {
	s := store.NewSeeded()
	if cfg.Seed != "" {
		var err error
		s, err = store.LoadSeedFile(cfg.Seed)
		if err != nil {
			return nil, err
		}
	}

	return graph.NewExecutableSchema(graph.Config{
		Store:  s,
		Quirks: cfg.Quirks,
	})
}

// NewServer wires the GraphQL endpoint, the explorer and the metrics endpoint for cfg.
// The logger of ctx is handed to every request.
func NewServer(ctx context.Context, cfg *Config) (*Server, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	exec, err := NewExecutableSchema(cfg)
	if err != nil {
		return nil, err
	}

	srv := handler.NewDefaultServer(exec.ExecutableSchema())
	srv.SetRecoverFunc(recoverFunc)
	srv.AroundOperations(func(ctx context.Context, next graphql.OperationHandler) graphql.ResponseHandler {
		oc := graphql.GetOperationContext(ctx)
		log.FromContext(ctx).V(1).Info("execute operation", "operationName", oc.OperationName)
		return next(ctx)
	})
	if cfg.ComplexityLimit > 0 {
		srv.Use(extension.FixedComplexityLimit(cfg.ComplexityLimit))
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, graphqlHandler(cfg, srv))

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		tracer, err := metrics.NewTracer(registry)
		if err != nil {
			return nil, err
		}
		srv.Use(tracer)
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	return &Server{
		cfg:     cfg,
		exec:    exec,
		handler: log.Handler(log.FromContext(ctx), mux),
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Store() *store.Store {
	return s.exec.Store()
}

// ListenAndServe serves until ctx is done, then shuts the listener down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	logger := log.FromContext(ctx)

	hs := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	err := hs.Shutdown(context.Background())
	if err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// graphqlHandler serves the explorer to browsers and everything else to srv.
func graphqlHandler(cfg *Config, srv http.Handler) http.Handler {
	if !cfg.Playground {
		return srv
	}

	explorer := playground.Handler(cfg.PlaygroundTitle, cfg.Path)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Query().Get("query") == "" && strings.Contains(r.Header.Get("Accept"), "text/html") {
			explorer.ServeHTTP(w, r)
			return
		}
		srv.ServeHTTP(w, r)
	})
}

func recoverFunc(ctx context.Context, err interface{}) error {
	log.FromContext(ctx).Error(fmt.Errorf("%v", err), "panic while resolving", "stack", string(debug.Stack()))

	return gqlerror.Errorf("internal system error")
}
