// Package server exposes the API clients over HTTP as a read-only JSON
// facade, with Prometheus metrics and request logging.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/apisbr/apisbr/internal/metrics"
	"github.com/apisbr/apisbr/pkg/integrations/dadosabertos"
	"github.com/apisbr/apisbr/pkg/integrations/ibge/agregados"
	"github.com/apisbr/apisbr/pkg/integrations/ibge/localidades"
	"github.com/apisbr/apisbr/pkg/integrations/ipeadata"
	"github.com/apisbr/apisbr/pkg/tabular"
)

const shutdownTimeout = 10 * time.Second

// Datasets is the part of the Dados Abertos client the server uses.
type Datasets interface {
	Search(ctx context.Context, title string, page int) ([]dadosabertos.DatasetSummary, error)
	Resources(ctx context.Context, identifier string, filter dadosabertos.ResourceFilter) ([]dadosabertos.Resource, error)
}

// Localities is the part of the IBGE Localidades client the server uses.
type Localities interface {
	FetchStates(ctx context.Context, refresh bool) ([]localidades.State, error)
	FetchMunicipalities(ctx context.Context, refresh bool) ([]localidades.Municipality, error)
	FetchStateMunicipalities(ctx context.Context, uf string, refresh bool) ([]localidades.Municipality, error)
	MunicipalityName(ctx context.Context, code string, refresh bool) (string, error)
}

// Aggregates is the part of the IBGE Agregados client the server uses.
type Aggregates interface {
	FetchMetadata(ctx context.Context, aggregate string, refresh bool) (*agregados.Metadata, error)
	FetchData(ctx context.Context, q agregados.Query) (*tabular.Table, error)
}

// Series is the part of the IPEA Data client the server uses.
type Series interface {
	FetchValues(ctx context.Context, identifier string, filter ipeadata.ValuesFilter) (*tabular.Table, error)
}

var (
	_ Datasets   = (*dadosabertos.Client)(nil)
	_ Localities = (*localidades.Client)(nil)
	_ Aggregates = (*agregados.Client)(nil)
	_ Series     = (*ipeadata.Client)(nil)
)

// Sources groups the clients behind the routes.
type Sources struct {
	Datasets   Datasets
	Localities Localities
	Aggregates Aggregates
	Series     Series
}

// Options configures a Server. Nil fields get defaults: the default
// logger, no request metrics and the default Prometheus gatherer.
type Options struct {
	Logger   *log.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// Server routes HTTP requests to the API clients.
type Server struct {
	src     Sources
	logger  *log.Logger
	metrics *metrics.Metrics
	router  chi.Router
}

// New creates a Server serving src.
func New(src Sources, opts Options) *Server {
	s := &Server{
		src:     src,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/dados/datasets", s.handleSearchDatasets)
		r.Get("/dados/datasets/{id}/resources", s.handleResources)

		r.Get("/ibge/estados", s.handleStates)
		r.Get("/ibge/municipios", s.handleMunicipalities)
		r.Get("/ibge/municipios/{code}", s.handleMunicipality)
		r.Get("/ibge/agregados/{id}/metadados", s.handleMetadata)
		r.Get("/ibge/agregados/{id}/dados", s.handleAggregateData)

		r.Get("/ipea/series/{code}/valores", s.handleSeriesValues)

		r.Get("/ufs/{uf}", s.handleUF)
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
