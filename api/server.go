// Package api exposes the read endpoints over HTTP.
package api

import (
	"context"
	"net/http"
	"paralog-backend/auth"
	"paralog-backend/base"
	"paralog-backend/health"
	"paralog-backend/ontology"
	"paralog-backend/queries"
	"paralog-backend/results"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const livelinessEndpoint = "/healthz"

// Store is the triplestore as seen by the handlers.
type Store interface {
	Query(ctx context.Context, query string, headers map[string]string) (*results.BindingSet, error)
	Ping(ctx context.Context) error
}

// Server holds the handler dependencies.
type Server struct {
	cfg      base.Config
	store    Store
	library  *queries.Library
	ontology ontology.Source
	probe    *health.Probe
	auth     *auth.Authenticator
	registry *prometheus.Registry
	metrics  *httpMetrics
}

// Option configures a Server.
type Option func(*Server)

// WithLibrary sets the query templates, e.g. with a custom vocabulary.
func WithLibrary(l *queries.Library) Option {
	return func(s *Server) {
		s.library = l
	}
}

// WithOntology answers ontology routes from src instead of the triplestore.
func WithOntology(src ontology.Source) Option {
	return func(s *Server) {
		s.ontology = src
	}
}

// WithProbe sets the readiness probe.
func WithProbe(p *health.Probe) Option {
	return func(s *Server) {
		s.probe = p
	}
}

// WithAuthenticator gates the API routes.
func WithAuthenticator(a *auth.Authenticator) Option {
	return func(s *Server) {
		s.auth = a
	}
}

// WithRegistry registers HTTP metrics on reg and serves it on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// NewServer wires the handlers. Without options ontology lookups go to the
// triplestore and authentication is off.
func NewServer(cfg base.Config, store Store, opts ...Option) (*Server, error) {
	s := &Server{cfg: cfg, store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.library == nil {
		s.library = queries.NewLibrary(nil)
	}
	if s.ontology == nil {
		s.ontology = ontology.NewRemote(store, s.library)
	}
	if s.probe == nil {
		s.probe = health.NewProbe(store, 5*time.Second)
	}
	if s.auth == nil {
		a, err := auth.New(base.AuthConfig{})
		if err != nil {
			return nil, err
		}
		s.auth = a
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newHTTPMetrics(s.registry)
	return s, nil
}

// Router builds the gin engine with all routes mounted under the root path.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	// exclude liveliness and readiness checks from access logs
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{
			s.cfg.RootPath + livelinessEndpoint,
			s.cfg.RootPath + "/health/availability",
			s.cfg.RootPath + "/health/readiness",
		},
	}))
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(s.metrics.middleware())
	router.Use(cors.New(s.corsConfig()))
	router.SetTrustedProxies(nil)
	router.UseRawPath = true
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, JSONError{Message: "not found"})
	})

	root := router.Group(s.cfg.RootPath)
	root.GET(livelinessEndpoint, handleHealthz)
	root.GET("/health/availability", handleAvailability)
	root.GET("/health/readiness", s.handleReadiness)
	root.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	s.registerOpenAPI(root)

	api := root.Group("", s.auth.Handler())
	api.GET("/assessments", s.handleAssessments)
	api.GET("/assessments/assets", s.handleAssessmentAssets)
	api.GET("/assessments/asset-types", s.handleAssessmentAssetTypes)
	api.GET("/assessments/dependencies", s.handleAssessmentDependencies)
	api.GET("/asset", s.handleAsset)
	api.GET("/asset/dependents", s.handleDependents)
	api.GET("/asset/providers", s.handleProviders)
	api.GET("/asset/parts", s.handleAssetParts)
	api.GET("/asset/residents", s.handleResidents)
	api.GET("/asset/participations", s.handleParticipations)
	api.GET("/assets/by-type", s.handleAssetsByType)
	api.GET("/event/participants", s.handleParticipants)
	api.GET("/person/residences", s.handleResidences)
	api.GET("/flood-watch-areas", s.handleFloodWatchAreas)
	api.GET("/flood-watch-areas/polygon", s.handleFloodAreaPolygon)
	api.GET("/states", s.handleStates)
	api.GET("/buildings", s.handleBuildings)
	api.GET("/buildings/:uprn", s.handleBuilding)
	api.GET("/ontology/class", s.handleOntologyClass)
	api.GET("/ontology/superclasses", s.handleSuperclasses)
	return router
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if s.cfg.Auth.Header != "" {
		cfg.AllowHeaders = append(cfg.AllowHeaders, s.cfg.Auth.Header)
	}
	if len(s.cfg.AllowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.cfg.AllowedOrigins
		cfg.AllowCredentials = true
	}
	return cfg
}
