package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"paralog-backend/api"
	"paralog-backend/auth"
	"paralog-backend/base"
	"paralog-backend/health"
	"paralog-backend/ontology"
	"paralog-backend/queries"
	"paralog-backend/triplestore"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := base.LoadDotEnv(); err != nil {
		slog.Error("failed loading .env", "error", err)
		os.Exit(1)
	}
	cfg := base.LoadConfig()
	_, logCloser := base.SetupLogging(cfg.Log)
	if logCloser != nil {
		defer logCloser.Close()
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg base.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := base.InitTracer(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer shutdownTracer(context.Background())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client := triplestore.NewClient(cfg.Jena, triplestore.WithMetrics(triplestore.NewMetrics(registry)))
	slog.Info("using triplestore", "endpoint", client.Endpoint(), "digest_auth", cfg.Jena.DigestEnabled(), "timeout", cfg.Jena.Timeout)
	slog.Debug("message broker configured", "bootstrap_servers", cfg.BootstrapServers)

	authenticator, err := auth.New(cfg.Auth, auth.WithRegisterer(registry))
	if err != nil {
		return err
	}

	library := queries.NewLibrary(nil)
	var ontologySource ontology.Source
	if graph, err := ontology.Load(cfg.OntologyFiles...); err != nil {
		slog.Warn("failed loading ontology files, answering ontology lookups from the triplestore", "files", cfg.OntologyFiles, "error", err)
		ontologySource = ontology.NewRemote(client, library)
	} else {
		ontologySource = graph
	}

	probe := health.NewProbe(client, 5*time.Second)
	if err := probe.Start(cfg.HealthCheckSchedule); err != nil {
		return err
	}
	defer probe.Stop()

	server, err := api.NewServer(cfg, client,
		api.WithLibrary(library),
		api.WithOntology(ontologySource),
		api.WithProbe(probe),
		api.WithAuthenticator(authenticator),
		api.WithRegistry(registry),
	)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", httpServer.Addr, "root_path", cfg.RootPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
