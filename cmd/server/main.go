package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpadapter "dronefarm/internal/adapter/http"
	metricsinmem "dronefarm/internal/adapter/metrics/inmemory"
	"dronefarm/internal/adapter/observer"
	gdatarepo "dronefarm/internal/adapter/repo/gdata"
	gormrepo "dronefarm/internal/adapter/repo/gorm"
	"dronefarm/internal/adapter/repo/memory"
	"dronefarm/internal/app/command"
	"dronefarm/internal/app/growth"
	"dronefarm/internal/app/ports"
	"dronefarm/internal/app/saves"
	"dronefarm/internal/app/script"
	"dronefarm/internal/config"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := log.Default()

	saveRepo, err := buildSaveRepo(context.Background(), cfg)
	if err != nil {
		log.Fatalf("build save repo: %v", err)
	}

	hub := observer.NewHub(logger)
	kpiRecorder := metricsinmem.NewRecorder()
	engine, err := command.NewEngine(command.Config{
		Farm:      cfg.Farm.StateConfig(),
		Catalog:   cfg.Farm.Catalog(),
		Now:       time.Now,
		Metrics:   kpiRecorder,
		Publisher: hub,
	})
	if err != nil {
		log.Fatalf("build farm: %v", err)
	}
	hub.Publish(engine.Snapshot())

	sessions := script.NewRegistry(script.RegistryConfig{
		Engine:      engine,
		Metrics:     kpiRecorder,
		MaxDuration: cfg.ScriptTimeout(),
	})
	clock := &growth.Clock{
		Target:   engine,
		Interval: cfg.GrowthInterval(),
		Now:      time.Now,
		Logger:   logger,
	}

	h := httpadapter.Handler{
		Engine:   engine,
		Sessions: sessions,
		SavesUC: saves.UseCase{
			Repo:     saveRepo,
			Farm:     engine,
			Sessions: sessions,
			Now:      time.Now,
		},
		KPI: kpiRecorder,
	}
	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	h.RegisterRoutes(s)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/farm", hub.WSHandler())
	observerSrv := &http.Server{Addr: cfg.ObserverAddr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return clock.Run(gctx)
	})
	g.Go(func() error {
		log.Printf("observer listening on %s (/ws/farm)", cfg.ObserverAddr)
		if err := observerSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("observer: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Printf("dronefarm server listening on %s (saves: %s)", cfg.HTTPAddr, cfg.SaveBackend)
		return s.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = observerSrv.Shutdown(shutdownCtx)
		return s.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server stopped: %v", err)
	}
	log.Println("dronefarm server stopped")
}

func buildSaveRepo(ctx context.Context, cfg config.Config) (ports.SaveRepository, error) {
	switch cfg.SaveBackend {
	case config.BackendPostgres:
		db, err := gormrepo.OpenPostgres(cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		if err := gormrepo.ApplyMigrations(ctx, db); err != nil {
			return nil, err
		}
		return gormrepo.NewSaveRepo(db), nil
	case config.BackendSQLite:
		db, err := gormrepo.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := gormrepo.ApplyMigrations(ctx, db); err != nil {
			return nil, err
		}
		return gormrepo.NewSaveRepo(db), nil
	case config.BackendGdata:
		return gdatarepo.Open(cfg.GdataApp)
	case config.BackendMemory, "":
		return memory.NewSaveRepo(memory.NewStore()), nil
	default:
		return nil, fmt.Errorf("%w: unknown save backend %q", config.ErrInvalidConfig, cfg.SaveBackend)
	}
}
