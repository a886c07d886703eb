package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/KK-2k06/DreamInk/api"
	"github.com/KK-2k06/DreamInk/auth"
	"github.com/KK-2k06/DreamInk/core"
	"github.com/KK-2k06/DreamInk/db"
	"github.com/KK-2k06/DreamInk/logging"
	"github.com/KK-2k06/DreamInk/metrics"
	"github.com/KK-2k06/DreamInk/modelcache"
	"github.com/KK-2k06/DreamInk/router"
	"github.com/KK-2k06/DreamInk/shutdown"
	"github.com/KK-2k06/DreamInk/stylenet"
	"github.com/KK-2k06/DreamInk/styles"
	"github.com/KK-2k06/DreamInk/stylize"
	"go.uber.org/zap"
)

const limiterCleanupInterval = time.Minute

// app is the assembled server: storage, model cache, services and HTTP,
// with every resource registered for ordered shutdown.
type app struct {
	cfg    *core.Config
	logger *logging.Logger
	mgr    *shutdown.Manager
	server *http.Server
}

func newApp(ctx context.Context, cfg *core.Config, logger *logging.Logger) (*app, error) {
	log := logger.Zap()
	mgr := shutdown.NewManager(logger.Named("shutdown"), shutdown.WithTimeout(cfg.ShutdownTimeout()))

	a := &app{cfg: cfg, logger: logger, mgr: mgr}
	if err := a.build(ctx); err != nil {
		if serr := mgr.Shutdown(); serr != nil {
			log.Warn("Cleanup after failed startup", zap.Error(serr))
		}
		return nil, err
	}
	mgr.Register("logger", shutdown.PriorityLogs, shutdown.SyncLogger(log))
	return a, nil
}

func (a *app) build(ctx context.Context) error {
	cfg, mgr := a.cfg, a.mgr

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	mgr.Register("database", shutdown.PriorityStorage, shutdown.CloseResource(a.logger.Named("db"), "database", database))
	a.logger.Info("Database ready", zap.String("path", database.Path()))

	var writer *db.AsyncWriter
	if cfg.HistoryAsync {
		writer = db.NewAsyncWriter(db.DefaultAsyncWriterConfig(), a.logger.Named("db"))
		writer.Start()
		mgr.Register("history-writer", shutdown.PriorityWorkers, shutdown.DrainWriter(a.logger.Named("db"), "history-writer", writer))
	}
	repo := db.NewRepository(database, writer)

	if cfg.HistoryRetentionDays > 0 {
		dbLog := a.logger.Named("db")
		database.StartCleanupScheduler(mgr.Context(), db.CleanupSchedulerConfig{
			RetentionDays: cfg.HistoryRetentionDays,
			Interval:      24 * time.Hour,
			OnCleanup: func(res db.CleanupResult, err error) {
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						dbLog.Warn("History cleanup failed", zap.Error(err))
					}
					return
				}
				dbLog.Info("History cleanup complete",
					zap.Int64("deleted", res.HistoryDeleted),
					zap.Duration("duration", res.Duration))
			},
		})
	}

	dispatcher, err := a.buildEngine()
	if err != nil {
		return err
	}

	stats := metrics.NewStore(metrics.StoreConfig{RecentCapacity: 100, Version: version}, time.Now())
	svc := stylize.NewService(dispatcher, repo, a.logger.Named("stylize"),
		stylize.WithOperationTracker(mgr),
		stylize.WithRecorder(stats))
	accounts := auth.NewService(repo, cfg.BcryptCost)

	var transformer api.Transformer
	if dispatcher != nil {
		transformer = svc
	}
	srv := api.NewServer(api.Config{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		RequestTimeout: cfg.RequestTimeout(),
		Signin: core.AttemptPolicy{
			MaxAttempts: cfg.SigninMaxAttempts,
			Window:      time.Duration(cfg.SigninWindowMin) * time.Minute,
			Block:       time.Duration(cfg.SigninBlockMin) * time.Minute,
		},
	}, transformer, svc, accounts, a.logger.Named("api")).WithStats(stats)
	srv.Limiter().StartCleanup(mgr.Context(), limiterCleanupInterval)

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          a.logger.StdLog(),
	}
	mgr.Register("http", shutdown.PriorityHTTP, shutdown.StopHTTPServer(a.logger.Named("api"), a.server))
	return nil
}

// buildEngine sets up the model cache and router. It returns a nil
// dispatcher in auth-only mode.
func (a *app) buildEngine() (stylize.Dispatcher, error) {
	cfg := a.cfg
	if cfg.AuthOnly {
		a.logger.Info("AUTH_ONLY set, style transformation disabled")
		return nil, nil
	}

	catalog, err := styles.LoadCatalog(cfg.StyleCatalogPath)
	if err != nil {
		return nil, err
	}

	if err := stylenet.InitEnvironment(cfg.OnnxRuntimeDylib); err != nil {
		a.logger.Warn("ONNX Runtime unavailable; network styles will fail", zap.Error(err))
	} else {
		a.mgr.Register("onnxruntime", shutdown.PriorityModels+1, shutdown.Func(stylenet.DestroyEnvironment))
	}

	modelLog := a.logger.Named("models")
	cache := modelcache.New(router.NewLoader(cfg, modelLog), modelLog)
	a.mgr.Register("model-cache", shutdown.PriorityModels, shutdown.CloseResource(modelLog, "model-cache", cache))

	rt := router.New(cache, catalog, a.logger.Named("router"))

	if len(cfg.PreloadStyles) > 0 {
		var preload []styles.Style
		for _, name := range cfg.PreloadStyles {
			if st, err := styles.Parse(name); err == nil {
				preload = append(preload, st)
			}
		}
		go rt.Preload(a.mgr.Context(), preload...)
	}
	return rt, nil
}

// serve runs the HTTP server until a signal, a closed stop channel or a
// listener failure, then shuts everything down in priority order.
func (a *app) serve(stop <-chan struct{}) error {
	a.mgr.Start()
	if stop != nil {
		go func() {
			select {
			case <-stop:
				a.mgr.Trigger()
			case <-a.mgr.Context().Done():
			}
		}()
	}

	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return errors.Join(fmt.Errorf("listen: %w", err), a.mgr.Shutdown())
	}
	a.logger.Info("DreamInk backend listening", zap.String("addr", ln.Addr().String()))

	serveErr := make(chan error, 1)
	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			a.mgr.Trigger()
		}
		close(serveErr)
	}()

	a.mgr.Wait()
	shutdownErr := a.mgr.Shutdown()
	return errors.Join(<-serveErr, shutdownErr)
}
