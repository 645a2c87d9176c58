// Package server wires marketd together: ledger and blob backends, the
// storage, payment and catalog services, the JSON-RPC endpoint, the gRPC
// health service and the settlement worker.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/datamarket/internal/api"
	"github.com/dmitrijs2005/datamarket/internal/logging"
	"github.com/dmitrijs2005/datamarket/internal/server/auth"
	"github.com/dmitrijs2005/datamarket/internal/server/blobstore"
	"github.com/dmitrijs2005/datamarket/internal/server/config"
	"github.com/dmitrijs2005/datamarket/internal/server/metrics"
	"github.com/dmitrijs2005/datamarket/internal/server/ratelimit"
	"github.com/dmitrijs2005/datamarket/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/datamarket/internal/server/rpc"
	"github.com/dmitrijs2005/datamarket/internal/server/services"
	"github.com/dmitrijs2005/datamarket/internal/server/worker"

	gs "github.com/dmitrijs2005/datamarket/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger

	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	limiter     *ratelimit.Limiter
	httpServer  *http.Server
	health      *gs.HealthServer
	settlement  *worker.Settlement
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, logging.ParseLevel(c.LogLevel))

	rm, err := newRepositoryManager(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("ledger init error: %w", err)
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("blob store init error: %w", err), rm.Close())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(reg)

	storage := services.NewStorageService(rm, blobs, rec, logger)
	payment := services.NewPaymentService(rm, rec, logger, c.StreamDuration)
	catalog := services.NewCatalogService(rm, logger)

	issuer := auth.NewIssuer(c.SecretKey, c.TokenValidityDuration)

	limiter := ratelimit.New(ratelimit.Config{Rate: rate.Limit(c.RateLimit), Burst: c.RateBurst})
	limiter.OnReject = func(key string) { rec.RecordRateLimited() }

	handler := rpc.NewRouter(rpc.NewMarketHandler(storage, payment, catalog, issuer), rpc.RouterOptions{
		Verify:         issuer.Verify,
		Metrics:        rec,
		MetricsHandler: metrics.Handler(reg),
		Limit:          limiter.Middleware,
		Logger:         logger,
	})

	return &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		issuer:      issuer,
		limiter:     limiter,
		httpServer: &http.Server{
			Addr:              c.RPCAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		health:     gs.NewHealthServer(c.HealthAddr, logger),
		settlement: worker.NewSettlement(payment, c.SettleInterval, logger),
	}, nil
}

func newRepositoryManager(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.LedgerBackend {
	case config.BackendMemory:
		return repomanager.NewMemoryRepositoryManager(), nil
	case config.BackendPostgres:
		rm, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := rm.RunMigrations(ctx); err != nil {
			return nil, multierr.Append(fmt.Errorf("migrations: %w", err), rm.Close())
		}
		return rm, nil
	}
	return nil, fmt.Errorf("unknown ledger backend %q", c.LedgerBackend)
}

func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.BlobBackend {
	case config.BackendMemory:
		return blobstore.NewMemoryStore(), nil
	case config.BackendS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Options{
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	}
	return nil, fmt.Errorf("unknown blob backend %q", c.BlobBackend)
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM/SIGQUIT arrives or a
// server fails, then shuts everything down.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "version", api.Version,
		"ledger", app.config.LedgerBackend, "blobs", app.config.BlobBackend)

	if app.config.PrintToken {
		if err := app.printAdminToken(ctx); err != nil {
			return multierr.Append(err, app.Close())
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info(gctx, "Starting JSON-RPC server", "address", app.httpServer.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("rpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info(gctx, "Stopping JSON-RPC server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.httpServer.Shutdown(sctx)
	})
	g.Go(func() error {
		if err := app.health.Run(gctx); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return app.settlement.Run(gctx)
	})
	g.Go(func() error {
		app.limiter.Run(gctx)
		return nil
	})

	err := g.Wait()
	err = multierr.Append(err, app.Close())
	if err != nil {
		app.logger.Error(context.Background(), "app stopped with error", "error", err)
	} else {
		app.logger.Info(context.Background(), "app stopped")
	}
	return err
}

func (app *App) printAdminToken(ctx context.Context) error {
	token, err := app.issuer.New(ctx, api.AllPermissions)
	if err != nil {
		return fmt.Errorf("admin token: %w", err)
	}
	fmt.Fprintf(os.Stderr, "admin token: %s\n", token)
	return nil
}

func (app *App) Close() error {
	return app.repomanager.Close()
}
