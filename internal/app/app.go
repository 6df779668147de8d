package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/henrier/rico-backend/internal/adapter/postgres"
	categoryrepo "github.com/henrier/rico-backend/internal/adapter/postgres/category"
	listingrepo "github.com/henrier/rico-backend/internal/adapter/postgres/listing"
	productrepo "github.com/henrier/rico-backend/internal/adapter/postgres/product"
	companyrepo "github.com/henrier/rico-backend/internal/adapter/postgres/ratingcompany"
	templaterepo "github.com/henrier/rico-backend/internal/adapter/postgres/template"
	"github.com/henrier/rico-backend/internal/config"
	"github.com/henrier/rico-backend/internal/service/catalog"
	"github.com/henrier/rico-backend/internal/service/category"
	"github.com/henrier/rico-backend/internal/service/ratingcompany"
	"github.com/henrier/rico-backend/internal/service/template"
	"github.com/henrier/rico-backend/internal/transport/middleware"
	"github.com/henrier/rico-backend/internal/transport/rest"
)

// Run wires the application together and serves HTTP until ctx is
// cancelled. It owns every long-lived resource: config, logger, the
// connection pool, and the server itself.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	listings := listingrepo.New(pool)
	products := productrepo.New(pool)
	templates := templaterepo.New(pool)
	categories := categoryrepo.New(pool)
	companies := companyrepo.New(pool)
	txm := postgres.NewTxManager(pool)

	catalogSvc := catalog.NewService(logger, listings, products, categories, companies, templates, txm, cfg.Catalog, cfg.Page)
	templateSvc := template.NewService(logger, templates, products, txm, cfg.Page)
	categorySvc := category.NewService(logger, categories, txm, cfg.Page)
	companySvc := ratingcompany.NewService(logger, companies, cfg.Page)

	router := rest.NewRouter(rest.Handlers{
		Catalog:  rest.NewCatalogHandler(catalogSvc, logger),
		Product:  rest.NewProductHandler(catalogSvc, logger),
		Template: rest.NewTemplateHandler(templateSvc, logger),
		Category: rest.NewCategoryHandler(categorySvc, logger),
		Company:  rest.NewCompanyHandler(companySvc, logger),
		Enum:     rest.NewEnumHandler(logger),
		Health:   rest.NewHealthHandler(pool, BuildVersion()),
	})

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		middleware.Actor,
	)(router)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
