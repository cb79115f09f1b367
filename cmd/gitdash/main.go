package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/gitdash/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/gitdash/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/gitdash/internal/adapter/driving/http"
	"github.com/ericfisherdev/gitdash/internal/application"
	"github.com/ericfisherdev/gitdash/internal/config"
	"github.com/ericfisherdev/gitdash/internal/domain/model"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"refresh_interval", cfg.RefreshInterval,
		"refresh_concurrency", cfg.RefreshConcurrency,
		"slot", cfg.Slot,
		"encryption", cfg.SecretKey != nil,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	logger.Info("migrations complete")

	// 5. Wire adapters and services.
	accountStore := sqliteadapter.NewAccountRepo(db, cfg.SecretKey)
	repoStore := sqliteadapter.NewRepositorySettingRepo(db)
	appStore := sqliteadapter.NewApplicationSettingRepo(db)
	ghClient := githubadapter.NewClient(logger)

	accountSvc := application.NewAccountSettingService(accountStore, ghClient, logger)
	repoSvc := application.NewRepositorySettingService(repoStore, logger)
	appSvc := application.NewApplicationSettingService(appStore)
	factory := application.NewInteractorFactory(ghClient)

	// 6. Resolve the account slot whose settings this process serves.
	slot, err := resolveSlot(ctx, appSvc, cfg.Slot)
	if err != nil {
		return err
	}
	scope := slot.Scope()
	logger.Info("slot resolved", "slot", slot.Label, "scope", scope)

	// 7. Restore the signed-in account. A stored account takes priority over
	// GITDASH_GITHUB_TOKEN, which only bootstraps an empty slot.
	provider := application.NewInteractorProvider(nil)
	account, err := accountSvc.GetAccount(ctx, scope)
	if err != nil {
		return err
	}
	switch {
	case account != nil:
		provider.Replace(factory.ForAccount(*account))
		logger.Info("account restored", "account", account.Key())
	case cfg.HasBootstrapToken():
		signedIn, err := accountSvc.SignIn(ctx, scope, cfg.GitHubURL, cfg.GitHubToken)
		if err != nil {
			logger.Warn("bootstrap sign-in failed, starting signed out", "error", err)
			break
		}
		provider.Replace(factory.ForAccount(signedIn))
	default:
		logger.Info("no account configured, sign in via PUT /api/v1/account")
	}

	// 8. Import tracked repositories from the YAML file, if any.
	if cfg.RepositoriesFile != "" {
		if err := importRepositories(ctx, repoSvc, scope, cfg.RepositoriesFile, logger); err != nil {
			return err
		}
	}

	// 9. Create and start the refresher.
	cache := application.NewDashboardCache()
	refresher := application.NewRefresher(provider, repoSvc, cache, scope, cfg.RefreshInterval, cfg.RefreshConcurrency, logger)
	go refresher.Start(ctx)

	// 10. Create HTTP handler and server.
	apiHandler := httphandler.NewHandler(accountSvc, repoSvc, factory, provider, refresher, cache, scope, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("gitdash started",
		"listen_addr", cfg.ListenAddr,
		"signed_in", provider.HasAccount(),
	)

	// 11. Wait for shutdown signal.
	<-ctx.Done()
	logger.Info("shutting down")

	// 12. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// resolveSlot returns the slot labeled label, creating it on first start.
func resolveSlot(ctx context.Context, appSvc *application.ApplicationSettingService, label string) (model.ApplicationSetting, error) {
	existing, err := appSvc.FindByLabel(ctx, label)
	if err != nil {
		return model.ApplicationSetting{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	slot := model.NewApplicationSetting(label)
	if err := appSvc.AddSetting(ctx, slot); err != nil {
		return model.ApplicationSetting{}, err
	}
	return slot, nil
}

// importRepositories adds every repository of the import file that is not
// tracked yet. Entries already tracked keep their stored preference.
func importRepositories(ctx context.Context, repoSvc *application.RepositorySettingService, scope, path string, logger *slog.Logger) error {
	identities, err := config.LoadRepositoryFile(path)
	if err != nil {
		return err
	}

	added := 0
	for _, id := range identities {
		ok, err := repoSvc.AddRepositorySetting(ctx, scope, id)
		if err != nil {
			return fmt.Errorf("import %s: %w", id.URL(), err)
		}
		if ok {
			added++
		}
	}

	logger.Info("repository file imported", "path", path, "entries", len(identities), "added", added)
	return nil
}
