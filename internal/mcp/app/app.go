package app

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

	"github.com/taskwire/taskwire/internal/mcp/dispatch"
	httpapi "github.com/taskwire/taskwire/internal/mcp/http"
	"github.com/taskwire/taskwire/internal/mcp/jira"
	"github.com/taskwire/taskwire/pkg/oauthsdk"
	"github.com/taskwire/taskwire/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the MCP gateway with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	jiraClient *jira.Client
	dispatcher *dispatch.Dispatcher
	validator  httpapi.TokenValidator

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if cfg.JiraURL == "" || cfg.JiraUsername == "" || cfg.JiraAPIToken == "" {
		return nil, errors.New("JIRA_URL, JIRA_USERNAME and JIRA_API_TOKEN must be set")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "mcp-gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("mcp gateway starting",
		"port", app.cfg.Port,
		"jira_url", app.cfg.JiraURL,
		"token_validation", app.cfg.TokenValidation,
		"version", BuildVersion,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down mcp gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.logger.Info("mcp gateway stopped")
	return nil
}

// initServices initializes the JIRA client, dispatcher and token validator
func (app *Application) initServices() {
	app.jiraClient = jira.NewClient(app.cfg.JiraURL, app.cfg.JiraUsername, app.cfg.JiraAPIToken)
	app.dispatcher = &dispatch.Dispatcher{
		Backend: app.jiraClient,
		Logger:  app.logger,
	}

	switch app.cfg.TokenValidation {
	case "none":
		app.logger.Warn("token validation disabled; any Bearer token is accepted")
		app.validator = httpapi.AllowAllValidator{}
	default:
		app.validator = &httpapi.IntrospectValidator{
			Client: oauthsdk.NewClient(app.cfg.AuthServerURL),
		}
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.cfg.Resource, app.cfg.AuthServerURL, BuildVersion, app.logger)

	router.Dispatcher = app.dispatcher
	router.Backend = app.jiraClient
	router.Validator = app.validator
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
