package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
	"translit/internal/controllers"
	"translit/internal/providers"
	"translit/internal/services"
	"translit/internal/structures"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	conf       *structures.Config
	logger     providers.Logger
	router     providers.RouterProviderInterface
	history    services.HistoryServiceInterface
	controller *controllers.HistoryController
}

func NewApp(conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, history services.HistoryServiceInterface, controller *controllers.HistoryController) *App {
	return &App{
		conf:       conf,
		logger:     logger,
		router:     router,
		history:    history,
		controller: controller,
	}
}

func (a *App) Controller() *controllers.HistoryController {
	return a.controller
}

// startDiagnostics serves the registered routes on metrics.addr when
// metrics are enabled. The returned stop func shuts the listener down.
func (a *App) startDiagnostics() (string, func(), error) {
	if !a.conf.Metrics.Enabled {
		return "", func() {}, nil
	}

	ln, err := net.Listen("tcp", a.conf.Metrics.Addr)
	if err != nil {
		return "", nil, fmt.Errorf("diagnostics listener: %w", err)
	}
	server := &http.Server{
		Handler:      a.router.Mux(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		a.logger.Infof(providers.TypeApp, "Diagnostics listening on %s", ln.Addr())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(providers.TypeApp, "diagnostics server: %s", err)
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			a.logger.Errorf(providers.TypeApp, "diagnostics shutdown: %s", err)
		}
	}
	return ln.Addr().String(), stop, nil
}

// Run drives the interactive history session until the user quits or ctx
// is cancelled.
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	a.logger.Infof(providers.TypeApp, "Starting %s against %s", a.conf.AppName, a.conf.Api.BaseURL)

	_, stop, err := a.startDiagnostics()
	if err != nil {
		return err
	}
	defer stop()

	err = a.controller.Run(ctx, in, out)
	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return err
}

func (a *App) Close() {
	a.history.Close()
	a.logger.Close()
}
