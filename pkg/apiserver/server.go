package apiserver

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/surecart/licensing-sdk/pkg/buildversion"
	"github.com/surecart/licensing-sdk/pkg/config"
	"github.com/surecart/licensing-sdk/pkg/handlers"
	"github.com/surecart/licensing-sdk/pkg/licensing"
	"github.com/surecart/licensing-sdk/pkg/logger"
	"github.com/surecart/licensing-sdk/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

type APIServerParams struct {
	Context   context.Context
	Config    *config.LicensingConfig
	Clientset licensing.ClientsetFunc
	// Token, when set, is required in the authorization header of /api routes.
	Token            string
	DisableHeartbeat bool
}

// NewRouter builds the local licensing API.
func NewRouter(client *licensing.Client, token string) http.Handler {
	h := handlers.New(client)

	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware)

	r.HandleFunc("/healthz", handlers.Healthz)
	r.Handle("/metrics", metrics.Handler())

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(handlers.RequireTokenMiddleware(token))

	// license
	apiRouter.HandleFunc("/license/activate", h.ActivateLicense).Methods("POST")
	apiRouter.HandleFunc("/license/deactivate", h.DeactivateLicense).Methods("POST")
	apiRouter.HandleFunc("/license/status", h.GetLicenseStatus).Methods("GET")

	// updates
	apiRouter.HandleFunc("/updates", h.GetUpdates).Methods("GET")
	apiRouter.HandleFunc("/plugin-information", h.GetPluginInformation).Methods("GET")

	// preflight requests match no route
	return handlers.CorsMiddleware(r)
}

// Start bootstraps the licensing client and serves the API until the context is done.
func Start(params APIServerParams) error {
	logger.Infof("SureCart licensing version: %s", buildversion.Version())

	if params.Context == nil {
		params.Context = context.Background()
	}

	result, err := bootstrapWithRetry(params.Context, params, backoff.NewConstantBackOff(10*time.Second))
	if err != nil {
		return errors.Wrap(err, "failed to bootstrap")
	}
	if result.heartbeat != nil {
		defer result.heartbeat.Stop()
	}

	srv := &http.Server{
		Handler:           NewRouter(result.client, params.Token),
		Addr:              params.Config.API.Address,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting licensing API on %s...", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "failed to serve")
	case <-params.Context.Done():
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return errors.Wrap(err, "failed to shut down")
		}
		return nil
	}
}
