package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	"sigcheck/internal/api/handlers"
	"sigcheck/internal/api/middleware"
	"sigcheck/internal/pkg/errors"
)

const (
	RouteGenerate = "/api/generate-signature"
	RouteVerify   = "/api/verify-signature"
	RouteWebhook  = "/api/webhook-validator"
	RouteHealth   = "/healthz"
)

type Dependencies struct {
	SignatureHandler *handlers.SignatureHandler
	HealthHandler    *handlers.HealthHandler
	MetricsHandler   *handlers.MetricsHandler
	AuthMiddleware   *middleware.AuthMiddleware
	// MetricsPath is empty when metrics are disabled.
	MetricsPath string
}

// NewRouter wires every route and wraps the result in the request logger.
func NewRouter(deps *Dependencies) http.Handler {
	router := httprouter.New()

	router.POST(RouteGenerate, chain(RouteGenerate, deps.SignatureHandler.Generate, deps.AuthMiddleware.Handle))
	router.POST(RouteVerify, wrap(RouteVerify, deps.SignatureHandler.Verify))
	router.POST(RouteWebhook, wrap(RouteWebhook, deps.SignatureHandler.ValidateWebhook))

	router.GET(RouteHealth, wrap(RouteHealth, deps.HealthHandler.Check))
	if deps.MetricsPath != "" {
		router.GET(deps.MetricsPath, wrap(deps.MetricsPath, deps.MetricsHandler.Export))
	}

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Not found", nil)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		log.Error().
			Interface("panic", v).
			Str("request_id", middleware.RequestIDFrom(r.Context())).
			Str("path", r.URL.Path).
			Msg("recovered handler panic")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error", nil)
	}

	return middleware.RequestLog(router)
}

// Helper function to chain middlewares
func chain(route string, handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(route, handler)
}

// Convert http.HandlerFunc to httprouter.Handle. No route takes path params.
func wrap(route string, handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		middleware.SetRoute(r.Context(), route)
		handler(w, r)
	}
}
