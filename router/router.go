package router

import (
	"net/http"

	_ "go-deposit-api/docs"
	"go-deposit-api/handler"
	"go-deposit-api/observability"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter builds the route table. loadSession attaches the logged-in
// account to requests on endpoints that act on its behalf.
func NewRouter(
	accountHandler *handler.AccountHandler,
	depositHandler *handler.DepositHandler,
	pageHandler *handler.PageHandler,
	loadSession func(http.Handler) http.Handler,
) http.Handler {
	r := mux.NewRouter()

	r.Handle("/health", observability.InstrumentHandler("/health", http.HandlerFunc(handler.HealthCheck))).
		Methods(http.MethodGet)
	r.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Handle("/", observability.InstrumentHandler("/",
		handler.ErrorHandlingMiddleware(pageHandler.Index))).
		Methods(http.MethodGet, http.MethodHead)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/signup", observability.InstrumentHandler("/api/signup",
		handler.ErrorHandlingMiddleware(accountHandler.Signup))).
		Methods(http.MethodPost)
	api.Handle("/login", observability.InstrumentHandler("/api/login",
		handler.ErrorHandlingMiddleware(accountHandler.Login))).
		Methods(http.MethodPost)
	api.Handle("/deposit", observability.InstrumentHandler("/api/deposit",
		loadSession(handler.ErrorHandlingMiddleware(depositHandler.Deposit)))).
		Methods(http.MethodPost)

	// Everything else is looked up in the public asset directory.
	r.PathPrefix("/").Handler(observability.InstrumentHandler("static",
		handler.ErrorHandlingMiddleware(pageHandler.Static))).
		Methods(http.MethodGet, http.MethodHead)

	return r
}
