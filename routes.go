package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"inspectlog/auth"
	"inspectlog/device"
	"inspectlog/deviceqr"
	"inspectlog/inspection"
	"inspectlog/respond"
	"inspectlog/web"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
)

// SetupRoutes builds the full handler: session loading, the access gate,
// request logging, then the API and page routes.
func SetupRoutes(dbConn *sqlx.DB, authManager *auth.Manager, qr *deviceqr.Service, pages *web.Pages) http.Handler {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	api := r.PathPrefix("/api").Subrouter()
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler

	api.HandleFunc("/auth/login", auth.LoginHandler(authManager)).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", auth.LogoutHandler(authManager)).Methods(http.MethodPost)

	api.HandleFunc("/devices", device.ListDevicesHandler(dbConn)).Methods(http.MethodGet)
	api.HandleFunc("/devices/generate-qr", device.GenerateQRHandler(qr)).Methods(http.MethodPost)
	api.HandleFunc("/devices/delete", device.DeleteDeviceHandler(dbConn)).Methods(http.MethodDelete)
	api.HandleFunc("/devices/{deviceId}/label", device.LabelHandler(dbConn)).Methods(http.MethodGet)

	api.HandleFunc("/loggers/create", inspection.CreateLogHandler(dbConn)).Methods(http.MethodPost)
	// Keeps "create" from matching the {deviceId} route below.
	api.HandleFunc("/loggers/create", methodNotAllowed)
	api.HandleFunc("/loggers/logId/{logId}", inspection.UpdateLogHandler(dbConn)).Methods(http.MethodPut)
	api.HandleFunc("/loggers/logId/{logId}", inspection.DeleteLogHandler(dbConn)).Methods(http.MethodDelete)
	api.HandleFunc("/loggers/{deviceId}/view", inspection.ViewHandler(dbConn)).Methods(http.MethodGet)
	api.HandleFunc("/loggers/{deviceId}/export", inspection.ExportHandler(dbConn)).Methods(http.MethodGet)
	api.HandleFunc("/loggers/{deviceId}", inspection.LogsByDeviceHandler(dbConn)).Methods(http.MethodGet)

	api.HandleFunc("/config", GetConfigHandler()).Methods(http.MethodGet)
	api.HandleFunc("/config", SaveConfigHandler()).Methods(http.MethodPost)

	r.HandleFunc("/healthz", healthHandler(dbConn)).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(web.StaticHandler())
	pages.Register(r)

	return authManager.Load(auth.Gate(logRequests(r)))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.Message(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s Not Allowed", r.Method))
}

func healthHandler(dbConn *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := dbConn.PingContext(r.Context()); err != nil {
			respond.Error(w, fmt.Errorf("database unavailable: %w", err))
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
