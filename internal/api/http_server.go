package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"tourbook/internal/config"
	"tourbook/internal/domain"
	"tourbook/internal/export"
	"tourbook/internal/metrics"
	"tourbook/internal/wizard"
)

// HTTPServer exposes the booking wizard and the booking store over HTTP.
type HTTPServer struct {
	cfg      config.APIConfig
	wizard   *wizard.Service
	bookings domain.BookingService
	catalog  domain.TourCatalog
	drafts   domain.DraftRepository
	exporter *export.Exporter

	submitLimit  int
	submitWindow time.Duration

	server *http.Server
	auth   *HTTPAuth
	logger *zerolog.Logger
}

func NewHTTPServer(
	cfg config.Config,
	wizardSvc *wizard.Service,
	bookings domain.BookingService,
	catalog domain.TourCatalog,
	drafts domain.DraftRepository,
	exporter *export.Exporter,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:          cfg.API,
		wizard:       wizardSvc,
		bookings:     bookings,
		catalog:      catalog,
		drafts:       drafts,
		exporter:     exporter,
		submitLimit:  cfg.Wizard.SubmitRateLimit,
		submitWindow: time.Duration(cfg.Wizard.SubmitRateWindow) * time.Second,
		auth:         NewHTTPAuth(cfg.API),
		logger:       logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/drafts", srv.handleStartDraft)
	mux.HandleFunc("GET /api/v1/drafts/{id}", srv.handleGetDraft)
	mux.HandleFunc("PUT /api/v1/drafts/{id}/schedule", srv.handleSetSchedule)
	mux.HandleFunc("POST /api/v1/drafts/{id}/adults", srv.handleAdults)
	mux.HandleFunc("POST /api/v1/drafts/{id}/children", srv.handleChildren)
	mux.HandleFunc("PUT /api/v1/drafts/{id}/children/{index}", srv.handleChildAge)
	mux.HandleFunc("PUT /api/v1/drafts/{id}/contact", srv.handleSetContact)
	mux.HandleFunc("PUT /api/v1/drafts/{id}/billing", srv.handleSetBilling)
	mux.HandleFunc("PUT /api/v1/drafts/{id}/card", srv.handleSetCard)
	mux.HandleFunc("PUT /api/v1/drafts/{id}/requests", srv.handleSetRequests)
	mux.HandleFunc("PUT /api/v1/drafts/{id}/agreement", srv.handleSetAgreement)
	mux.HandleFunc("POST /api/v1/drafts/{id}/advance", srv.handleAdvance)
	mux.HandleFunc("POST /api/v1/drafts/{id}/back", srv.handleBack)
	mux.HandleFunc("GET /api/v1/drafts/{id}/quote", srv.handleQuote)
	mux.HandleFunc("POST /api/v1/drafts/{id}/submit", srv.handleSubmit)

	mux.HandleFunc("GET /api/v1/calendar", srv.handleCalendar)
	mux.HandleFunc("GET /api/v1/tours", srv.handleListTours)
	mux.HandleFunc("GET /api/v1/tours/{id}", srv.handleGetTour)

	mux.HandleFunc("POST /api/v1/bookings", srv.handleCreateBooking)
	mux.HandleFunc("GET /api/v1/bookings/{id}", srv.handleGetReceipt)
	mux.HandleFunc("GET /api/v1/bookings", srv.handleListBookings)
	mux.HandleFunc("GET /api/v1/bookings/export", srv.handleExport)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(cfg.API.HTTP.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.API.HTTP.WriteTimeout) * time.Second,
	}

	return srv
}

// Handler returns the fully wrapped handler, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func decodeBody(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}
