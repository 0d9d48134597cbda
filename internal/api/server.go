package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Server представляет HTTP-сервер.
type Server struct {
	srv    *http.Server
	router *chi.Mux
	log    *zap.Logger
}

// NewServer создает и настраивает новый экземпляр сервера.
func NewServer(port string, readTimeout, writeTimeout time.Duration, svc Service, log *zap.Logger) *Server {
	s := &Server{log: log}
	s.router = s.setupRouter(NewOrderHandler(svc, log))
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      otelhttp.NewHandler(s.router, "order-lifecycle-api"),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Run запускает HTTP-сервер и блокируется до Shutdown.
func (s *Server) Run() error {
	s.log.Info("HTTP-сервер запущен", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown дожидается завершения текущих запросов.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// setupRouter настраивает маршрутизацию.
func (s *Server) setupRouter(h *OrderHandler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		r.Post("/orders", h.Create)
		r.Route("/orders/{orderID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Post("/status", h.UpdateStatus)
			r.Post("/cancel", h.Cancel)
			r.Post("/assign", h.Assign)
		})
		r.Post("/couriers/{courierID}/topup", h.TopUp)
	})
	router.Handle("/metrics", promhttp.Handler())

	return router
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("HTTP-запрос",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
