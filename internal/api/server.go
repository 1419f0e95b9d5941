// Package api serves the product catalog over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/catalog/internal/core/domain"
	"github.com/vietddude/catalog/internal/health"
)

// ProductService is the set of catalog operations exposed over HTTP.
type ProductService interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Update(ctx context.Context, id int64, changes domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Product], error)
}

// Server provides the product API plus health and metrics endpoints.
type Server struct {
	service ProductService
	monitor *health.Monitor
	server  *http.Server
}

// NewServer creates a new API server. Requests to /products must carry apiKey
// in the x-api-key header.
func NewServer(service ProductService, monitor *health.Monitor, port int, apiKey string) *Server {
	s := &Server{
		service: service,
		monitor: monitor,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(apiKey),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the route table.
func (s *Server) Router(apiKey string) http.Handler {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, metricsMiddleware)

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/health/detailed", s.handleDetailed).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	products := router.PathPrefix("/products").Subrouter()
	products.Use(apiKeyMiddleware(apiKey))
	products.HandleFunc("", s.handleCreate).Methods("POST")
	products.HandleFunc("", s.handleList).Methods("GET")
	products.HandleFunc("/obtain/{id}", s.handleGet).Methods("GET")
	products.HandleFunc("/update/{id}", s.handleUpdate).Methods("PUT")
	products.HandleFunc("/delete/{id}", s.handleDelete).Methods("DELETE")

	return router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth(r.Context())

	status := http.StatusOK
	if report.SystemStatus == health.StatusCritical {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"status": string(report.SystemStatus)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.CheckHealth(r.Context()))
}
