package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Simplici0/propostas-ti/internal/observability"
	"github.com/Simplici0/propostas-ti/internal/quote"
	"github.com/Simplici0/propostas-ti/internal/store"
)

type server struct {
	auth        *authService
	store       *store.Store
	quotes      *quote.Service
	metrics     *observability.Metrics
	logger      *zap.Logger
	laborMarkup float64
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.ZapLoggerMiddleware(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.auth.requireSession)

		r.Get("/tax-regimes", s.handleListTaxRegimes)
		r.Post("/tax-regimes", s.handleCreateTaxRegime)
		r.Put("/tax-regimes/{id}", s.handleUpdateTaxRegime)
		r.Post("/tax-regimes/{id}/activate", s.handleActivateTaxRegime)
		r.Get("/costs-expenses", s.handleGetCostsExpenses)
		r.Put("/costs-expenses", s.handleSaveCostsExpenses)
		r.Get("/labor-costs", s.handleGetLaborCosts)
		r.Put("/labor-costs", s.handleSaveLaborCosts)
		r.Get("/icms-rates", s.handleICMSRates)

		r.Post("/quotes/sales", s.handleQuoteSales)
		r.Post("/quotes/rental", s.handleQuoteRental)
		r.Post("/quotes/rental/recalculate", s.handleQuoteRentalRecalculate)
		r.Post("/quotes/services", s.handleQuoteServices)
		r.Post("/quotes/dre", s.handleQuoteDRE)

		r.Get("/printers", s.handleListPrinters)
		r.Post("/printers", s.handleCreatePrinter)
		r.Get("/printers/{id}", s.handleGetPrinter)
		r.Post("/printers/{id}/supplies", s.handleAddSupply)
		r.Post("/printers/{id}/cost-per-page", s.handlePrinterCostPerPage)
		r.Post("/printers/{id}/contract", s.handlePrinterContract)
		r.Post("/printers/{id}/pricing", s.handlePricePrinter)

		r.Get("/proposals", s.handleListProposals)
		r.Post("/proposals", s.handleCreateProposal)
		r.Get("/proposals/{id}", s.handleGetProposal)
		r.Put("/proposals/{id}", s.handleUpdateProposal)
		r.Post("/proposals/{id}/status", s.handleTransitionProposal)
		r.Get("/proposals/{id}/text", s.handleProposalText)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DB().PingContext(r.Context()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
