package main

import (
	"context"
	"net/http"

	"github.com/Simplici0/propostas-ti/internal/quote"
)

func (s *server) handleQuoteSales(w http.ResponseWriter, r *http.Request) {
	var req quote.SalesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	for _, item := range req.Items {
		if err := nonNegative(field{"items.quantity", item.Quantity}, field{"items.unitCost", item.UnitCost}); err != nil {
			handleServiceError(w, err, s.logger)
			return
		}
	}

	res, err := s.quotes.Sales(r.Context(), req)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleQuoteRental(w http.ResponseWriter, r *http.Request) {
	s.rental(w, r, s.quotes.Rental)
}

func (s *server) handleQuoteRentalRecalculate(w http.ResponseWriter, r *http.Request) {
	s.rental(w, r, s.quotes.RecalculateRentals)
}

func (s *server) rental(w http.ResponseWriter, r *http.Request, price func(context.Context, quote.RentalRequest) (quote.RentalResult, error)) {
	var req quote.RentalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	for _, item := range req.Items {
		if err := nonNegative(field{"items.quantity", item.Quantity}, field{"items.unitValue", item.UnitValue}); err != nil {
			handleServiceError(w, err, s.logger)
			return
		}
	}

	res, err := price(r.Context(), req)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleQuoteServices(w http.ResponseWriter, r *http.Request) {
	var req quote.ServicesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	for _, item := range req.Items {
		if err := nonNegative(field{"items.hourlyRate", item.HourlyRate}, field{"items.totalHours", item.TotalHours}); err != nil {
			handleServiceError(w, err, s.logger)
			return
		}
	}

	res, err := s.quotes.Services(r.Context(), req)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleQuoteDRE(w http.ResponseWriter, r *http.Request) {
	var req quote.DRERequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	res, err := s.quotes.DRE(r.Context(), req)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
