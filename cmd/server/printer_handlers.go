package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/printer"
)

type printerDetail struct {
	printer.Printer
	Supplies []printer.Supply `json:"supplies"`
}

type contractRequest struct {
	Modality      printer.Modality `json:"modality"`
	Months        int              `json:"months"`
	MonoVolume    float64          `json:"monoVolume"`
	ColorVolume   float64          `json:"colorVolume"`
	MarginPercent *float64         `json:"marginPercent"`
}

type pricingRequest struct {
	Modality      printer.Modality `json:"modality"`
	MarginPercent *float64         `json:"marginPercent"`
}

func (s *server) handleListPrinters(w http.ResponseWriter, r *http.Request) {
	printers, err := s.store.ListPrinters(r.Context())
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, printers)
}

func (s *server) handleCreatePrinter(w http.ResponseWriter, r *http.Request) {
	var p printer.Printer
	if err := decodeJSON(w, r, &p); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	p.Brand = strings.TrimSpace(p.Brand)
	p.Model = strings.TrimSpace(p.Model)
	if p.Model == "" {
		handleServiceError(w, &domain.ErrValidation{Field: "model", Message: "required"}, s.logger)
		return
	}
	if err := nonNegative(
		field{"acquisitionCost", p.AcquisitionCost},
		field{"usefulLifePages", p.UsefulLifePages},
		field{"energyKWh", p.EnergyKWh},
		field{"monthlyMaintenance", p.MonthlyMaintenance},
	); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	created, err := s.store.CreatePrinter(r.Context(), p)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	s.logger.Info("printer created", zap.String("id", created.ID), zap.String("printer", created.DisplayName()))
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleGetPrinter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.store.GetPrinter(r.Context(), id)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	supplies, err := s.store.ListSupplies(r.Context(), id)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, printerDetail{Printer: p, Supplies: supplies})
}

func (s *server) handleAddSupply(w http.ResponseWriter, r *http.Request) {
	var sp printer.Supply
	if err := decodeJSON(w, r, &sp); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	sp.PrinterID = chi.URLParam(r, "id")
	sp.Name = strings.TrimSpace(sp.Name)
	if err := nonNegative(field{"unitCost", sp.UnitCost}, field{"yieldPages", sp.YieldPages}); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	created, err := s.store.AddSupply(r.Context(), sp)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handlePrinterCostPerPage(w http.ResponseWriter, r *http.Request) {
	res, err := s.quotes.PrinterCostPerPage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handlePrinterContract(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	if err := nonNegative(field{"monoVolume", req.MonoVolume}, field{"colorVolume", req.ColorVolume}); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	in := printer.ContractInput{
		Modality:    req.Modality,
		Months:      req.Months,
		MonoVolume:  req.MonoVolume,
		ColorVolume: req.ColorVolume,
	}
	cq, err := s.quotes.PrinterContract(r.Context(), chi.URLParam(r, "id"), in, req.MarginPercent)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, cq)
}

func (s *server) handlePricePrinter(w http.ResponseWriter, r *http.Request) {
	var req pricingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	pr, err := s.quotes.PricePrinter(r.Context(), chi.URLParam(r, "id"), req.Modality, req.MarginPercent)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, pr)
}
