package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/pricing"
)

func validateTaxRegime(r *pricing.TaxRegime) error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "required"}
	}
	return nonNegative(
		field{"pis", r.PIS},
		field{"cofins", r.COFINS},
		field{"csll", r.CSLL},
		field{"irpj", r.IRPJ},
		field{"icms", r.ICMS},
		field{"iss", r.ISS},
		field{"basePresuncaoVenda", r.BasePresuncaoVenda},
		field{"basePresuncaoServico", r.BasePresuncaoServico},
	)
}

func (s *server) handleListTaxRegimes(w http.ResponseWriter, r *http.Request) {
	regimes, err := s.store.ListTaxRegimes(r.Context())
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, regimes)
}

func (s *server) handleCreateTaxRegime(w http.ResponseWriter, r *http.Request) {
	var regime pricing.TaxRegime
	if err := decodeJSON(w, r, &regime); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	if err := validateTaxRegime(&regime); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	created, err := s.store.CreateTaxRegime(r.Context(), regime)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	s.logger.Info("tax regime created", zap.String("id", created.ID), zap.String("name", created.Name), zap.Bool("active", created.Active))
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleUpdateTaxRegime(w http.ResponseWriter, r *http.Request) {
	var regime pricing.TaxRegime
	if err := decodeJSON(w, r, &regime); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	if err := validateTaxRegime(&regime); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	regime.ID = chi.URLParam(r, "id")

	updated, err := s.store.UpdateTaxRegime(r.Context(), regime)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleActivateTaxRegime(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.ActivateTaxRegime(r.Context(), id); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	regime, err := s.store.GetTaxRegime(r.Context(), id)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	s.logger.Info("tax regime activated", zap.String("id", id), zap.String("name", regime.Name))
	writeJSON(w, http.StatusOK, regime)
}

func (s *server) handleGetCostsExpenses(w http.ResponseWriter, r *http.Request) {
	costs, err := s.store.CostsExpenses(r.Context())
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	if costs == nil {
		handleServiceError(w, &domain.ErrConfigNotReady{Missing: []string{"costs_expenses"}}, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, costs)
}

func (s *server) handleSaveCostsExpenses(w http.ResponseWriter, r *http.Request) {
	var costs pricing.CostsExpenses
	if err := decodeJSON(w, r, &costs); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	if err := nonNegative(
		field{"comissaoVenda", costs.ComissaoVenda},
		field{"comissaoLocacao", costs.ComissaoLocacao},
		field{"comissaoServicos", costs.ComissaoServicos},
		field{"comissaoOutsourcing", costs.ComissaoOutsourcing},
		field{"despesasAdministrativas", costs.DespesasAdministrativas},
		field{"custoFinanceiro", costs.CustoFinanceiro},
		field{"taxaDesconto", costs.TaxaDesconto},
		field{"depreciacao", costs.Depreciacao},
	); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	saved, err := s.store.SaveCostsExpenses(r.Context(), costs)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *server) handleGetLaborCosts(w http.ResponseWriter, r *http.Request) {
	labor, err := s.store.LaborCosts(r.Context())
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	if labor == nil {
		handleServiceError(w, &domain.ErrConfigNotReady{Missing: []string{"labor_costs"}}, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, labor)
}

// handleSaveLaborCosts stores the itemized labor parameters with the
// aggregates recomputed from them; aggregates sent by the client are ignored.
func (s *server) handleSaveLaborCosts(w http.ResponseWriter, r *http.Request) {
	var labor pricing.LaborCosts
	if err := decodeJSON(w, r, &labor); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	if err := nonNegative(
		field{"salarioBasePadrao", labor.SalarioBasePadrao},
		field{"diasUteisNoMes", labor.DiasUteisNoMes},
		field{"horasPorDia", labor.HorasPorDia},
	); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	saved, err := s.store.SaveLaborCosts(r.Context(), labor.Recalculate(s.laborMarkup))
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	s.logger.Info("labor costs saved", zap.Float64("custo_hora", saved.CustoHora), zap.Float64("valor_venda_hora", saved.ValorVendaHora))
	writeJSON(w, http.StatusOK, saved)
}

func (s *server) handleICMSRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pricing.DefaultICMSTable().Sorted())
}
