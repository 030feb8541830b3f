package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/money"
	"github.com/Simplici0/propostas-ti/internal/proposal"
	"github.com/Simplici0/propostas-ti/internal/store"
)

type statusRequest struct {
	Status proposal.Status `json:"status"`
}

func (s *server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	filter := store.ProposalFilter{
		Query:  strings.TrimSpace(r.URL.Query().Get("q")),
		Status: proposal.Status(strings.TrimSpace(r.URL.Query().Get("status"))),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		handleServiceError(w, &domain.ErrValidation{Field: "status", Message: "unknown status " + string(filter.Status)}, s.logger)
		return
	}

	proposals, err := s.store.ListProposals(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, proposals)
}

func (s *server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var p proposal.Proposal
	if err := decodeJSON(w, r, &p); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	p, err := s.quotes.PriceProposal(r.Context(), p)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	created, err := s.store.CreateProposal(r.Context(), p)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	s.logger.Info("proposal created",
		zap.String("id", created.ID),
		zap.String("number", created.Number),
		zap.Float64("total_value", created.TotalValue()),
	)
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProposal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleUpdateProposal(w http.ResponseWriter, r *http.Request) {
	var p proposal.Proposal
	if err := decodeJSON(w, r, &p); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	p, err := s.quotes.PriceProposal(r.Context(), p)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	p.ID = chi.URLParam(r, "id")

	updated, err := s.store.UpdateProposal(r.Context(), p)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleTransitionProposal(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	p, err := s.store.TransitionProposal(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	s.logger.Info("proposal status changed", zap.String("id", p.ID), zap.String("status", string(p.Status)))
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleProposalText(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProposal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(proposalText(p)))
}

var moduleLabels = map[proposal.Module]string{
	proposal.ModuleSales:       "Vendas",
	proposal.ModuleRental:      "Locação",
	proposal.ModuleServices:    "Serviços",
	proposal.ModuleOutsourcing: "Outsourcing de Impressão",
}

// proposalText renders a plain-text summary of p with pt-BR amounts.
func proposalText(p *proposal.Proposal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Proposta %s\n", p.Number)
	fmt.Fprintf(&b, "Cliente: %s\n", p.Client)
	fmt.Fprintf(&b, "Projeto: %s\n", p.Project)
	if p.Manager != "" {
		fmt.Fprintf(&b, "Gerente: %s\n", p.Manager)
	}
	fmt.Fprintf(&b, "Status: %s\n", p.Status.Label())
	fmt.Fprintf(&b, "Data: %s\n", p.CreatedAt.Format("02/01/2006"))

	for _, budget := range p.Budgets {
		b.WriteString("\n")
		label := moduleLabels[budget.Module]
		if budget.Description != "" {
			label += " - " + budget.Description
		}
		fmt.Fprintf(&b, "%s\n", label)
		for _, item := range budget.Products {
			fmt.Fprintf(&b, "  %s x%s: %s\n", item.Description, money.Number(item.Quantity, 0), money.BRL(item.FinalPrice()))
		}
		for _, item := range budget.Rentals {
			fmt.Fprintf(&b, "  %s x%s: %s/mês\n", item.Description, money.Number(item.Quantity, 0), money.BRL(item.MonthlyPrice))
		}
		for _, item := range budget.Services {
			fmt.Fprintf(&b, "  %s (%sh): %s\n", item.Description, money.Number(item.TotalHours, 1), money.BRL(item.FinalPrice))
		}
		if budget.MonthlyValue > 0 {
			fmt.Fprintf(&b, "  Mensal: %s em %d meses\n", money.BRL(budget.MonthlyValue), budget.Months)
		}
		fmt.Fprintf(&b, "  Subtotal: %s\n", money.BRL(budget.TotalValue))
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", money.BRL(p.TotalValue()))
	if p.Notes != "" {
		fmt.Fprintf(&b, "\nObservações: %s\n", p.Notes)
	}
	return b.String()
}
