package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/propostas-ti/internal/printer"
	"github.com/Simplici0/propostas-ti/internal/proposal"
)

// CostPerPageResult pairs the full per-page cost with the supplies-only rate.
type CostPerPageResult struct {
	Printer      printer.Printer     `json:"printer"`
	Assumptions  printer.Assumptions `json:"assumptions"`
	Full         printer.Breakdown   `json:"full"`
	SuppliesOnly printer.Breakdown   `json:"suppliesOnly"`
}

func (s *Service) loadPrinter(ctx context.Context, id string) (printer.Printer, []printer.Supply, error) {
	var (
		p        printer.Printer
		supplies []printer.Supply
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = s.printers.GetPrinter(gCtx, id)
		return err
	})
	g.Go(func() error {
		var err error
		supplies, err = s.printers.ListSupplies(gCtx, id)
		if err != nil {
			return fmt.Errorf("load supplies: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return printer.Printer{}, nil, err
	}
	return p, supplies, nil
}

// undefined counts zero-divisor outcomes before handing err back.
func (s *Service) undefined(printerID string, err error) error {
	var undefined *printer.UndefinedRateError
	if errors.As(err, &undefined) {
		s.metrics.IncrUndefinedRate(undefined.Component)
		s.logger.Info("printer cost per page undefined",
			zap.String("printer_id", printerID),
			zap.String("component", undefined.Component),
		)
	}
	return err
}

func (s *Service) PrinterCostPerPage(ctx context.Context, id string) (CostPerPageResult, error) {
	ctx, span := tracer.Start(ctx, "Quote.PrinterCostPerPage")
	defer span.End()
	span.SetAttributes(attribute.String("printer.id", id))

	start := time.Now()
	p, supplies, err := s.loadPrinter(ctx, id)
	if err != nil {
		return CostPerPageResult{}, err
	}

	full, err := printer.CostPerPage(p, supplies, s.assumptions)
	if err != nil {
		return CostPerPageResult{}, s.undefined(id, err)
	}
	suppliesOnly, err := printer.SuppliesOnly(p, supplies)
	if err != nil {
		return CostPerPageResult{}, s.undefined(id, err)
	}
	s.observe(string(proposal.ModuleOutsourcing), "printer_cost_per_page", start)

	return CostPerPageResult{Printer: p, Assumptions: s.assumptions, Full: full, SuppliesOnly: suppliesOnly}, nil
}

// PrinterContract quotes one contract for a printer. A nil margin uses the
// default margin.
func (s *Service) PrinterContract(ctx context.Context, id string, in printer.ContractInput, margin *float64) (printer.ContractQuote, error) {
	ctx, span := tracer.Start(ctx, "Quote.PrinterContract")
	defer span.End()
	span.SetAttributes(attribute.String("printer.id", id), attribute.String("modality", string(in.Modality)))

	start := time.Now()
	e, err := s.Engine(ctx)
	if err != nil {
		return printer.ContractQuote{}, err
	}
	p, supplies, err := s.loadPrinter(ctx, id)
	if err != nil {
		return printer.ContractQuote{}, err
	}

	in.MarginPercent = marginOrDefault(e, margin)
	cq, err := printer.Quote(p, supplies, s.assumptions, in, e.OutsourcingPrice)
	if err != nil {
		return printer.ContractQuote{}, s.undefined(id, err)
	}
	s.observe(string(proposal.ModuleOutsourcing), "printer_contract", start)
	return cq, nil
}

// PricePrinter computes the printer's pricing for every standard term and
// stores it on the printer.
func (s *Service) PricePrinter(ctx context.Context, id string, modality printer.Modality, margin *float64) (*printer.Pricing, error) {
	ctx, span := tracer.Start(ctx, "Quote.PricePrinter")
	defer span.End()
	span.SetAttributes(attribute.String("printer.id", id), attribute.String("modality", string(modality)))

	if modality == "" {
		modality = printer.Franchise
	}

	start := time.Now()
	e, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	p, supplies, err := s.loadPrinter(ctx, id)
	if err != nil {
		return nil, err
	}

	pr, err := printer.BuildPricing(e, p, supplies, s.assumptions, modality, marginOrDefault(e, margin), s.now())
	if err != nil {
		return nil, s.undefined(id, err)
	}
	if err := s.printers.SavePrinterPricing(ctx, id, pr); err != nil {
		return nil, err
	}
	s.observe(string(proposal.ModuleOutsourcing), "printer_pricing", start)

	s.logger.Info("printer priced",
		zap.String("printer_id", id),
		zap.String("regime", pr.RegimeName),
		zap.Float64("sale_price", pr.SalePrice),
	)
	return pr, nil
}
