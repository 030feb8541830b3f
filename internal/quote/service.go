// Package quote runs pricing calculations against the stored configuration.
package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/observability"
	"github.com/Simplici0/propostas-ti/internal/pricing"
	"github.com/Simplici0/propostas-ti/internal/printer"
)

var tracer = otel.Tracer("service/quote")

// ConfigStore supplies the pricing configuration. Each method returns nil
// when that piece has not been configured yet.
type ConfigStore interface {
	ActiveTaxRegime(ctx context.Context) (*pricing.TaxRegime, error)
	CostsExpenses(ctx context.Context) (*pricing.CostsExpenses, error)
	LaborCosts(ctx context.Context) (*pricing.LaborCosts, error)
}

// PrinterStore supplies printers and their supplies.
type PrinterStore interface {
	GetPrinter(ctx context.Context, id string) (printer.Printer, error)
	ListSupplies(ctx context.Context, printerID string) ([]printer.Supply, error)
	SavePrinterPricing(ctx context.Context, id string, pr *printer.Pricing) error
}

// Service builds a pricing engine from a fresh configuration snapshot for
// every calculation.
type Service struct {
	config      ConfigStore
	printers    PrinterStore
	assumptions printer.Assumptions
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(
	config ConfigStore,
	printers PrinterStore,
	assumptions printer.Assumptions,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		config:      config,
		printers:    printers,
		assumptions: assumptions,
		metrics:     metrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Assumptions returns the printer operating parameters in use.
func (s *Service) Assumptions() printer.Assumptions { return s.assumptions }

// Engine loads the three configuration pieces concurrently and builds an
// engine. A missing piece yields *domain.ErrConfigNotReady.
func (s *Service) Engine(ctx context.Context) (*pricing.Engine, error) {
	ctx, span := tracer.Start(ctx, "Quote.Engine")
	defer span.End()

	var (
		regime *pricing.TaxRegime
		costs  *pricing.CostsExpenses
		labor  *pricing.LaborCosts
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.config.ActiveTaxRegime(gCtx)
		if err != nil {
			return fmt.Errorf("load active tax regime: %w", err)
		}
		regime = r
		return nil
	})
	g.Go(func() error {
		c, err := s.config.CostsExpenses(gCtx)
		if err != nil {
			return fmt.Errorf("load costs and expenses: %w", err)
		}
		costs = c
		return nil
	})
	g.Go(func() error {
		l, err := s.config.LaborCosts(gCtx)
		if err != nil {
			return fmt.Errorf("load labor costs: %w", err)
		}
		labor = l
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "config load failed")
		return nil, err
	}

	engine, err := pricing.NewEngine(regime, costs, labor)
	if err != nil {
		var notReady *domain.ErrConfigNotReady
		if errors.As(err, &notReady) {
			s.metrics.IncrConfigNotReady()
			s.logger.Warn("pricing configuration not ready", zap.Strings("missing", notReady.Missing))
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("tax_regime", engine.Regime().Name))
	return engine, nil
}

// observe records the calculation count and duration for module.
func (s *Service) observe(module, operation string, start time.Time) {
	s.metrics.IncrCalculation(module)
	s.metrics.RecordCalculationDuration(operation, time.Since(start))
}

func marginOrDefault(e *pricing.Engine, margin *float64) float64 {
	if margin != nil {
		return *margin
	}
	return e.Costs().MargemPadrao
}
