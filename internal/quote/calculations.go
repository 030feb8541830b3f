package quote

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/pricing"
	"github.com/Simplici0/propostas-ti/internal/proposal"
)

// SalesRequest prices sales lines. A nil MarginPercent uses the default
// margin from the global costs.
type SalesRequest struct {
	Items                    []pricing.ProductItem `json:"items"`
	MarginPercent            *float64              `json:"marginPercent"`
	DestinationUF            string                `json:"destinationUF"`
	FinalConsumerContributor bool                  `json:"finalConsumerContributor"`
}

type SalesTotals struct {
	TotalCost        float64 `json:"totalCost"`
	Taxes            float64 `json:"taxes"`
	MarginCommission float64 `json:"marginCommission"`
	GrossRevenue     float64 `json:"grossRevenue"`
	DIFAL            float64 `json:"difal"`
	ICMSST           float64 `json:"icmsST"`
	FinalPrice       float64 `json:"finalPrice"`
}

type SalesResult struct {
	MarginPercent float64               `json:"marginPercent"`
	Items         []pricing.ProductItem `json:"items"`
	Totals        SalesTotals           `json:"totals"`
}

func (s *Service) Sales(ctx context.Context, req SalesRequest) (SalesResult, error) {
	ctx, span := tracer.Start(ctx, "Quote.Sales")
	defer span.End()
	span.SetAttributes(attribute.Int("items", len(req.Items)))

	start := time.Now()
	e, err := s.Engine(ctx)
	if err != nil {
		return SalesResult{}, err
	}
	defer s.observe(string(proposal.ModuleSales), "sales", start)

	sc := pricing.SaleContext{
		MarginPercent:            marginOrDefault(e, req.MarginPercent),
		DestinationUF:            req.DestinationUF,
		FinalConsumerContributor: req.FinalConsumerContributor,
	}
	res := SalesResult{MarginPercent: sc.MarginPercent, Items: make([]pricing.ProductItem, len(req.Items))}
	for i, item := range req.Items {
		item = e.UpdateProduct(item, sc)
		res.Items[i] = item

		res.Totals.TotalCost += item.TotalCost
		res.Totals.Taxes += item.Taxes
		res.Totals.MarginCommission += item.MarginCommission
		res.Totals.GrossRevenue += item.GrossRevenue
		res.Totals.DIFAL += item.DIFAL
		res.Totals.ICMSST += item.ICMSSTValue
		res.Totals.FinalPrice += item.FinalPrice()
	}
	return res, nil
}

type RentalRequest struct {
	Items         []pricing.RentalItem `json:"items"`
	Months        int                  `json:"months"`
	MarginPercent *float64             `json:"marginPercent"`
}

type RentalResult struct {
	Months        int                  `json:"months"`
	MarginPercent float64              `json:"marginPercent"`
	Items         []pricing.RentalItem `json:"items"`
	MonthlyCost   float64              `json:"monthlyCost"`
	MonthlyTaxes  float64              `json:"monthlyTaxes"`
	MonthlyMargin float64              `json:"monthlyMargin"`
	MonthlyPrice  float64              `json:"monthlyPrice"`
	TotalPrice    float64              `json:"totalPrice"`
}

// Rental prices rental lines one by one.
func (s *Service) Rental(ctx context.Context, req RentalRequest) (RentalResult, error) {
	return s.rental(ctx, "Quote.Rental", req, func(e *pricing.Engine, margin float64) []pricing.RentalItem {
		out := make([]pricing.RentalItem, len(req.Items))
		for i, item := range req.Items {
			out[i] = e.UpdateRental(item, req.Months, margin)
		}
		return out
	})
}

// RecalculateRentals reprices every line after the contract period or the
// margin changed.
func (s *Service) RecalculateRentals(ctx context.Context, req RentalRequest) (RentalResult, error) {
	return s.rental(ctx, "Quote.RecalculateRentals", req, func(e *pricing.Engine, margin float64) []pricing.RentalItem {
		return e.RecalculateRentals(req.Items, req.Months, margin)
	})
}

func (s *Service) rental(ctx context.Context, spanName string, req RentalRequest, price func(*pricing.Engine, float64) []pricing.RentalItem) (RentalResult, error) {
	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()
	span.SetAttributes(attribute.Int("items", len(req.Items)), attribute.Int("months", req.Months))

	if req.Months <= 0 {
		return RentalResult{}, &domain.ErrValidation{Field: "months", Message: "must be positive"}
	}

	start := time.Now()
	e, err := s.Engine(ctx)
	if err != nil {
		return RentalResult{}, err
	}
	defer s.observe(string(proposal.ModuleRental), "rental", start)

	margin := marginOrDefault(e, req.MarginPercent)
	res := RentalResult{Months: req.Months, MarginPercent: margin, Items: price(e, margin)}
	for _, item := range res.Items {
		res.MonthlyCost += item.MonthlyCost
		res.MonthlyTaxes += item.Taxes
		res.MonthlyMargin += item.MarginCommission
		res.MonthlyPrice += item.MonthlyPrice
	}
	res.TotalPrice = res.MonthlyPrice * float64(req.Months)
	return res, nil
}

type ServicesRequest struct {
	Items         []pricing.ServiceItem `json:"items"`
	MarginPercent *float64              `json:"marginPercent"`
}

type ServicesResult struct {
	MarginPercent    float64               `json:"marginPercent"`
	Items            []pricing.ServiceItem `json:"items"`
	BaseCost         float64               `json:"baseCost"`
	Taxes            float64               `json:"taxes"`
	MarginCommission float64               `json:"marginCommission"`
	FinalPrice       float64               `json:"finalPrice"`
}

func (s *Service) Services(ctx context.Context, req ServicesRequest) (ServicesResult, error) {
	ctx, span := tracer.Start(ctx, "Quote.Services")
	defer span.End()
	span.SetAttributes(attribute.Int("items", len(req.Items)))

	start := time.Now()
	e, err := s.Engine(ctx)
	if err != nil {
		return ServicesResult{}, err
	}
	defer s.observe(string(proposal.ModuleServices), "services", start)

	margin := marginOrDefault(e, req.MarginPercent)
	res := ServicesResult{MarginPercent: margin, Items: make([]pricing.ServiceItem, len(req.Items))}
	for i, item := range req.Items {
		item = priceService(e, item, margin)
		res.Items[i] = item

		res.BaseCost += item.BaseCost
		res.Taxes += item.Taxes
		res.MarginCommission += item.MarginCommission
		res.FinalPrice += item.FinalPrice
	}
	return res, nil
}

// priceService prices item at its own hourly rate, or at the labor cost per
// hour when none was given. HourlyRate comes back as sent.
func priceService(e *pricing.Engine, item pricing.ServiceItem, margin float64) pricing.ServiceItem {
	rate := item.HourlyRate
	if rate == 0 {
		item.HourlyRate = e.Labor().CustoHora
	}
	item = e.UpdateService(item, margin)
	item.HourlyRate = rate
	return item
}

// DRERequest asks for an income statement of one module's quoted values.
type DRERequest struct {
	Module  proposal.Module `json:"module"`
	Revenue float64         `json:"revenue"`
	Taxes   float64         `json:"taxes"`
	Cost    float64         `json:"cost"`
}

func (s *Service) DRE(ctx context.Context, req DRERequest) (pricing.DRE, error) {
	ctx, span := tracer.Start(ctx, "Quote.DRE")
	defer span.End()

	if !req.Module.Valid() {
		return pricing.DRE{}, &domain.ErrValidation{Field: "module", Message: "unknown module " + string(req.Module)}
	}

	start := time.Now()
	e, err := s.Engine(ctx)
	if err != nil {
		return pricing.DRE{}, err
	}
	defer s.observe("dre", "dre", start)

	return e.DRE(pricing.DREInput{
		Revenue:        req.Revenue,
		Taxes:          req.Taxes,
		Cost:           req.Cost,
		CommissionRate: commissionFor(e.Costs(), req.Module),
	}), nil
}

func commissionFor(c pricing.CostsExpenses, m proposal.Module) float64 {
	switch m {
	case proposal.ModuleSales:
		return c.ComissaoVenda
	case proposal.ModuleRental:
		return c.ComissaoLocacao
	case proposal.ModuleServices:
		return c.ComissaoServicos
	case proposal.ModuleOutsourcing:
		return c.ComissaoOutsourcing
	}
	return 0
}
