package quote

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/pricing"
	"github.com/Simplici0/propostas-ti/internal/proposal"
)

// PriceProposal reprices every line of p against the current configuration
// and refreshes the budget totals. Only input fields of the lines are read;
// derived fields sent by the client are overwritten. Budgets without lines
// keep the total they were given.
func (s *Service) PriceProposal(ctx context.Context, p proposal.Proposal) (proposal.Proposal, error) {
	ctx, span := tracer.Start(ctx, "Quote.PriceProposal")
	defer span.End()
	span.SetAttributes(attribute.Int("budgets", len(p.Budgets)))

	budgets := make([]proposal.Budget, len(p.Budgets))
	copy(budgets, p.Budgets)
	p.Budgets = budgets

	priced := false
	for _, b := range budgets {
		if len(b.Rentals) > 0 && b.Months <= 0 {
			return proposal.Proposal{}, &domain.ErrValidation{Field: "budgets.months", Message: "must be positive for rental lines"}
		}
		priced = priced || b.HasLines()
	}
	if !priced {
		p.Recompute()
		return p, nil
	}

	start := time.Now()
	e, err := s.Engine(ctx)
	if err != nil {
		return proposal.Proposal{}, err
	}
	defer s.observe("proposal", "proposal", start)

	for i := range budgets {
		priceBudget(e, &budgets[i])
	}
	p.Recompute()
	return p, nil
}

func priceBudget(e *pricing.Engine, b *proposal.Budget) {
	margin := marginOrDefault(e, b.MarginPercent)

	if len(b.Products) > 0 {
		sc := pricing.SaleContext{
			MarginPercent:            margin,
			DestinationUF:            b.DestinationUF,
			FinalConsumerContributor: b.FinalConsumerContributor,
		}
		products := make([]pricing.ProductItem, len(b.Products))
		for i, item := range b.Products {
			products[i] = e.UpdateProduct(item, sc)
		}
		b.Products = products
	}
	if len(b.Rentals) > 0 {
		b.Rentals = e.RecalculateRentals(b.Rentals, b.Months, margin)
	}
	if len(b.Services) > 0 {
		services := make([]pricing.ServiceItem, len(b.Services))
		for i, item := range b.Services {
			services[i] = priceService(e, item, margin)
		}
		b.Services = services
	}
}
