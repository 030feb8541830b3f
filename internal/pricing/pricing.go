package pricing

import (
	"github.com/Simplici0/propostas-ti/internal/domain"
)

// MarginModel tags which pricing strategy produced a Quote. Sales and rental
// gross the price up so taxes, margin and commission are shares of the final
// price; services add margin on top of cost.
type MarginModel int

const (
	GrossUp MarginModel = iota + 1
	AmortizedGrossUp
	Additive
)

func (m MarginModel) String() string {
	switch m {
	case GrossUp:
		return "gross_up"
	case AmortizedGrossUp:
		return "amortized_gross_up"
	case Additive:
		return "additive"
	default:
		return "unknown"
	}
}

// MarshalText lets quotes serialize the model by name.
func (m MarginModel) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Quote is the derived-field set produced for one line item.
type Quote struct {
	Model            MarginModel `json:"model"`
	BaseCost         float64     `json:"baseCost"`
	Taxes            float64     `json:"taxes"`
	MarginCommission float64     `json:"marginCommission"`
	FinalPrice       float64     `json:"finalPrice"`
}

// GrossUpPrice computes the price that recovers base plus taxRate and
// marginRate (both percentages of the final price). A zero base yields a
// zero quote. A combined rate of 100% or more is not rejected.
func GrossUpPrice(base, taxRate, marginRate float64) Quote {
	if base == 0 {
		return Quote{Model: GrossUp}
	}

	final := base / (1 - (taxRate+marginRate)/100)
	return Quote{
		Model:            GrossUp,
		BaseCost:         base,
		Taxes:            final * taxRate / 100,
		MarginCommission: final * marginRate / 100,
		FinalPrice:       final,
	}
}

// Engine is a pricing calculator bound to one configuration snapshot.
// It holds copies, so later edits to the configuration do not leak into
// an engine that is already in use.
type Engine struct {
	regime TaxRegime
	costs  CostsExpenses
	labor  LaborCosts
	icms   ICMSTable
}

// NewEngine builds an engine from the active tax regime, the global costs and
// the labor parameters. Any missing piece means the configuration is still
// loading and no calculation may be shown.
func NewEngine(regime *TaxRegime, costs *CostsExpenses, labor *LaborCosts) (*Engine, error) {
	var missing []string
	if regime == nil {
		missing = append(missing, "tax_regime")
	}
	if costs == nil {
		missing = append(missing, "costs_expenses")
	}
	if labor == nil {
		missing = append(missing, "labor_costs")
	}
	if len(missing) > 0 {
		return nil, &domain.ErrConfigNotReady{Missing: missing}
	}

	return &Engine{
		regime: *regime,
		costs:  *costs,
		labor:  *labor,
		icms:   DefaultICMSTable(),
	}, nil
}

// Regime returns the tax regime the engine was built with.
func (e *Engine) Regime() TaxRegime { return e.regime }

// Costs returns the global cost percentages the engine was built with.
func (e *Engine) Costs() CostsExpenses { return e.costs }

// Labor returns the labor parameters the engine was built with.
func (e *Engine) Labor() LaborCosts { return e.labor }

// ICMS returns the interstate rate table used for DIFAL.
func (e *Engine) ICMS() ICMSTable { return e.icms }

// SalesPrice prices a sales line: the base cost is grossed up so that the
// regime's sales taxes, the desired margin and the sales commission are all
// percentages of the final price.
func (e *Engine) SalesPrice(unitCost, quantity, marginPercent float64) Quote {
	base := unitCost * quantity
	return GrossUpPrice(base, e.regime.SalesTaxRate(), marginPercent+e.costs.ComissaoVenda)
}

// RentalPrice prices a rental line per month: the acquisition cost is spread
// over the contract period and the monthly share is grossed up.
func (e *Engine) RentalPrice(unitValue, quantity float64, months int, marginPercent float64) Quote {
	if months <= 0 {
		return Quote{Model: AmortizedGrossUp}
	}

	monthly := unitValue * quantity / float64(months)
	q := GrossUpPrice(monthly, e.regime.SalesTaxRate(), marginPercent+e.costs.ComissaoLocacao)
	q.Model = AmortizedGrossUp
	return q
}

// ServicePrice prices a services line additively. Taxes are tracked for
// reporting only; the final price is base plus margin and commission.
func (e *Engine) ServicePrice(hourlyRate, totalHours, marginPercent float64) Quote {
	base := hourlyRate * totalHours
	marginCommission := base * (marginPercent + e.costs.ComissaoServicos) / 100
	return Quote{
		Model:            Additive,
		BaseCost:         base,
		Taxes:            base * e.regime.ServiceTaxRate() / 100,
		MarginCommission: marginCommission,
		FinalPrice:       base + marginCommission,
	}
}

// OutsourcingPrice grosses up a monthly outsourcing cost using the sales tax
// rate and the outsourcing commission.
func (e *Engine) OutsourcingPrice(monthlyCost, marginPercent float64) Quote {
	return GrossUpPrice(monthlyCost, e.regime.SalesTaxRate(), marginPercent+e.costs.ComissaoOutsourcing)
}
