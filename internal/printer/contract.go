package printer

import (
	"fmt"
	"time"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/pricing"
)

// Modality is the billing mode of an outsourcing contract.
type Modality string

const (
	// Franchise bills a flat monthly fee; the per-page cost behind it
	// carries the fixed costs.
	Franchise Modality = "franchise"
	// PerPage bills an equipment fee covering fixed costs plus pages at
	// the supplies-only rate.
	PerPage Modality = "per_page"
)

func (m Modality) Valid() bool {
	return m == Franchise || m == PerPage
}

// ContractTerms are the contract lengths quoted when pricing a printer.
var ContractTerms = []int{12, 24, 36, 48, 60}

// GrossUpFunc turns a monthly cost into a priced quote, normally
// (*pricing.Engine).OutsourcingPrice.
type GrossUpFunc func(monthlyCost, marginPercent float64) pricing.Quote

type ContractInput struct {
	Modality      Modality `json:"modality"`
	Months        int      `json:"months"`
	MonoVolume    float64  `json:"monoVolume"`
	ColorVolume   float64  `json:"colorVolume"`
	MarginPercent float64  `json:"marginPercent"`
}

// ContractQuote is the monthly and whole-term result of a contract.
// PaybackMonths is zero when the monthly margin does not pay the printer back.
type ContractQuote struct {
	Modality         Modality `json:"modality"`
	Months           int      `json:"months"`
	MonoVolume       float64  `json:"monoVolume"`
	ColorVolume      float64  `json:"colorVolume"`
	CostPerPageMono  float64  `json:"costPerPageMono"`
	CostPerPageColor float64  `json:"costPerPageColor"`
	EquipmentFee     float64  `json:"equipmentFee"`
	MonthlyCost      float64  `json:"monthlyCost"`
	MonthlyTaxes     float64  `json:"monthlyTaxes"`
	MonthlyMargin    float64  `json:"monthlyMargin"`
	MonthlyPrice     float64  `json:"monthlyPrice"`
	TotalCost        float64  `json:"totalCost"`
	TotalPrice       float64  `json:"totalPrice"`
	PaybackMonths    float64  `json:"paybackMonths"`
	ROI              float64  `json:"roi"`
}

// Quote prices a contract for p. A zero MonoVolume uses the assumed monthly
// volume. Color pages are ignored on mono printers.
func Quote(p Printer, supplies []Supply, a Assumptions, in ContractInput, grossUp GrossUpFunc) (ContractQuote, error) {
	if !in.Modality.Valid() {
		return ContractQuote{}, &domain.ErrValidation{Field: "modality", Message: fmt.Sprintf("unknown billing modality %q", in.Modality)}
	}
	if in.Months <= 0 {
		return ContractQuote{}, &domain.ErrValidation{Field: "months", Message: "must be positive"}
	}
	if in.MonoVolume == 0 {
		in.MonoVolume = a.MonthlyVolume
	}
	if !p.Color {
		in.ColorVolume = 0
	}

	cq := ContractQuote{
		Modality:    in.Modality,
		Months:      in.Months,
		MonoVolume:  in.MonoVolume,
		ColorVolume: in.ColorVolume,
	}

	switch in.Modality {
	case Franchise:
		b, err := CostPerPage(p, supplies, a)
		if err != nil {
			return ContractQuote{}, err
		}
		cq.CostPerPageMono = b.Mono
		cq.CostPerPageColor = b.Color
		cq.MonthlyCost = in.MonoVolume*b.Mono + in.ColorVolume*b.Color
	case PerPage:
		b, err := SuppliesOnly(p, supplies)
		if err != nil {
			return ContractQuote{}, err
		}
		cq.CostPerPageMono = b.Mono
		cq.CostPerPageColor = b.Color
		cq.EquipmentFee = p.AcquisitionCost/float64(in.Months) + p.MonthlyMaintenance + p.EnergyKWh*a.EnergyTariff
		cq.MonthlyCost = cq.EquipmentFee + in.MonoVolume*b.Mono + in.ColorVolume*b.Color
	}

	q := grossUp(cq.MonthlyCost, in.MarginPercent)
	cq.MonthlyTaxes = q.Taxes
	cq.MonthlyMargin = q.MarginCommission
	cq.MonthlyPrice = q.FinalPrice

	months := float64(in.Months)
	cq.TotalCost = cq.MonthlyCost * months
	cq.TotalPrice = cq.MonthlyPrice * months
	if cq.MonthlyMargin > 0 {
		cq.PaybackMonths = p.AcquisitionCost / cq.MonthlyMargin
	}
	if p.AcquisitionCost > 0 {
		cq.ROI = cq.MonthlyMargin * months / p.AcquisitionCost * 100
	}
	return cq, nil
}

// Pricing is the pricing stored on a printer: the outright sale price and a
// contract quote for each standard term.
type Pricing struct {
	MarginPercent float64         `json:"marginPercent"`
	RegimeName    string          `json:"regimeName"`
	SalePrice     float64         `json:"salePrice"`
	Terms         []ContractQuote `json:"terms"`
	CalculatedAt  time.Time       `json:"calculatedAt"`
}

// BuildPricing prices p for outright sale through the engine's sales
// gross-up and for every term in ContractTerms under modality.
func BuildPricing(e *pricing.Engine, p Printer, supplies []Supply, a Assumptions, modality Modality, marginPercent float64, now time.Time) (*Pricing, error) {
	pr := &Pricing{
		MarginPercent: marginPercent,
		RegimeName:    e.Regime().Name,
		SalePrice:     e.SalesPrice(p.AcquisitionCost, 1, marginPercent).FinalPrice,
		CalculatedAt:  now,
	}
	for _, months := range ContractTerms {
		cq, err := Quote(p, supplies, a, ContractInput{
			Modality:      modality,
			Months:        months,
			MarginPercent: marginPercent,
		}, e.OutsourcingPrice)
		if err != nil {
			return nil, fmt.Errorf("price %d-month term: %w", months, err)
		}
		pr.Terms = append(pr.Terms, cq)
	}
	return pr, nil
}
