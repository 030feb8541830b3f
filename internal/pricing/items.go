package pricing

// ProductItem is a sales line. Everything after DestinationUF is derived by
// UpdateProduct and never edited directly.
type ProductItem struct {
	ID            string  `json:"id"`
	Description   string  `json:"description"`
	Quantity      float64 `json:"quantity"`
	UnitCost      float64 `json:"unitCost"`
	ICMSST        bool    `json:"icmsST"`
	ICMSVenda     float64 `json:"icmsVenda"`
	DestinationUF string  `json:"destinationUF,omitempty"`

	// ICMSVendaEfetivo is the sale rate actually applied: ICMSVenda, or the
	// active regime's ICMS when ICMSVenda is zero.
	ICMSVendaEfetivo float64 `json:"icmsVendaEfetivo"`
	TotalCost        float64 `json:"totalCost"`
	Taxes            float64 `json:"taxes"`
	MarginCommission float64 `json:"marginCommission"`
	GrossRevenue     float64 `json:"grossRevenue"`
	DIFAL            float64 `json:"difal"`
	ICMSSTValue      float64 `json:"icmsSTValue"`
}

// FinalPrice is what the client pays for the line: gross revenue plus the
// substitution tax collected on top of it.
func (p ProductItem) FinalPrice() float64 {
	return p.GrossRevenue + p.ICMSSTValue
}

// RentalItem is a rental line priced per month.
type RentalItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitValue   float64 `json:"unitValue"`

	TotalValue       float64 `json:"totalValue"`
	MonthlyCost      float64 `json:"monthlyCost"`
	Taxes            float64 `json:"taxes"`
	MarginCommission float64 `json:"marginCommission"`
	MonthlyPrice     float64 `json:"monthlyPrice"`
}

// ServiceItem is a services line billed by the hour.
type ServiceItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	HourlyRate  float64 `json:"hourlyRate"`
	TotalHours  float64 `json:"totalHours"`

	EffectiveHourlyRate float64 `json:"effectiveHourlyRate"`
	BaseCost            float64 `json:"baseCost"`
	Taxes               float64 `json:"taxes"`
	MarginCommission    float64 `json:"marginCommission"`
	FinalPrice          float64 `json:"finalPrice"`
}

// SaleContext carries the per-proposal inputs that affect sales lines.
type SaleContext struct {
	MarginPercent float64
	DestinationUF string
	// FinalConsumerContributor marks a buyer that is an ICMS taxpayer and
	// final consumer in another state, the only case where DIFAL applies.
	FinalConsumerContributor bool
}

// UpdateProduct returns item with every derived field recomputed. Input
// fields are left as given.
func (e *Engine) UpdateProduct(item ProductItem, sc SaleContext) ProductItem {
	q := e.SalesPrice(item.UnitCost, item.Quantity, sc.MarginPercent)

	item.TotalCost = q.BaseCost
	item.Taxes = q.Taxes
	item.MarginCommission = q.MarginCommission
	item.GrossRevenue = q.FinalPrice
	item.ICMSVendaEfetivo = item.ICMSVenda
	if item.ICMSVendaEfetivo == 0 {
		item.ICMSVendaEfetivo = e.regime.ICMS
	}

	uf := item.DestinationUF
	if uf == "" {
		uf = sc.DestinationUF
	}
	rated := item
	rated.ICMSVenda = item.ICMSVendaEfetivo
	item.DIFAL = CalculateDIFAL(rated, uf, e.icms, sc.FinalConsumerContributor)
	item.ICMSSTValue = CalculateICMSST(item, item.ICMSVendaEfetivo)
	return item
}

// UpdateRental returns item with every derived field recomputed for a
// contract of months months.
func (e *Engine) UpdateRental(item RentalItem, months int, marginPercent float64) RentalItem {
	q := e.RentalPrice(item.UnitValue, item.Quantity, months, marginPercent)

	item.TotalValue = item.UnitValue * item.Quantity
	item.MonthlyCost = q.BaseCost
	item.Taxes = q.Taxes
	item.MarginCommission = q.MarginCommission
	item.MonthlyPrice = q.FinalPrice
	return item
}

// RecalculateRentals reprices every rental line after the contract period or
// the desired margin changed. Each line is independent of the others.
func (e *Engine) RecalculateRentals(items []RentalItem, months int, marginPercent float64) []RentalItem {
	out := make([]RentalItem, len(items))
	for i, item := range items {
		out[i] = e.UpdateRental(item, months, marginPercent)
	}
	return out
}

// UpdateService returns item with every derived field recomputed at its
// own hourly rate.
func (e *Engine) UpdateService(item ServiceItem, marginPercent float64) ServiceItem {
	q := e.ServicePrice(item.HourlyRate, item.TotalHours, marginPercent)

	item.EffectiveHourlyRate = item.HourlyRate
	item.BaseCost = q.BaseCost
	item.Taxes = q.Taxes
	item.MarginCommission = q.MarginCommission
	item.FinalPrice = q.FinalPrice
	return item
}

// CalculateDIFAL returns the interstate rate differential owed on item when
// the buyer is a contributor final consumer in destination uf. It is the
// item's ICMS sale rate minus the destination table rate, applied to the
// item's gross revenue. Unknown UFs yield zero.
func CalculateDIFAL(item ProductItem, uf string, table ICMSTable, finalConsumerContributor bool) float64 {
	if !finalConsumerContributor {
		return 0
	}
	destRate, ok := table.Rate(uf)
	if !ok {
		return 0
	}
	return item.GrossRevenue * (item.ICMSVenda - destRate) / 100
}

// CalculateICMSST returns the substitution tax added on top of the item's
// gross revenue, or zero when the item is not under ICMS-ST.
func CalculateICMSST(item ProductItem, icmsSalePercent float64) float64 {
	if !item.ICMSST {
		return 0
	}
	return item.GrossRevenue * icmsSalePercent / 100
}
