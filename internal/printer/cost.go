package printer

// Breakdown itemizes the cost of one page. Mono and Color are the totals;
// Color always includes Mono, so Color >= Mono holds for every printer.
type Breakdown struct {
	TonerMono      float64 `json:"tonerMono"`
	Photoconductor float64 `json:"photoconductor"`
	Fuser          float64 `json:"fuser"`
	TonerCyan      float64 `json:"tonerCyan"`
	TonerMagenta   float64 `json:"tonerMagenta"`
	TonerYellow    float64 `json:"tonerYellow"`
	Maintenance    float64 `json:"maintenance"`
	Energy         float64 `json:"energy"`
	Depreciation   float64 `json:"depreciation"`
	Mono           float64 `json:"mono"`
	Color          float64 `json:"color"`
}

// CostPerPage returns the full cost per page: supplies plus amortized
// maintenance, energy and depreciation. With several supplies of one kind
// the last one wins. A missing supply contributes nothing.
func CostPerPage(p Printer, supplies []Supply, a Assumptions) (Breakdown, error) {
	b, err := SuppliesOnly(p, supplies)
	if err != nil {
		return Breakdown{}, err
	}
	if p.UsefulLifePages <= 0 {
		return Breakdown{}, &UndefinedRateError{Component: "useful_life_pages"}
	}
	if a.MonthlyVolume <= 0 {
		return Breakdown{}, &UndefinedRateError{Component: "monthly_volume"}
	}

	b.Maintenance = p.MonthlyMaintenance * 12 * a.MaintenanceYears / p.UsefulLifePages
	b.Energy = p.EnergyKWh * a.EnergyTariff / a.MonthlyVolume
	b.Depreciation = p.AcquisitionCost / p.UsefulLifePages

	fixed := b.Maintenance + b.Energy + b.Depreciation
	b.Mono += fixed
	b.Color += fixed
	return b, nil
}

// SuppliesOnly returns the per-page cost of consumables alone, the rate
// billed per page when fixed costs are charged as a separate equipment fee.
// Color stacks the color toners on top of Mono; missing toners add nothing.
func SuppliesOnly(p Printer, supplies []Supply) (Breakdown, error) {
	byKind := make(map[SupplyKind]Supply, len(supplies))
	for _, s := range supplies {
		byKind[s.Kind] = s
	}

	rate := func(kind SupplyKind) (float64, error) {
		s, ok := byKind[kind]
		if !ok {
			return 0, nil
		}
		if s.YieldPages <= 0 {
			return 0, &UndefinedRateError{Component: string(kind)}
		}
		return s.UnitCost / s.YieldPages, nil
	}

	var b Breakdown
	var err error
	if b.TonerMono, err = rate(KindTonerMono); err != nil {
		return Breakdown{}, err
	}
	if b.Photoconductor, err = rate(KindPhotoconductor); err != nil {
		return Breakdown{}, err
	}
	if b.Fuser, err = rate(KindFuser); err != nil {
		return Breakdown{}, err
	}
	b.Mono = b.TonerMono + b.Photoconductor + b.Fuser

	if b.TonerCyan, err = rate(KindTonerCyan); err != nil {
		return Breakdown{}, err
	}
	if b.TonerMagenta, err = rate(KindTonerMagenta); err != nil {
		return Breakdown{}, err
	}
	if b.TonerYellow, err = rate(KindTonerYellow); err != nil {
		return Breakdown{}, err
	}
	b.Color = b.Mono + b.TonerCyan + b.TonerMagenta + b.TonerYellow
	return b, nil
}
