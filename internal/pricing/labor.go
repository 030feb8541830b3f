package pricing

import "time"

// DefaultLaborMarkup turns the labor cost per hour into the sell rate per hour.
const DefaultLaborMarkup = 1.66

// LaborCosts holds the CLT burden, benefits and working-time parameters.
// TotalEncargos, TotalBeneficios, CustoHora and ValorVendaHora are derived and
// only change through Recalculate.
type LaborCosts struct {
	// Burden, in percent of the base salary.
	Ferias           float64 `json:"ferias"`
	UmTercoFerias    float64 `json:"umTercoFerias"`
	DecimoTerceiro   float64 `json:"decimoTerceiro"`
	INSSBase         float64 `json:"inssBase"`
	INSSSistemaS     float64 `json:"inssSistemaS"`
	INSSFeriasDecimo float64 `json:"inssFeriasDecimo"`
	FGTS             float64 `json:"fgts"`
	FGTSFeriasDecimo float64 `json:"fgtsFeriasDecimo"`
	MultaFGTS        float64 `json:"multaFgts"`
	Outros           float64 `json:"outros"`

	// Benefits, in BRL per month.
	ValeTransporte float64 `json:"valeTransporte"`
	PlanoSaude     float64 `json:"planoSaude"`
	ValeRefeicao   float64 `json:"valeRefeicao"`

	SalarioBasePadrao float64 `json:"salarioBasePadrao"`
	DiasUteisNoMes    float64 `json:"diasUteisNoMes"`
	HorasPorDia       float64 `json:"horasPorDia"`

	TotalEncargos   float64   `json:"totalEncargos"`
	TotalBeneficios float64   `json:"totalBeneficios"`
	CustoHora       float64   `json:"custoHora"`
	ValorVendaHora  float64   `json:"valorVendaHora"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Recalculate returns a copy with every aggregate recomputed from the
// itemized fields. multiplier is the hour markup; zero means DefaultLaborMarkup.
func (l LaborCosts) Recalculate(multiplier float64) LaborCosts {
	if multiplier == 0 {
		multiplier = DefaultLaborMarkup
	}

	l.TotalEncargos = l.Ferias + l.UmTercoFerias + l.DecimoTerceiro +
		l.INSSBase + l.INSSSistemaS + l.INSSFeriasDecimo +
		l.FGTS + l.FGTSFeriasDecimo + l.MultaFGTS + l.Outros
	l.TotalBeneficios = l.ValeTransporte + l.PlanoSaude + l.ValeRefeicao

	monthly := l.MonthlyCost()
	hours := l.DiasUteisNoMes * l.HorasPorDia
	if hours > 0 {
		l.CustoHora = monthly / hours
	} else {
		l.CustoHora = 0
	}
	l.ValorVendaHora = l.CustoHora * multiplier
	return l
}

// MonthlyCost is the fully burdened monthly cost of one employee.
func (l LaborCosts) MonthlyCost() float64 {
	return l.SalarioBasePadrao*(1+l.TotalEncargos/100) + l.TotalBeneficios
}
