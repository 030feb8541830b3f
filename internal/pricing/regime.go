package pricing

import "time"

// TaxRegime holds the percentage rates of one tax regime. Only the active
// regime is used for pricing; keeping a single active regime is the job of
// whoever edits the configuration.
type TaxRegime struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Active               bool      `json:"active"`
	PIS                  float64   `json:"pis"`
	COFINS               float64   `json:"cofins"`
	CSLL                 float64   `json:"csll"`
	IRPJ                 float64   `json:"irpj"`
	ICMS                 float64   `json:"icms"`
	ISS                  float64   `json:"iss"`
	BasePresuncaoVenda   float64   `json:"basePresuncaoVenda"`
	BasePresuncaoServico float64   `json:"basePresuncaoServico"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// SalesTaxRate is the tax burden on goods, as a percentage of revenue.
// CSLL and IRPJ are applied over the presumed-profit base when the regime
// defines one; otherwise their rates are taken as already effective.
func (r TaxRegime) SalesTaxRate() float64 {
	return r.PIS + r.COFINS + r.ICMS + (r.CSLL+r.IRPJ)*presumedFactor(r.BasePresuncaoVenda)
}

// ServiceTaxRate is the tax burden on services, as a percentage of revenue.
func (r TaxRegime) ServiceTaxRate() float64 {
	return r.PIS + r.COFINS + r.ISS + (r.CSLL+r.IRPJ)*presumedFactor(r.BasePresuncaoServico)
}

func presumedFactor(base float64) float64 {
	if base > 0 {
		return base / 100
	}
	return 1
}

// CostsExpenses holds the global percentages applied to every quote.
// There is a single instance.
type CostsExpenses struct {
	ComissaoVenda           float64   `json:"comissaoVenda"`
	ComissaoLocacao         float64   `json:"comissaoLocacao"`
	ComissaoServicos        float64   `json:"comissaoServicos"`
	ComissaoOutsourcing     float64   `json:"comissaoOutsourcing"`
	DespesasAdministrativas float64   `json:"despesasAdministrativas"`
	CustoFinanceiro         float64   `json:"custoFinanceiro"`
	TaxaDesconto            float64   `json:"taxaDesconto"`
	Depreciacao             float64   `json:"depreciacao"`
	MargemPadrao            float64   `json:"margemPadrao"`
	UpdatedAt               time.Time `json:"updatedAt"`
}
