package pricing

// DRE is an income-statement view over quoted values.
type DRE struct {
	ReceitaBruta            float64 `json:"receitaBruta"`
	Descontos               float64 `json:"descontos"`
	Impostos                float64 `json:"impostos"`
	ReceitaLiquida          float64 `json:"receitaLiquida"`
	Custo                   float64 `json:"custo"`
	LucroBruto              float64 `json:"lucroBruto"`
	Comissao                float64 `json:"comissao"`
	DespesasAdministrativas float64 `json:"despesasAdministrativas"`
	CustoFinanceiro         float64 `json:"custoFinanceiro"`
	Depreciacao             float64 `json:"depreciacao"`
	LucroLiquido            float64 `json:"lucroLiquido"`
	MargemLiquida           float64 `json:"margemLiquida"`
}

// DREInput aggregates quoted values for one module or a whole proposal.
type DREInput struct {
	Revenue        float64 `json:"revenue"`
	Taxes          float64 `json:"taxes"`
	Cost           float64 `json:"cost"`
	CommissionRate float64 `json:"commissionRate"`
}

// DRE builds the statement using the global expense percentages, all of
// them applied over gross revenue except depreciation, which applies to cost.
func (e *Engine) DRE(in DREInput) DRE {
	d := DRE{
		ReceitaBruta: in.Revenue,
		Descontos:    in.Revenue * e.costs.TaxaDesconto / 100,
		Impostos:     in.Taxes,
		Custo:        in.Cost,
	}
	d.ReceitaLiquida = d.ReceitaBruta - d.Descontos - d.Impostos
	d.LucroBruto = d.ReceitaLiquida - d.Custo
	d.Comissao = in.Revenue * in.CommissionRate / 100
	d.DespesasAdministrativas = in.Revenue * e.costs.DespesasAdministrativas / 100
	d.CustoFinanceiro = in.Revenue * e.costs.CustoFinanceiro / 100
	d.Depreciacao = in.Cost * e.costs.Depreciacao / 100
	d.LucroLiquido = d.LucroBruto - d.Comissao - d.DespesasAdministrativas - d.CustoFinanceiro - d.Depreciacao
	if d.ReceitaBruta != 0 {
		d.MargemLiquida = d.LucroLiquido / d.ReceitaBruta * 100
	}
	return d
}
