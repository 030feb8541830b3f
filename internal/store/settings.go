package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/propostas-ti/internal/pricing"
)

// CostsExpenses returns the global cost percentages, or nil when they were
// never saved.
func (s *Store) CostsExpenses(ctx context.Context) (*pricing.CostsExpenses, error) {
	var c pricing.CostsExpenses
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT
			comissao_venda, comissao_locacao, comissao_servicos, comissao_outsourcing,
			despesas_administrativas, custo_financeiro, taxa_desconto, depreciacao,
			margem_padrao, updated_at
		FROM costs_expenses
		WHERE id = 1
	`).Scan(
		&c.ComissaoVenda, &c.ComissaoLocacao, &c.ComissaoServicos, &c.ComissaoOutsourcing,
		&c.DespesasAdministrativas, &c.CustoFinanceiro, &c.TaxaDesconto, &c.Depreciacao,
		&c.MargemPadrao, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query costs_expenses: %w", err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveCostsExpenses writes the singleton row, creating it if needed.
func (s *Store) SaveCostsExpenses(ctx context.Context, c pricing.CostsExpenses) (pricing.CostsExpenses, error) {
	c.UpdatedAt = s.now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO costs_expenses (
			id,
			comissao_venda, comissao_locacao, comissao_servicos, comissao_outsourcing,
			despesas_administrativas, custo_financeiro, taxa_desconto, depreciacao,
			margem_padrao, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			comissao_venda = excluded.comissao_venda,
			comissao_locacao = excluded.comissao_locacao,
			comissao_servicos = excluded.comissao_servicos,
			comissao_outsourcing = excluded.comissao_outsourcing,
			despesas_administrativas = excluded.despesas_administrativas,
			custo_financeiro = excluded.custo_financeiro,
			taxa_desconto = excluded.taxa_desconto,
			depreciacao = excluded.depreciacao,
			margem_padrao = excluded.margem_padrao,
			updated_at = excluded.updated_at
	`,
		c.ComissaoVenda, c.ComissaoLocacao, c.ComissaoServicos, c.ComissaoOutsourcing,
		c.DespesasAdministrativas, c.CustoFinanceiro, c.TaxaDesconto, c.Depreciacao,
		c.MargemPadrao, formatTime(c.UpdatedAt),
	)
	if err != nil {
		return pricing.CostsExpenses{}, fmt.Errorf("upsert costs_expenses: %w", err)
	}
	return c, nil
}

// LaborCosts returns the labor parameters, or nil when they were never saved.
func (s *Store) LaborCosts(ctx context.Context) (*pricing.LaborCosts, error) {
	var l pricing.LaborCosts
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT
			ferias, um_terco_ferias, decimo_terceiro,
			inss_base, inss_sistema_s, inss_ferias_decimo,
			fgts, fgts_ferias_decimo, multa_fgts, outros,
			vale_transporte, plano_saude, vale_refeicao,
			salario_base_padrao, dias_uteis_no_mes, horas_por_dia,
			total_encargos, total_beneficios, custo_hora, valor_venda_hora,
			updated_at
		FROM labor_costs
		WHERE id = 1
	`).Scan(
		&l.Ferias, &l.UmTercoFerias, &l.DecimoTerceiro,
		&l.INSSBase, &l.INSSSistemaS, &l.INSSFeriasDecimo,
		&l.FGTS, &l.FGTSFeriasDecimo, &l.MultaFGTS, &l.Outros,
		&l.ValeTransporte, &l.PlanoSaude, &l.ValeRefeicao,
		&l.SalarioBasePadrao, &l.DiasUteisNoMes, &l.HorasPorDia,
		&l.TotalEncargos, &l.TotalBeneficios, &l.CustoHora, &l.ValorVendaHora,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query labor_costs: %w", err)
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// SaveLaborCosts writes the singleton row as given; aggregates are expected
// to be recomputed by the caller.
func (s *Store) SaveLaborCosts(ctx context.Context, l pricing.LaborCosts) (pricing.LaborCosts, error) {
	l.UpdatedAt = s.now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO labor_costs (
			id,
			ferias, um_terco_ferias, decimo_terceiro,
			inss_base, inss_sistema_s, inss_ferias_decimo,
			fgts, fgts_ferias_decimo, multa_fgts, outros,
			vale_transporte, plano_saude, vale_refeicao,
			salario_base_padrao, dias_uteis_no_mes, horas_por_dia,
			total_encargos, total_beneficios, custo_hora, valor_venda_hora,
			updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ferias = excluded.ferias,
			um_terco_ferias = excluded.um_terco_ferias,
			decimo_terceiro = excluded.decimo_terceiro,
			inss_base = excluded.inss_base,
			inss_sistema_s = excluded.inss_sistema_s,
			inss_ferias_decimo = excluded.inss_ferias_decimo,
			fgts = excluded.fgts,
			fgts_ferias_decimo = excluded.fgts_ferias_decimo,
			multa_fgts = excluded.multa_fgts,
			outros = excluded.outros,
			vale_transporte = excluded.vale_transporte,
			plano_saude = excluded.plano_saude,
			vale_refeicao = excluded.vale_refeicao,
			salario_base_padrao = excluded.salario_base_padrao,
			dias_uteis_no_mes = excluded.dias_uteis_no_mes,
			horas_por_dia = excluded.horas_por_dia,
			total_encargos = excluded.total_encargos,
			total_beneficios = excluded.total_beneficios,
			custo_hora = excluded.custo_hora,
			valor_venda_hora = excluded.valor_venda_hora,
			updated_at = excluded.updated_at
	`,
		l.Ferias, l.UmTercoFerias, l.DecimoTerceiro,
		l.INSSBase, l.INSSSistemaS, l.INSSFeriasDecimo,
		l.FGTS, l.FGTSFeriasDecimo, l.MultaFGTS, l.Outros,
		l.ValeTransporte, l.PlanoSaude, l.ValeRefeicao,
		l.SalarioBasePadrao, l.DiasUteisNoMes, l.HorasPorDia,
		l.TotalEncargos, l.TotalBeneficios, l.CustoHora, l.ValorVendaHora,
		formatTime(l.UpdatedAt),
	)
	if err != nil {
		return pricing.LaborCosts{}, fmt.Errorf("upsert labor_costs: %w", err)
	}
	return l, nil
}
