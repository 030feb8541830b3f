package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/propostas-ti/internal/pricing"
	"github.com/Simplici0/propostas-ti/internal/printer"
	"github.com/Simplici0/propostas-ti/internal/proposal"
)

const (
	SampleProposalNumber = "PROP-EXEMPLO-0001"
	// SampleGrossRevenue is the notebook price shown in the sample proposal.
	SampleGrossRevenue = 11516.64

	timeLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	LaborMarkup   float64
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

var regimes = []pricing.TaxRegime{
	{
		Name:   "Simples Nacional",
		Active: true,
		PIS:    0.277, COFINS: 1.279, CSLL: 0.35, IRPJ: 0.55, ICMS: 1.238, ISS: 2,
	},
	{
		Name: "Lucro Presumido",
		PIS:  0.65, COFINS: 3, CSLL: 9, IRPJ: 15, ICMS: 18, ISS: 5,
		BasePresuncaoVenda: 8, BasePresuncaoServico: 32,
	},
	{
		// CSLL and IRPJ fall on the actual profit and stay out of the quote.
		Name: "Lucro Real",
		PIS:  1.65, COFINS: 7.6, ICMS: 18, ISS: 5,
	},
}

var defaultCosts = pricing.CostsExpenses{
	ComissaoVenda:           2.5,
	ComissaoLocacao:         2,
	ComissaoServicos:        5,
	ComissaoOutsourcing:     3,
	DespesasAdministrativas: 5,
	CustoFinanceiro:         1.5,
	Depreciacao:             10,
	MargemPadrao:            20,
}

var defaultLabor = pricing.LaborCosts{
	Ferias:            11.11,
	UmTercoFerias:     3.70,
	DecimoTerceiro:    8.33,
	INSSBase:          20,
	FGTS:              8,
	SalarioBasePadrao: 3000,
	DiasUteisNoMes:    22,
	HorasPorDia:       8,
}

var samplePrinter = printer.Printer{
	Brand:              "Brother",
	Model:              "HL-L5102DW",
	AcquisitionCost:    1200,
	UsefulLifePages:    100000,
	EnergyKWh:          15,
	MonthlyMaintenance: 25,
}

var sampleSupplies = []printer.Supply{
	{Kind: printer.KindTonerMono, Name: "Toner TN-3442", UnitCost: 180, YieldPages: 2300},
	{Kind: printer.KindPhotoconductor, Name: "Cilindro DR-3440", UnitCost: 350, YieldPages: 12000},
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(timeLayout)
	stats := Stats{}

	steps := []func(context.Context, *sql.Tx, string, *Stats) error{
		func(ctx context.Context, tx *sql.Tx, _ string, stats *Stats) error {
			return seedAdmin(ctx, tx, cfg.AdminEmail, cfg.AdminPassword, stats)
		},
		ensureTaxRegimes,
		ensureCostsExpenses,
		func(ctx context.Context, tx *sql.Tx, now string, stats *Stats) error {
			return ensureLaborCosts(ctx, tx, now, cfg.LaborMarkup, stats)
		},
		ensureSamplePrinter,
		ensureSampleProposal,
	}
	for _, step := range steps {
		if err := step(ctx, tx, now, &stats); err != nil {
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureTaxRegimes(ctx context.Context, tx *sql.Tx, now string, stats *Stats) error {
	var anyActive bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tax_regimes WHERE active = 1)`).Scan(&anyActive); err != nil {
		return fmt.Errorf("check active tax regime: %w", err)
	}

	for _, r := range regimes {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tax_regimes WHERE name = ? LIMIT 1)`, r.Name).Scan(&exists); err != nil {
			return fmt.Errorf("check tax regime %q existence: %w", r.Name, err)
		}
		if exists {
			continue
		}

		active := r.Active && !anyActive
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tax_regimes (
				id, name, active, pis, cofins, csll, irpj, icms, iss,
				base_presuncao_venda, base_presuncao_servico, updated_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			uuid.NewString(), r.Name, active,
			r.PIS, r.COFINS, r.CSLL, r.IRPJ, r.ICMS, r.ISS,
			r.BasePresuncaoVenda, r.BasePresuncaoServico, now,
		); err != nil {
			return fmt.Errorf("insert tax regime %q: %w", r.Name, err)
		}
		if active {
			anyActive = true
		}
		stats.Inserts++
	}
	return nil
}

func ensureCostsExpenses(ctx context.Context, tx *sql.Tx, now string, stats *Stats) error {
	c := defaultCosts
	res, err := tx.ExecContext(ctx, `
		INSERT INTO costs_expenses (
			id,
			comissao_venda, comissao_locacao, comissao_servicos, comissao_outsourcing,
			despesas_administrativas, custo_financeiro, taxa_desconto, depreciacao,
			margem_padrao, updated_at
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		c.ComissaoVenda, c.ComissaoLocacao, c.ComissaoServicos, c.ComissaoOutsourcing,
		c.DespesasAdministrativas, c.CustoFinanceiro, c.TaxaDesconto, c.Depreciacao,
		c.MargemPadrao, now,
	)
	if err != nil {
		return fmt.Errorf("insert costs_expenses singleton: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected > 0 {
		stats.Inserts++
	}
	return nil
}

func ensureLaborCosts(ctx context.Context, tx *sql.Tx, now string, markup float64, stats *Stats) error {
	l := defaultLabor.Recalculate(markup)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO labor_costs (
			id,
			ferias, um_terco_ferias, decimo_terceiro,
			inss_base, inss_sistema_s, inss_ferias_decimo,
			fgts, fgts_ferias_decimo, multa_fgts, outros,
			vale_transporte, plano_saude, vale_refeicao,
			salario_base_padrao, dias_uteis_no_mes, horas_por_dia,
			total_encargos, total_beneficios, custo_hora, valor_venda_hora,
			updated_at
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		l.Ferias, l.UmTercoFerias, l.DecimoTerceiro,
		l.INSSBase, l.INSSSistemaS, l.INSSFeriasDecimo,
		l.FGTS, l.FGTSFeriasDecimo, l.MultaFGTS, l.Outros,
		l.ValeTransporte, l.PlanoSaude, l.ValeRefeicao,
		l.SalarioBasePadrao, l.DiasUteisNoMes, l.HorasPorDia,
		l.TotalEncargos, l.TotalBeneficios, l.CustoHora, l.ValorVendaHora,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert labor_costs singleton: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected > 0 {
		stats.Inserts++
	}
	return nil
}

func ensureSamplePrinter(ctx context.Context, tx *sql.Tx, now string, stats *Stats) error {
	p := samplePrinter

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM printers WHERE brand = ? AND model = ? LIMIT 1)`, p.Brand, p.Model).Scan(&exists); err != nil {
		return fmt.Errorf("check sample printer existence: %w", err)
	}
	if exists {
		return nil
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO printers (id, brand, model, color, acquisition_cost, useful_life_pages, energy_kwh, monthly_maintenance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, p.Brand, p.Model, p.Color, p.AcquisitionCost, p.UsefulLifePages, p.EnergyKWh, p.MonthlyMaintenance, now, now); err != nil {
		return fmt.Errorf("insert sample printer: %w", err)
	}
	stats.Inserts++

	for _, s := range sampleSupplies {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO supplies (id, printer_id, kind, name, unit_cost, yield_pages, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), id, string(s.Kind), s.Name, s.UnitCost, s.YieldPages, now); err != nil {
			return fmt.Errorf("insert sample supply %s: %w", s.Kind, err)
		}
		stats.Inserts++
	}
	return nil
}

func sampleProposalBudgets() []proposal.Budget {
	b := proposal.Budget{
		Module:      proposal.ModuleSales,
		Description: "Estações de trabalho",
		Products: []pricing.ProductItem{{
			ID:               "item-1",
			Description:      "Notebook Dell Latitude 5440",
			Quantity:         1,
			UnitCost:         8500,
			ICMSVenda:        1.238,
			TotalCost:        8500,
			Taxes:            425.42,
			MarginCommission: 2591.22,
			GrossRevenue:     SampleGrossRevenue,
		}},
	}
	b.Recompute()
	return []proposal.Budget{b}
}

func ensureSampleProposal(ctx context.Context, tx *sql.Tx, now string, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM proposals WHERE number = ? LIMIT 1)`, SampleProposalNumber).Scan(&exists); err != nil {
		return fmt.Errorf("check sample proposal existence: %w", err)
	}
	if exists {
		return nil
	}

	budgets := sampleProposalBudgets()
	raw, err := json.Marshal(budgets)
	if err != nil {
		return fmt.Errorf("encode sample proposal budgets: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO proposals (id, number, client, project, manager, notes, budgets_json, total_value, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewString(), SampleProposalNumber, "Cliente Exemplo Ltda", "Renovação de notebooks", "Equipe Comercial", "",
		string(raw), budgets[0].TotalValue, string(proposal.StatusDraft), now, now,
	); err != nil {
		return fmt.Errorf("insert sample proposal: %w", err)
	}
	stats.Inserts++
	return nil
}
