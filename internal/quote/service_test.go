package quote_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/observability"
	"github.com/Simplici0/propostas-ti/internal/pricing"
	"github.com/Simplici0/propostas-ti/internal/printer"
	"github.com/Simplici0/propostas-ti/internal/proposal"
	"github.com/Simplici0/propostas-ti/internal/quote"
)

// --- Fakes ---

type fakeConfig struct {
	regime *pricing.TaxRegime
	costs  *pricing.CostsExpenses
	labor  *pricing.LaborCosts
	err    error
}

func (f *fakeConfig) ActiveTaxRegime(context.Context) (*pricing.TaxRegime, error) {
	return f.regime, f.err
}

func (f *fakeConfig) CostsExpenses(context.Context) (*pricing.CostsExpenses, error) {
	return f.costs, nil
}

func (f *fakeConfig) LaborCosts(context.Context) (*pricing.LaborCosts, error) {
	return f.labor, nil
}

type fakePrinters struct {
	printers map[string]printer.Printer
	supplies map[string][]printer.Supply
	saved    map[string]*printer.Pricing
}

func (f *fakePrinters) GetPrinter(_ context.Context, id string) (printer.Printer, error) {
	p, ok := f.printers[id]
	if !ok {
		return printer.Printer{}, &domain.ErrNotFound{Resource: "printer", ID: id}
	}
	return p, nil
}

func (f *fakePrinters) ListSupplies(_ context.Context, id string) ([]printer.Supply, error) {
	return f.supplies[id], nil
}

func (f *fakePrinters) SavePrinterPricing(_ context.Context, id string, pr *printer.Pricing) error {
	f.saved[id] = pr
	return nil
}

func readyConfig() *fakeConfig {
	labor := pricing.LaborCosts{
		Ferias: 11.11, UmTercoFerias: 3.70, DecimoTerceiro: 8.33, INSSBase: 20, FGTS: 8,
		SalarioBasePadrao: 3000, DiasUteisNoMes: 22, HorasPorDia: 8,
	}.Recalculate(pricing.DefaultLaborMarkup)
	return &fakeConfig{
		regime: &pricing.TaxRegime{Name: "Simples Nacional", PIS: 0.277, COFINS: 1.279, CSLL: 0.35, IRPJ: 0.55, ICMS: 1.238, ISS: 2},
		costs:  &pricing.CostsExpenses{ComissaoVenda: 2.5, ComissaoLocacao: 2, ComissaoServicos: 5, ComissaoOutsourcing: 3, MargemPadrao: 20},
		labor:  &labor,
	}
}

func samplePrinters() *fakePrinters {
	return &fakePrinters{
		printers: map[string]printer.Printer{
			"p1": {ID: "p1", Brand: "Brother", Model: "HL-L5102DW", AcquisitionCost: 1200, UsefulLifePages: 100000, EnergyKWh: 15, MonthlyMaintenance: 25},
			"p2": {ID: "p2", Brand: "Brother", Model: "Sem vida útil", AcquisitionCost: 1200},
		},
		supplies: map[string][]printer.Supply{
			"p1": {
				{Kind: printer.KindTonerMono, UnitCost: 180, YieldPages: 2300},
				{Kind: printer.KindPhotoconductor, UnitCost: 350, YieldPages: 12000},
			},
		},
		saved: map[string]*printer.Pricing{},
	}
}

func newService(cfg *fakeConfig, printers *fakePrinters) (*quote.Service, *observability.Metrics) {
	metrics := observability.NewMetrics()
	return quote.NewService(cfg, printers, printer.DefaultAssumptions(), metrics, zap.NewNop()), metrics
}

func ptr(v float64) *float64 { return &v }

// --- Tests ---

func TestSales_SimplesScenarioAndTotals(t *testing.T) {
	svc, metrics := newService(readyConfig(), samplePrinters())

	res, err := svc.Sales(context.Background(), quote.SalesRequest{
		Items: []pricing.ProductItem{
			{Description: "Notebook", Quantity: 1, UnitCost: 8500},
			{Description: "Monitor", Quantity: 2, UnitCost: 900, ICMSST: true},
		},
	})
	if err != nil {
		t.Fatalf("Sales: %v", err)
	}

	if res.MarginPercent != 20 {
		t.Fatalf("expected default margin 20, got %v", res.MarginPercent)
	}
	if math.Abs(res.Items[0].GrossRevenue-11516.64) > 0.05 {
		t.Fatalf("notebook gross revenue = %.4f, want ≈ 11516.64", res.Items[0].GrossRevenue)
	}
	want := res.Items[0].FinalPrice() + res.Items[1].FinalPrice()
	if math.Abs(res.Totals.FinalPrice-want) > 1e-9 {
		t.Fatalf("totals.finalPrice = %v, want %v", res.Totals.FinalPrice, want)
	}
	if res.Totals.ICMSST <= 0 {
		t.Fatal("expected ICMS-ST on the monitor line")
	}
	if got := metrics.CalculationCount("vendas"); got != 1 {
		t.Fatalf("calculations = %v, want 1", got)
	}
}

func TestSales_ConfigNotReady(t *testing.T) {
	cfg := readyConfig()
	cfg.regime = nil
	svc, metrics := newService(cfg, samplePrinters())

	_, err := svc.Sales(context.Background(), quote.SalesRequest{})

	var notReady *domain.ErrConfigNotReady
	if !errors.As(err, &notReady) {
		t.Fatalf("expected ErrConfigNotReady, got %v", err)
	}
	if metrics.ConfigNotReadyCount() != 1 {
		t.Fatalf("config not ready count = %v", metrics.ConfigNotReadyCount())
	}
	if metrics.CalculationCount("vendas") != 0 {
		t.Fatal("refused calculation should not be counted")
	}
}

func TestEngine_StoreErrorPropagates(t *testing.T) {
	cfg := readyConfig()
	cfg.err = errors.New("disk I/O error")
	svc, _ := newService(cfg, samplePrinters())

	_, err := svc.Engine(context.Background())
	if err == nil || errors.As(err, new(*domain.ErrConfigNotReady)) {
		t.Fatalf("expected a plain store error, got %v", err)
	}
}

func TestRental_AndRecalculate(t *testing.T) {
	svc, _ := newService(readyConfig(), samplePrinters())
	items := []pricing.RentalItem{{Quantity: 2, UnitValue: 3600}}

	res, err := svc.Rental(context.Background(), quote.RentalRequest{Items: items, Months: 24, MarginPercent: ptr(25)})
	if err != nil {
		t.Fatalf("Rental: %v", err)
	}
	if math.Abs(res.Items[0].MonthlyCost-300) > 1e-9 {
		t.Fatalf("monthly cost = %v, want 300", res.Items[0].MonthlyCost)
	}
	if math.Abs(res.TotalPrice-res.MonthlyPrice*24) > 1e-9 {
		t.Fatalf("total price = %v", res.TotalPrice)
	}

	again, err := svc.RecalculateRentals(context.Background(), quote.RentalRequest{Items: res.Items, Months: 36, MarginPercent: ptr(25)})
	if err != nil {
		t.Fatalf("RecalculateRentals: %v", err)
	}
	if math.Abs(again.Items[0].MonthlyCost-200) > 1e-9 {
		t.Fatalf("monthly cost after recalc = %v, want 200", again.Items[0].MonthlyCost)
	}

	_, err = svc.Rental(context.Background(), quote.RentalRequest{Items: items})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for missing months, got %v", err)
	}
}

func TestServices_Additive(t *testing.T) {
	svc, _ := newService(readyConfig(), samplePrinters())

	res, err := svc.Services(context.Background(), quote.ServicesRequest{
		Items:         []pricing.ServiceItem{{HourlyRate: 100, TotalHours: 10}},
		MarginPercent: ptr(30),
	})
	if err != nil {
		t.Fatalf("Services: %v", err)
	}
	if math.Abs(res.FinalPrice-1350) > 1e-9 {
		t.Fatalf("final price = %v, want 1350", res.FinalPrice)
	}
}

func TestServices_ZeroRateUsesLaborCostPerHour(t *testing.T) {
	svc, _ := newService(readyConfig(), samplePrinters())
	e, err := svc.Engine(context.Background())
	if err != nil {
		t.Fatalf("Engine: %v", err)
	}
	custoHora := e.Labor().CustoHora

	res, err := svc.Services(context.Background(), quote.ServicesRequest{
		Items:         []pricing.ServiceItem{{TotalHours: 10}},
		MarginPercent: ptr(30),
	})
	if err != nil {
		t.Fatalf("Services: %v", err)
	}

	item := res.Items[0]
	if item.HourlyRate != 0 {
		t.Fatalf("input hourly rate rewritten to %v", item.HourlyRate)
	}
	if math.Abs(item.EffectiveHourlyRate-custoHora) > 1e-9 {
		t.Fatalf("effective rate = %v, want %v", item.EffectiveHourlyRate, custoHora)
	}
	if want := custoHora * 10 * 1.35; math.Abs(item.FinalPrice-want) > 1e-9 {
		t.Fatalf("final price = %v, want %v", item.FinalPrice, want)
	}
}

func TestPriceProposal_OverwritesDerivedFields(t *testing.T) {
	svc, metrics := newService(readyConfig(), samplePrinters())

	p, err := svc.PriceProposal(context.Background(), proposal.Proposal{
		Client:  "ACME Ltda",
		Project: "Renovação",
		Budgets: []proposal.Budget{
			{
				Module:     proposal.ModuleSales,
				TotalValue: 1,
				Products: []pricing.ProductItem{{
					Description: "Notebook", Quantity: 1, UnitCost: 8500,
					TotalCost: 1, Taxes: 1, MarginCommission: 1, GrossRevenue: 1, DIFAL: 999, ICMSSTValue: 999,
				}},
			},
			{
				Module:        proposal.ModuleRental,
				Months:        24,
				MarginPercent: ptr(25),
				Rentals:       []pricing.RentalItem{{Quantity: 2, UnitValue: 3600, MonthlyCost: 1, MonthlyPrice: 1}},
			},
			{
				Module:        proposal.ModuleServices,
				MarginPercent: ptr(30),
				Services:      []pricing.ServiceItem{{HourlyRate: 100, TotalHours: 10, BaseCost: 1, FinalPrice: 1}},
			},
			{Module: proposal.ModuleOutsourcing, TotalValue: 4200},
		},
	})
	if err != nil {
		t.Fatalf("PriceProposal: %v", err)
	}

	product := p.Budgets[0].Products[0]
	if math.Abs(product.GrossRevenue-11516.64) > 0.05 || product.TotalCost != 8500 {
		t.Fatalf("product not repriced: %+v", product)
	}
	if product.DIFAL != 0 || product.ICMSSTValue != 0 {
		t.Fatalf("client DIFAL/ST kept: %+v", product)
	}
	if p.Budgets[0].TotalValue != product.FinalPrice() {
		t.Fatalf("sales total = %v, want %v", p.Budgets[0].TotalValue, product.FinalPrice())
	}

	rental := p.Budgets[1].Rentals[0]
	if math.Abs(rental.MonthlyCost-300) > 1e-9 {
		t.Fatalf("rental monthly cost = %v, want 300", rental.MonthlyCost)
	}
	if math.Abs(p.Budgets[1].TotalValue-rental.MonthlyPrice*24) > 1e-9 {
		t.Fatalf("rental total = %v", p.Budgets[1].TotalValue)
	}

	if math.Abs(p.Budgets[2].Services[0].FinalPrice-1350) > 1e-9 || p.Budgets[2].TotalValue != p.Budgets[2].Services[0].FinalPrice {
		t.Fatalf("services not repriced: %+v", p.Budgets[2])
	}
	if p.Budgets[3].TotalValue != 4200 {
		t.Fatalf("outsourcing total = %v, want 4200", p.Budgets[3].TotalValue)
	}
	if got := metrics.CalculationCount("proposal"); got != 1 {
		t.Fatalf("calculations = %v, want 1", got)
	}
}

func TestPriceProposal_Refusals(t *testing.T) {
	ctx := context.Background()

	svc, _ := newService(readyConfig(), samplePrinters())
	_, err := svc.PriceProposal(ctx, proposal.Proposal{Budgets: []proposal.Budget{{
		Module:  proposal.ModuleRental,
		Rentals: []pricing.RentalItem{{Quantity: 1, UnitValue: 1000}},
	}}})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for rentals without months, got %v", err)
	}

	cfg := readyConfig()
	cfg.labor = nil
	svc, _ = newService(cfg, samplePrinters())
	_, err = svc.PriceProposal(ctx, proposal.Proposal{Budgets: []proposal.Budget{{
		Module:   proposal.ModuleSales,
		Products: []pricing.ProductItem{{Quantity: 1, UnitCost: 100}},
	}}})
	var notReady *domain.ErrConfigNotReady
	if !errors.As(err, &notReady) {
		t.Fatalf("expected ErrConfigNotReady, got %v", err)
	}

	p, err := svc.PriceProposal(ctx, proposal.Proposal{Budgets: []proposal.Budget{{Module: proposal.ModuleOutsourcing, TotalValue: 900}}})
	if err != nil {
		t.Fatalf("proposal without lines should not need the configuration: %v", err)
	}
	if p.Budgets[0].TotalValue != 900 {
		t.Fatalf("total = %v, want 900", p.Budgets[0].TotalValue)
	}
}

func TestDRE_UsesModuleCommission(t *testing.T) {
	svc, _ := newService(readyConfig(), samplePrinters())

	d, err := svc.DRE(context.Background(), quote.DRERequest{Module: proposal.ModuleServices, Revenue: 1000, Cost: 500})
	if err != nil {
		t.Fatalf("DRE: %v", err)
	}
	if math.Abs(d.Comissao-50) > 1e-9 {
		t.Fatalf("comissao = %v, want 50", d.Comissao)
	}

	if _, err := svc.DRE(context.Background(), quote.DRERequest{Module: "leasing"}); err == nil {
		t.Fatal("expected unknown module to be rejected")
	}
}

func TestPrinterCostPerPage(t *testing.T) {
	svc, _ := newService(readyConfig(), samplePrinters())

	res, err := svc.PrinterCostPerPage(context.Background(), "p1")
	if err != nil {
		t.Fatalf("PrinterCostPerPage: %v", err)
	}
	if math.Round(res.Full.Mono*10000)/10000 != 0.1393 {
		t.Fatalf("mono = %v, want ≈ 0.1393", res.Full.Mono)
	}
	if res.SuppliesOnly.Mono >= res.Full.Mono {
		t.Fatalf("supplies-only %v should be below full %v", res.SuppliesOnly.Mono, res.Full.Mono)
	}
}

func TestPrinterCostPerPage_UndefinedAndMissing(t *testing.T) {
	svc, _ := newService(readyConfig(), samplePrinters())

	_, err := svc.PrinterCostPerPage(context.Background(), "p2")
	var undefined *printer.UndefinedRateError
	if !errors.As(err, &undefined) {
		t.Fatalf("expected UndefinedRateError, got %v", err)
	}

	_, err = svc.PrinterCostPerPage(context.Background(), "nope")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPrinterContract_PerPage(t *testing.T) {
	svc, _ := newService(readyConfig(), samplePrinters())

	cq, err := svc.PrinterContract(context.Background(), "p1", printer.ContractInput{Modality: printer.PerPage, Months: 36, MonoVolume: 5000}, nil)
	if err != nil {
		t.Fatalf("PrinterContract: %v", err)
	}
	if cq.EquipmentFee <= 0 || cq.MonthlyPrice <= cq.MonthlyCost {
		t.Fatalf("unexpected quote: %+v", cq)
	}
}

func TestPricePrinter_SavesPricing(t *testing.T) {
	printers := samplePrinters()
	svc, _ := newService(readyConfig(), printers)

	pr, err := svc.PricePrinter(context.Background(), "p1", "", ptr(30))
	if err != nil {
		t.Fatalf("PricePrinter: %v", err)
	}
	if len(pr.Terms) != len(printer.ContractTerms) || pr.Terms[0].Modality != printer.Franchise {
		t.Fatalf("unexpected pricing: %+v", pr)
	}
	if printers.saved["p1"] != pr {
		t.Fatal("pricing was not saved on the printer")
	}
}
