package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Simplici0/propostas-ti/internal/db"
	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/migrations"
	"github.com/Simplici0/propostas-ti/internal/observability"
	"github.com/Simplici0/propostas-ti/internal/pricing"
	"github.com/Simplici0/propostas-ti/internal/printer"
	"github.com/Simplici0/propostas-ti/internal/proposal"
	"github.com/Simplici0/propostas-ti/internal/quote"
	"github.com/Simplici0/propostas-ti/internal/seed"
	"github.com/Simplici0/propostas-ti/internal/store"
)

const (
	testEmail    = "admin@propostas.local"
	testPassword = "12345"
)

type testServer struct {
	srv     *server
	handler http.Handler
	cookie  *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := migrations.Up(ctx, database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(ctx, database, seed.Config{AdminEmail: testEmail, AdminPassword: testPassword}); err != nil {
		t.Fatalf("seed database: %v", err)
	}

	st := store.New(database)
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	srv := &server{
		auth:        newAuthService(st, "test-secret"),
		store:       st,
		quotes:      quote.NewService(st, st, printer.DefaultAssumptions(), metrics, logger),
		metrics:     metrics,
		logger:      logger,
		laborMarkup: pricing.DefaultLaborMarkup,
	}
	ts := &testServer{srv: srv, handler: srv.routes()}

	rec := ts.do(t, http.MethodPost, "/login", map[string]string{"email": testEmail, "password": testPassword})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("login: expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			ts.cookie = c
		}
	}
	if ts.cookie == nil {
		t.Fatal("login did not set the session cookie")
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if ts.cookie != nil {
		req.AddCookie(ts.cookie)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	expectStatus(t, ts.do(t, http.MethodGet, "/healthz", nil), http.StatusOK)

	expectStatus(t, ts.do(t, http.MethodPost, "/api/quotes/sales", quote.SalesRequest{
		Items: []pricing.ProductItem{{Description: "Notebook", Quantity: 1, UnitCost: 8500}},
	}), http.StatusOK)

	rec := ts.do(t, http.MethodGet, "/metrics", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `propostas_calculations_total{module="vendas"} 1`) {
		t.Fatalf("metrics output missing sales counter:\n%s", rec.Body.String())
	}
}

func TestAPI_RequiresSession(t *testing.T) {
	ts := newTestServer(t)
	ts.cookie = nil

	expectStatus(t, ts.do(t, http.MethodGet, "/api/tax-regimes", nil), http.StatusUnauthorized)

	ts.cookie = &http.Cookie{Name: sessionCookieName, Value: "YWRtaW4.deadbeef"}
	expectStatus(t, ts.do(t, http.MethodGet, "/api/tax-regimes", nil), http.StatusUnauthorized)
}

func TestLogin_RejectsWrongPassword(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/login", map[string]string{"email": testEmail, "password": "wrong"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = ts.do(t, http.MethodPost, "/login", map[string]string{"email": "nobody@example.com", "password": testPassword})
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestSessionValue_RoundTripAndTamper(t *testing.T) {
	a := newAuthService(nil, "secret")
	value := a.createSessionValue(testEmail)

	email, ok := a.verifySessionValue(value)
	if !ok || email != testEmail {
		t.Fatalf("verify = %q, %v", email, ok)
	}
	if _, ok := newAuthService(nil, "other").verifySessionValue(value); ok {
		t.Fatal("value signed with another secret must not verify")
	}
	if _, ok := a.verifySessionValue(strings.Replace(value, ".", "x.", 1)); ok {
		t.Fatal("tampered payload must not verify")
	}
}

func TestQuoteSales_UsesSeededConfiguration(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/quotes/sales", quote.SalesRequest{
		Items: []pricing.ProductItem{{Description: "Notebook", Quantity: 1, UnitCost: 8500}},
	})
	expectStatus(t, rec, http.StatusOK)

	res := decodeBody[quote.SalesResult](t, rec)
	if res.MarginPercent != 20 {
		t.Fatalf("expected default margin 20, got %v", res.MarginPercent)
	}
	if math.Abs(res.Totals.GrossRevenue-seed.SampleGrossRevenue) > 0.05 {
		t.Fatalf("gross revenue = %.4f, want ≈ %.2f", res.Totals.GrossRevenue, seed.SampleGrossRevenue)
	}
}

func TestQuote_ConfigNotReadyReturns503(t *testing.T) {
	ts := newTestServer(t)
	if _, err := ts.srv.store.DB().Exec(`DELETE FROM costs_expenses`); err != nil {
		t.Fatalf("delete costs: %v", err)
	}

	rec := ts.do(t, http.MethodPost, "/api/quotes/services", quote.ServicesRequest{})
	expectStatus(t, rec, http.StatusServiceUnavailable)
	if body := decodeBody[errorResponse](t, rec); body.Error != domain.ConfigNotReadyMessage {
		t.Fatalf("error = %q, want %q", body.Error, domain.ConfigNotReadyMessage)
	}

	expectStatus(t, ts.do(t, http.MethodGet, "/api/costs-expenses", nil), http.StatusServiceUnavailable)
	if ts.srv.metrics.ConfigNotReadyCount() != 1 {
		t.Fatalf("config not ready count = %v", ts.srv.metrics.ConfigNotReadyCount())
	}
}

func TestQuote_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	expectStatus(t, ts.do(t, http.MethodPost, "/api/quotes/sales", `{"itens": []}`), http.StatusBadRequest)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/quotes/rental", quote.RentalRequest{
		Items: []pricing.RentalItem{{Quantity: 1, UnitValue: 1000}},
	}), http.StatusBadRequest)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/quotes/services", quote.ServicesRequest{
		Items: []pricing.ServiceItem{{HourlyRate: -1, TotalHours: 1}},
	}), http.StatusBadRequest)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/quotes/dre", quote.DRERequest{Module: "leasing"}), http.StatusBadRequest)
}

func TestQuoteRental_TotalsOverTerm(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/quotes/rental/recalculate", quote.RentalRequest{
		Items:  []pricing.RentalItem{{Description: "Notebook", Quantity: 2, UnitValue: 3600}},
		Months: 24,
	})
	expectStatus(t, rec, http.StatusOK)

	res := decodeBody[quote.RentalResult](t, rec)
	if math.Abs(res.MonthlyCost-300) > 1e-9 {
		t.Fatalf("monthly cost = %v, want 300", res.MonthlyCost)
	}
	if math.Abs(res.TotalPrice-res.MonthlyPrice*24) > 1e-9 {
		t.Fatalf("total price = %v, monthly %v", res.TotalPrice, res.MonthlyPrice)
	}
}

func TestTaxRegimes_CreateActivateConflict(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/tax-regimes", pricing.TaxRegime{Name: "Regime Teste", PIS: 1, COFINS: 2})
	expectStatus(t, rec, http.StatusCreated)
	created := decodeBody[pricing.TaxRegime](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/tax-regimes/"+created.ID+"/activate", nil)
	expectStatus(t, rec, http.StatusOK)
	if !decodeBody[pricing.TaxRegime](t, rec).Active {
		t.Fatal("expected regime to be active")
	}

	rec = ts.do(t, http.MethodGet, "/api/tax-regimes", nil)
	expectStatus(t, rec, http.StatusOK)
	active := 0
	for _, r := range decodeBody[[]pricing.TaxRegime](t, rec) {
		if r.Active {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active regime, got %d", active)
	}

	expectStatus(t, ts.do(t, http.MethodPost, "/api/tax-regimes", pricing.TaxRegime{Name: "Regime Teste"}), http.StatusConflict)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/tax-regimes", pricing.TaxRegime{Name: " "}), http.StatusBadRequest)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/tax-regimes/missing/activate", nil), http.StatusNotFound)
}

func TestLaborCosts_PutRecomputesAggregates(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/labor-costs", pricing.LaborCosts{
		Ferias: 11.11, UmTercoFerias: 3.70, DecimoTerceiro: 8.33, INSSBase: 20, FGTS: 8,
		SalarioBasePadrao: 3000, DiasUteisNoMes: 22, HorasPorDia: 8,
		CustoHora: 1,
	})
	expectStatus(t, rec, http.StatusOK)

	saved := decodeBody[pricing.LaborCosts](t, rec)
	if math.Abs(saved.CustoHora-25.7625) > 1e-6 {
		t.Fatalf("custoHora = %v, want 25.7625", saved.CustoHora)
	}
	if math.Abs(saved.ValorVendaHora-saved.CustoHora*pricing.DefaultLaborMarkup) > 1e-9 {
		t.Fatalf("valorVendaHora = %v", saved.ValorVendaHora)
	}

	rec = ts.do(t, http.MethodGet, "/api/labor-costs", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[pricing.LaborCosts](t, rec).CustoHora; math.Abs(got-25.7625) > 1e-6 {
		t.Fatalf("stored custoHora = %v", got)
	}
}

func TestICMSRates_Sorted(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/icms-rates", nil)
	expectStatus(t, rec, http.StatusOK)
	rates := decodeBody[[]pricing.ICMSRate](t, rec)
	if len(rates) != 27 {
		t.Fatalf("expected 27 UFs, got %d", len(rates))
	}
	for i := 1; i < len(rates); i++ {
		if rates[i-1].UF >= rates[i].UF {
			t.Fatalf("rates not sorted at %d: %s >= %s", i, rates[i-1].UF, rates[i].UF)
		}
	}
}

func TestPrinters_CostPerPageContractAndPricing(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/printers", printer.Printer{
		Brand: "HP", Model: "LaserJet M404", AcquisitionCost: 1200,
		UsefulLifePages: 100000, EnergyKWh: 15, MonthlyMaintenance: 25,
	})
	expectStatus(t, rec, http.StatusCreated)
	p := decodeBody[printer.Printer](t, rec)

	for _, sp := range []printer.Supply{
		{Kind: printer.KindTonerMono, Name: "Toner", UnitCost: 180, YieldPages: 2300},
		{Kind: printer.KindPhotoconductor, Name: "Cilindro", UnitCost: 350, YieldPages: 12000},
	} {
		expectStatus(t, ts.do(t, http.MethodPost, "/api/printers/"+p.ID+"/supplies", sp), http.StatusCreated)
	}
	expectStatus(t, ts.do(t, http.MethodPost, "/api/printers/"+p.ID+"/supplies", printer.Supply{Kind: "ink"}), http.StatusBadRequest)

	rec = ts.do(t, http.MethodPost, "/api/printers/"+p.ID+"/cost-per-page", nil)
	expectStatus(t, rec, http.StatusOK)
	cpp := decodeBody[quote.CostPerPageResult](t, rec)
	if got := math.Round(cpp.Full.Mono*10000) / 10000; got != 0.1393 {
		t.Fatalf("mono cost per page = %v, want 0.1393", got)
	}

	rec = ts.do(t, http.MethodPost, "/api/printers/"+p.ID+"/contract", map[string]any{
		"modality": "per_page", "months": 36, "monoVolume": 5000,
	})
	expectStatus(t, rec, http.StatusOK)
	if cq := decodeBody[printer.ContractQuote](t, rec); cq.EquipmentFee <= 0 || cq.Months != 36 {
		t.Fatalf("unexpected contract quote: %+v", cq)
	}

	expectStatus(t, ts.do(t, http.MethodPost, "/api/printers/"+p.ID+"/pricing", nil), http.StatusOK)
	rec = ts.do(t, http.MethodGet, "/api/printers/"+p.ID, nil)
	expectStatus(t, rec, http.StatusOK)
	detail := decodeBody[printerDetail](t, rec)
	if detail.Pricing == nil || len(detail.Pricing.Terms) != len(printer.ContractTerms) || len(detail.Supplies) != 2 {
		t.Fatalf("unexpected printer detail: %+v", detail)
	}
}

func TestPrinters_UndefinedRateAndMissing(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/printers", printer.Printer{Brand: "Epson", Model: "Sem vida útil", AcquisitionCost: 900})
	expectStatus(t, rec, http.StatusCreated)
	p := decodeBody[printer.Printer](t, rec)

	expectStatus(t, ts.do(t, http.MethodPost, "/api/printers/"+p.ID+"/cost-per-page", nil), http.StatusUnprocessableEntity)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/printers/missing/cost-per-page", nil), http.StatusNotFound)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/printers", printer.Printer{Brand: "Epson", Model: "Sem vida útil"}), http.StatusConflict)
}

func TestProposals_Lifecycle(t *testing.T) {
	ts := newTestServer(t)
	margin := 30.0

	rec := ts.do(t, http.MethodPost, "/api/proposals", proposal.Proposal{
		Client:  "ACME Ltda",
		Project: "Rede corporativa",
		Manager: "Ana",
		Budgets: []proposal.Budget{{
			Module:        proposal.ModuleServices,
			MarginPercent: &margin,
			TotalValue:    1,
			Services:      []pricing.ServiceItem{{Description: "Instalação", HourlyRate: 100, TotalHours: 10, BaseCost: 1, FinalPrice: 1}},
		}},
	})
	expectStatus(t, rec, http.StatusCreated)
	created := decodeBody[proposal.Proposal](t, rec)
	if created.Status != proposal.StatusDraft || math.Abs(created.TotalValue()-1350) > 1e-9 {
		t.Fatalf("unexpected proposal: %+v", created)
	}
	if created.Budgets[0].Services[0].BaseCost != 1000 {
		t.Fatalf("client base cost kept: %+v", created.Budgets[0].Services[0])
	}

	path := "/api/proposals/" + created.ID
	expectStatus(t, ts.do(t, http.MethodPost, path+"/status", statusRequest{Status: proposal.StatusCompleted}), http.StatusConflict)
	expectStatus(t, ts.do(t, http.MethodPost, path+"/status", statusRequest{Status: "archived"}), http.StatusBadRequest)

	rec = ts.do(t, http.MethodPost, path+"/status", statusRequest{Status: proposal.StatusActive})
	expectStatus(t, rec, http.StatusOK)
	if decodeBody[proposal.Proposal](t, rec).Status != proposal.StatusActive {
		t.Fatal("expected active proposal")
	}

	rec = ts.do(t, http.MethodGet, "/api/proposals?status=active&q=ACME", nil)
	expectStatus(t, rec, http.StatusOK)
	list := decodeBody[[]store.ProposalSummary](t, rec)
	if len(list) != 1 || list[0].ID != created.ID || math.Abs(list[0].TotalValue-1350) > 1e-9 {
		t.Fatalf("unexpected list: %+v", list)
	}
	expectStatus(t, ts.do(t, http.MethodGet, "/api/proposals?status=archived", nil), http.StatusBadRequest)

	rec = ts.do(t, http.MethodGet, path+"/text", nil)
	expectStatus(t, rec, http.StatusOK)
	text := rec.Body.String()
	for _, want := range []string{created.Number, "Cliente: ACME Ltda", "Status: Ativa", "Total: R$ 1.350,00"} {
		if !strings.Contains(text, want) {
			t.Fatalf("text summary missing %q:\n%s", want, text)
		}
	}

	expectStatus(t, ts.do(t, http.MethodPut, path, proposal.Proposal{Client: "", Project: "x"}), http.StatusBadRequest)
	expectStatus(t, ts.do(t, http.MethodGet, "/api/proposals/missing", nil), http.StatusNotFound)

	edit := created
	edit.Budgets[0].MarginPercent = nil
	edit.Budgets[0].Services[0].FinalPrice = 99999
	rec = ts.do(t, http.MethodPut, path, edit)
	expectStatus(t, rec, http.StatusOK)
	updated := decodeBody[proposal.Proposal](t, rec)
	if math.Abs(updated.TotalValue()-1250) > 1e-9 || updated.Status != proposal.StatusActive {
		t.Fatalf("update at the default margin: %+v", updated)
	}

	expectStatus(t, ts.do(t, http.MethodPost, path+"/status", statusRequest{Status: proposal.StatusCancelled}), http.StatusOK)
	rec = ts.do(t, http.MethodPut, path, edit)
	expectStatus(t, rec, http.StatusConflict)
	rec = ts.do(t, http.MethodGet, path, nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[proposal.Proposal](t, rec); math.Abs(got.TotalValue()-1250) > 1e-9 || got.Status != proposal.StatusCancelled {
		t.Fatalf("cancelled proposal changed: %+v", got)
	}
}

func TestProposals_PricedFromConfiguration(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/proposals", proposal.Proposal{
		Client:  "ACME Ltda",
		Project: "Notebooks",
		Budgets: []proposal.Budget{{
			Module: proposal.ModuleSales,
			Products: []pricing.ProductItem{{
				Description: "Notebook", Quantity: 1, UnitCost: 8500,
				TotalCost: 1, Taxes: 1, MarginCommission: 1, GrossRevenue: 1, ICMSSTValue: 50000,
			}},
		}},
	})
	expectStatus(t, rec, http.StatusCreated)
	created := decodeBody[proposal.Proposal](t, rec)
	product := created.Budgets[0].Products[0]
	if math.Abs(product.GrossRevenue-seed.SampleGrossRevenue) > 0.05 || product.ICMSSTValue != 0 {
		t.Fatalf("product not repriced: %+v", product)
	}
	if math.Abs(created.TotalValue()-product.GrossRevenue) > 1e-9 {
		t.Fatalf("total = %v, want %v", created.TotalValue(), product.GrossRevenue)
	}

	expectStatus(t, ts.do(t, http.MethodPost, "/api/proposals", proposal.Proposal{
		Client:  "ACME Ltda",
		Project: "Locação",
		Budgets: []proposal.Budget{{
			Module:  proposal.ModuleRental,
			Rentals: []pricing.RentalItem{{Quantity: 1, UnitValue: 1000}},
		}},
	}), http.StatusBadRequest)

	if _, err := ts.srv.store.DB().Exec(`DELETE FROM costs_expenses`); err != nil {
		t.Fatalf("delete costs: %v", err)
	}
	rec = ts.do(t, http.MethodPut, "/api/proposals/"+created.ID, created)
	expectStatus(t, rec, http.StatusServiceUnavailable)
	if body := decodeBody[errorResponse](t, rec); body.Error != domain.ConfigNotReadyMessage {
		t.Fatalf("error = %q, want %q", body.Error, domain.ConfigNotReadyMessage)
	}
}
