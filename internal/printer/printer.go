// Package printer computes cost per page and contract quotes for printer
// outsourcing.
package printer

import (
	"fmt"
	"time"
)

type SupplyKind string

const (
	KindTonerMono      SupplyKind = "toner_mono"
	KindTonerCyan      SupplyKind = "toner_cyan"
	KindTonerMagenta   SupplyKind = "toner_magenta"
	KindTonerYellow    SupplyKind = "toner_yellow"
	KindPhotoconductor SupplyKind = "photoconductor"
	KindFuser          SupplyKind = "fuser"
)

var supplyKinds = []SupplyKind{
	KindTonerMono, KindTonerCyan, KindTonerMagenta, KindTonerYellow, KindPhotoconductor, KindFuser,
}

// SupplyKinds lists every kind a supply may have.
func SupplyKinds() []SupplyKind {
	return append([]SupplyKind(nil), supplyKinds...)
}

func (k SupplyKind) Valid() bool {
	for _, kind := range supplyKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Color reports whether the supply only matters for color pages.
func (k SupplyKind) Color() bool {
	return k == KindTonerCyan || k == KindTonerMagenta || k == KindTonerYellow
}

// Supply is a consumable with a unit cost and a page yield.
type Supply struct {
	ID         string     `json:"id"`
	PrinterID  string     `json:"printerId"`
	Kind       SupplyKind `json:"kind"`
	Name       string     `json:"name"`
	UnitCost   float64    `json:"unitCost"`
	YieldPages float64    `json:"yieldPages"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Printer is a catalog entry for outsourcing. Pricing holds the last
// computed pricing, if any.
type Printer struct {
	ID                 string    `json:"id"`
	Brand              string    `json:"brand"`
	Model              string    `json:"model"`
	Color              bool      `json:"color"`
	AcquisitionCost    float64   `json:"acquisitionCost"`
	UsefulLifePages    float64   `json:"usefulLifePages"`
	EnergyKWh          float64   `json:"energyKWh"`
	MonthlyMaintenance float64   `json:"monthlyMaintenance"`
	Pricing            *Pricing  `json:"pricing,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (p Printer) DisplayName() string {
	if p.Brand == "" {
		return p.Model
	}
	return p.Brand + " " + p.Model
}

// Assumptions are the operating parameters not stored on the printer.
type Assumptions struct {
	EnergyTariff     float64 `json:"energyTariff"`
	MonthlyVolume    float64 `json:"monthlyVolume"`
	MaintenanceYears float64 `json:"maintenanceYears"`
}

const (
	DefaultEnergyTariff     = 0.65
	DefaultMonthlyVolume    = 2000
	DefaultMaintenanceYears = 5
)

func DefaultAssumptions() Assumptions {
	return Assumptions{
		EnergyTariff:     DefaultEnergyTariff,
		MonthlyVolume:    DefaultMonthlyVolume,
		MaintenanceYears: DefaultMaintenanceYears,
	}
}

// UndefinedRateError reports a per-page rate that cannot be computed because
// its divisor (a yield, the useful life or the monthly volume) is zero.
type UndefinedRateError struct {
	Component string
}

func (e *UndefinedRateError) Error() string {
	return fmt.Sprintf("cost per page undefined: %s has no pages to spread over", e.Component)
}
