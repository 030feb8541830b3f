// Package money rounds and formats BRL amounts for pt-BR readers.
package money

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder is printed for amounts that are not finite.
const Placeholder = "—"

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Round rounds v to places decimal digits, halves away from zero.
// Non-finite values are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Cents rounds v to two decimal places.
func Cents(v float64) float64 {
	return Round(v, 2)
}

// BRL formats v as "R$ 1.234,56".
func BRL(v float64) string {
	return currency(v, 2)
}

// PerPage formats a per-page cost with four decimal places, as "R$ 0,1393".
func PerPage(v float64) string {
	return currency(v, 4)
}

// Percent formats a percentage with two decimal places, as "12,50%".
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	return Number(v, 2) + "%"
}

// Number formats v with pt-BR separators and exactly places decimals.
func Number(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	r := Round(v, int32(places))
	if r == 0 {
		r = 0 // drop negative zero
	}
	return printer.Sprint(number.Decimal(r, number.Scale(places)))
}

func currency(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder
	}
	r := Round(v, int32(places))
	if r < 0 {
		return "-R$ " + Number(-r, places)
	}
	return "R$ " + Number(r, places)
}
