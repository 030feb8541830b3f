package pricing

import (
	"sort"
	"strings"
)

// ICMSTable maps a destination UF to its internal ICMS rate, in percent.
type ICMSTable map[string]float64

var defaultICMSRates = map[string]float64{
	"AC": 19, "AL": 19, "AM": 20, "AP": 18, "BA": 20.5,
	"CE": 20, "DF": 20, "ES": 17, "GO": 19, "MA": 22,
	"MG": 18, "MS": 17, "MT": 17, "PA": 19, "PB": 20,
	"PE": 20.5, "PI": 21, "PR": 19.5, "RJ": 20, "RN": 18,
	"RO": 19.5, "RR": 20, "RS": 17, "SC": 17, "SE": 19,
	"SP": 18, "TO": 20,
}

// DefaultICMSTable returns a fresh copy of the static rate table.
func DefaultICMSTable() ICMSTable {
	t := make(ICMSTable, len(defaultICMSRates))
	for uf, rate := range defaultICMSRates {
		t[uf] = rate
	}
	return t
}

// Rate looks up the rate for uf, ignoring case and surrounding spaces.
func (t ICMSTable) Rate(uf string) (float64, bool) {
	rate, ok := t[strings.ToUpper(strings.TrimSpace(uf))]
	return rate, ok
}

// ICMSRate is one row of the table, for listing.
type ICMSRate struct {
	UF   string  `json:"uf"`
	Rate float64 `json:"rate"`
}

// Sorted lists the table ordered by UF.
func (t ICMSTable) Sorted() []ICMSRate {
	rates := make([]ICMSRate, 0, len(t))
	for uf, rate := range t {
		rates = append(rates, ICMSRate{UF: uf, Rate: rate})
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].UF < rates[j].UF })
	return rates
}
