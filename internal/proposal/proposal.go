// Package proposal holds commercial proposals and their budgets.
package proposal

import (
	"strings"
	"time"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/pricing"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDraft:  {StatusActive, StatusCancelled},
	StatusActive: {StatusCompleted, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Label is the status as shown to users.
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Rascunho"
	case StatusActive:
		return "Ativa"
	case StatusCompleted:
		return "Concluída"
	case StatusCancelled:
		return "Cancelada"
	}
	return string(s)
}

// Final reports whether s ends the life of a proposal. Final proposals can no
// longer be edited.
func (s Status) Final() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// HasLines reports whether b carries any priced line.
func (b Budget) HasLines() bool {
	return len(b.Products) > 0 || len(b.Rentals) > 0 || len(b.Services) > 0
}

// CanTransition reports whether a proposal may move from one status to
// another. Completed and cancelled are final.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Module is the business line a budget belongs to.
type Module string

const (
	ModuleSales       Module = "vendas"
	ModuleRental      Module = "locacao"
	ModuleServices    Module = "servicos"
	ModuleOutsourcing Module = "outsourcing"
)

func (m Module) Valid() bool {
	switch m {
	case ModuleSales, ModuleRental, ModuleServices, ModuleOutsourcing:
		return true
	}
	return false
}

// Budget is one module's priced lines inside a proposal. MarginPercent,
// Months, DestinationUF and FinalConsumerContributor are the pricing inputs
// shared by every line; a nil MarginPercent means the default margin.
type Budget struct {
	Module                   Module                `json:"module"`
	Description              string                `json:"description,omitempty"`
	MarginPercent            *float64              `json:"marginPercent,omitempty"`
	DestinationUF            string                `json:"destinationUF,omitempty"`
	FinalConsumerContributor bool                  `json:"finalConsumerContributor,omitempty"`
	Months                   int                   `json:"months,omitempty"`
	Products                 []pricing.ProductItem `json:"products,omitempty"`
	Rentals                  []pricing.RentalItem  `json:"rentals,omitempty"`
	Services                 []pricing.ServiceItem `json:"services,omitempty"`
	MonthlyValue             float64               `json:"monthlyValue,omitempty"`
	TotalValue               float64               `json:"totalValue"`
}

// Recompute sets TotalValue from the lines. Products count gross revenue plus
// ICMS-ST; DIFAL is the buyer's liability and is left out. Rentals count the
// monthly price over the whole term when Months is set. A budget without
// lines keeps the value it was given, which is how outsourcing budgets carry
// a printer contract total.
func (b *Budget) Recompute() {
	if !b.HasLines() {
		return
	}

	var total, monthly float64
	for _, p := range b.Products {
		total += p.FinalPrice()
	}
	for _, r := range b.Rentals {
		monthly += r.MonthlyPrice
	}
	if b.Months > 0 {
		total += monthly * float64(b.Months)
	} else {
		total += monthly
	}
	for _, s := range b.Services {
		total += s.FinalPrice
	}
	b.MonthlyValue = monthly
	b.TotalValue = total
}

type Proposal struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Client    string    `json:"client"`
	Project   string    `json:"project"`
	Manager   string    `json:"manager"`
	Notes     string    `json:"notes,omitempty"`
	Budgets   []Budget  `json:"budgets"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TotalValue sums every budget.
func (p *Proposal) TotalValue() float64 {
	var total float64
	for _, b := range p.Budgets {
		total += b.TotalValue
	}
	return total
}

// Recompute refreshes every budget total.
func (p *Proposal) Recompute() {
	if p.Budgets == nil {
		p.Budgets = []Budget{}
	}
	for i := range p.Budgets {
		p.Budgets[i].Recompute()
	}
}

// Transition moves the proposal to status to.
func (p *Proposal) Transition(to Status, now time.Time) error {
	if !to.Valid() {
		return &domain.ErrValidation{Field: "status", Message: "unknown status " + string(to)}
	}
	if !CanTransition(p.Status, to) {
		return &domain.ErrInvalidTransition{From: string(p.Status), To: string(to)}
	}
	p.Status = to
	p.UpdatedAt = now
	return nil
}

// Validate trims the header fields and checks the required ones.
func (p *Proposal) Validate() error {
	p.Client = strings.TrimSpace(p.Client)
	p.Project = strings.TrimSpace(p.Project)
	p.Manager = strings.TrimSpace(p.Manager)
	p.Notes = strings.TrimSpace(p.Notes)

	if p.Client == "" {
		return &domain.ErrValidation{Field: "client", Message: "required"}
	}
	if p.Project == "" {
		return &domain.ErrValidation{Field: "project", Message: "required"}
	}
	for _, b := range p.Budgets {
		if !b.Module.Valid() {
			return &domain.ErrValidation{Field: "budgets.module", Message: "unknown module " + string(b.Module)}
		}
	}
	return nil
}

// New builds a draft proposal. id and number come from the caller so the
// store owns identity.
func New(id, number string, p Proposal, now time.Time) (*Proposal, error) {
	p.ID = id
	p.Number = number
	p.Status = StatusDraft
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Budgets = append(make([]Budget, 0, len(p.Budgets)), p.Budgets...)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Recompute()
	return &p, nil
}
