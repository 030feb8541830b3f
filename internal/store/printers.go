package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/printer"
)

const printerColumns = `id, brand, model, color, acquisition_cost, useful_life_pages, energy_kwh, monthly_maintenance, pricing_json, created_at, updated_at`

func scanPrinter(row rowScanner) (printer.Printer, error) {
	var p printer.Printer
	var pricingJSON sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(
		&p.ID, &p.Brand, &p.Model, &p.Color,
		&p.AcquisitionCost, &p.UsefulLifePages, &p.EnergyKWh, &p.MonthlyMaintenance,
		&pricingJSON, &createdAt, &updatedAt,
	); err != nil {
		return printer.Printer{}, err
	}

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return printer.Printer{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return printer.Printer{}, err
	}
	if pricingJSON.Valid && pricingJSON.String != "" {
		var pr printer.Pricing
		if err := json.Unmarshal([]byte(pricingJSON.String), &pr); err != nil {
			return printer.Printer{}, fmt.Errorf("decode printer pricing: %w", err)
		}
		p.Pricing = &pr
	}
	return p, nil
}

func (s *Store) ListPrinters(ctx context.Context) ([]printer.Printer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+printerColumns+` FROM printers ORDER BY brand, model`)
	if err != nil {
		return nil, fmt.Errorf("query printers: %w", err)
	}
	defer rows.Close()

	printers := make([]printer.Printer, 0)
	for rows.Next() {
		p, err := scanPrinter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan printer: %w", err)
		}
		printers = append(printers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate printers: %w", err)
	}
	return printers, nil
}

func (s *Store) GetPrinter(ctx context.Context, id string) (printer.Printer, error) {
	p, err := scanPrinter(s.db.QueryRowContext(ctx, `SELECT `+printerColumns+` FROM printers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return printer.Printer{}, &domain.ErrNotFound{Resource: "printer", ID: id}
	}
	if err != nil {
		return printer.Printer{}, fmt.Errorf("query printer: %w", err)
	}
	return p, nil
}

// CreatePrinter inserts p without pricing; pricing is attached later with
// SavePrinterPricing.
func (s *Store) CreatePrinter(ctx context.Context, p printer.Printer) (printer.Printer, error) {
	p.ID = s.newID()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	p.Pricing = nil

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO printers (`+printerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)
	`,
		p.ID, p.Brand, p.Model, p.Color,
		p.AcquisitionCost, p.UsefulLifePages, p.EnergyKWh, p.MonthlyMaintenance,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return printer.Printer{}, &domain.ErrConflict{Message: fmt.Sprintf("printer %q already exists", p.DisplayName())}
	}
	if err != nil {
		return printer.Printer{}, fmt.Errorf("insert printer: %w", err)
	}
	return p, nil
}

// SavePrinterPricing stores pr as the printer's current pricing.
func (s *Store) SavePrinterPricing(ctx context.Context, id string, pr *printer.Pricing) error {
	raw, err := json.Marshal(pr)
	if err != nil {
		return fmt.Errorf("encode printer pricing: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE printers SET pricing_json = ?, updated_at = ? WHERE id = ?`, string(raw), formatTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("update printer pricing: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return &domain.ErrNotFound{Resource: "printer", ID: id}
	}
	return nil
}

// ListSupplies returns the supplies of a printer, oldest first.
func (s *Store) ListSupplies(ctx context.Context, printerID string) ([]printer.Supply, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, printer_id, kind, name, unit_cost, yield_pages, created_at
		FROM supplies
		WHERE printer_id = ?
		ORDER BY created_at, id
	`, printerID)
	if err != nil {
		return nil, fmt.Errorf("query supplies: %w", err)
	}
	defer rows.Close()

	supplies := make([]printer.Supply, 0)
	for rows.Next() {
		var sp printer.Supply
		var createdAt string
		if err := rows.Scan(&sp.ID, &sp.PrinterID, &sp.Kind, &sp.Name, &sp.UnitCost, &sp.YieldPages, &createdAt); err != nil {
			return nil, fmt.Errorf("scan supply: %w", err)
		}
		if sp.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		supplies = append(supplies, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate supplies: %w", err)
	}
	return supplies, nil
}

// AddSupply attaches sp to its printer.
func (s *Store) AddSupply(ctx context.Context, sp printer.Supply) (printer.Supply, error) {
	if !sp.Kind.Valid() {
		return printer.Supply{}, &domain.ErrValidation{Field: "kind", Message: "unknown supply kind " + string(sp.Kind)}
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM printers WHERE id = ?)`, sp.PrinterID).Scan(&exists); err != nil {
		return printer.Supply{}, fmt.Errorf("check printer existence: %w", err)
	}
	if !exists {
		return printer.Supply{}, &domain.ErrNotFound{Resource: "printer", ID: sp.PrinterID}
	}

	sp.ID = s.newID()
	sp.CreatedAt = s.now()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO supplies (id, printer_id, kind, name, unit_cost, yield_pages, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sp.ID, sp.PrinterID, string(sp.Kind), sp.Name, sp.UnitCost, sp.YieldPages, formatTime(sp.CreatedAt)); err != nil {
		return printer.Supply{}, fmt.Errorf("insert supply: %w", err)
	}
	return sp, nil
}
