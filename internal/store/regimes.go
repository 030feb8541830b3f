package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/pricing"
)

const regimeColumns = `id, name, active, pis, cofins, csll, irpj, icms, iss, base_presuncao_venda, base_presuncao_servico, updated_at`

func scanRegime(row rowScanner) (pricing.TaxRegime, error) {
	var r pricing.TaxRegime
	var updatedAt string
	if err := row.Scan(
		&r.ID, &r.Name, &r.Active,
		&r.PIS, &r.COFINS, &r.CSLL, &r.IRPJ, &r.ICMS, &r.ISS,
		&r.BasePresuncaoVenda, &r.BasePresuncaoServico,
		&updatedAt,
	); err != nil {
		return pricing.TaxRegime{}, err
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return pricing.TaxRegime{}, err
	}
	r.UpdatedAt = t
	return r, nil
}

// ActiveTaxRegime returns the regime used for pricing, or nil when none is
// active yet.
func (s *Store) ActiveTaxRegime(ctx context.Context) (*pricing.TaxRegime, error) {
	r, err := scanRegime(s.db.QueryRowContext(ctx, `SELECT `+regimeColumns+` FROM tax_regimes WHERE active = 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active tax regime: %w", err)
	}
	return &r, nil
}

func (s *Store) ListTaxRegimes(ctx context.Context) ([]pricing.TaxRegime, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+regimeColumns+` FROM tax_regimes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query tax regimes: %w", err)
	}
	defer rows.Close()

	regimes := make([]pricing.TaxRegime, 0)
	for rows.Next() {
		r, err := scanRegime(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tax regime: %w", err)
		}
		regimes = append(regimes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tax regimes: %w", err)
	}
	return regimes, nil
}

func (s *Store) GetTaxRegime(ctx context.Context, id string) (pricing.TaxRegime, error) {
	r, err := scanRegime(s.db.QueryRowContext(ctx, `SELECT `+regimeColumns+` FROM tax_regimes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.TaxRegime{}, &domain.ErrNotFound{Resource: "tax_regime", ID: id}
	}
	if err != nil {
		return pricing.TaxRegime{}, fmt.Errorf("query tax regime: %w", err)
	}
	return r, nil
}

// CreateTaxRegime inserts r with a new id. When r.Active is set every other
// regime is deactivated in the same transaction.
func (s *Store) CreateTaxRegime(ctx context.Context, r pricing.TaxRegime) (pricing.TaxRegime, error) {
	r.ID = s.newID()
	r.UpdatedAt = s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pricing.TaxRegime{}, fmt.Errorf("begin create tax regime: %w", err)
	}
	defer tx.Rollback()

	if r.Active {
		if _, err := tx.ExecContext(ctx, `UPDATE tax_regimes SET active = 0 WHERE active = 1`); err != nil {
			return pricing.TaxRegime{}, fmt.Errorf("deactivate tax regimes: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tax_regimes (`+regimeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.Name, r.Active,
		r.PIS, r.COFINS, r.CSLL, r.IRPJ, r.ICMS, r.ISS,
		r.BasePresuncaoVenda, r.BasePresuncaoServico,
		formatTime(r.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return pricing.TaxRegime{}, &domain.ErrConflict{Message: fmt.Sprintf("tax regime %q already exists", r.Name)}
	}
	if err != nil {
		return pricing.TaxRegime{}, fmt.Errorf("insert tax regime: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return pricing.TaxRegime{}, fmt.Errorf("commit create tax regime: %w", err)
	}
	return r, nil
}

// UpdateTaxRegime replaces the name and rates of an existing regime. The
// active flag only changes through ActivateTaxRegime.
func (s *Store) UpdateTaxRegime(ctx context.Context, r pricing.TaxRegime) (pricing.TaxRegime, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE tax_regimes
		SET
			name = ?,
			pis = ?,
			cofins = ?,
			csll = ?,
			irpj = ?,
			icms = ?,
			iss = ?,
			base_presuncao_venda = ?,
			base_presuncao_servico = ?,
			updated_at = ?
		WHERE id = ?
	`,
		r.Name, r.PIS, r.COFINS, r.CSLL, r.IRPJ, r.ICMS, r.ISS,
		r.BasePresuncaoVenda, r.BasePresuncaoServico,
		formatTime(now), r.ID,
	)
	if isUniqueViolation(err) {
		return pricing.TaxRegime{}, &domain.ErrConflict{Message: fmt.Sprintf("tax regime %q already exists", r.Name)}
	}
	if err != nil {
		return pricing.TaxRegime{}, fmt.Errorf("update tax regime: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return pricing.TaxRegime{}, &domain.ErrNotFound{Resource: "tax_regime", ID: r.ID}
	}
	return s.GetTaxRegime(ctx, r.ID)
}

// ActivateTaxRegime makes id the only active regime.
func (s *Store) ActivateTaxRegime(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate tax regime: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tax_regimes WHERE id = ?)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check tax regime existence: %w", err)
	}
	if !exists {
		return &domain.ErrNotFound{Resource: "tax_regime", ID: id}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE tax_regimes SET active = 0 WHERE active = 1 AND id <> ?`, id); err != nil {
		return fmt.Errorf("deactivate tax regimes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE tax_regimes SET active = 1, updated_at = ? WHERE id = ?`, formatTime(s.now()), id); err != nil {
		return fmt.Errorf("activate tax regime: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activate tax regime: %w", err)
	}
	return nil
}
