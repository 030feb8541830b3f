package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/propostas-ti/internal/domain"
	"github.com/Simplici0/propostas-ti/internal/proposal"
)

const proposalColumns = `id, number, client, project, manager, notes, budgets_json, status, created_at, updated_at`

// ProposalFilter narrows ListProposals. Query matches number, client or
// project; an empty Status matches every status.
type ProposalFilter struct {
	Query  string
	Status proposal.Status
}

// ProposalSummary is one row of the proposal list.
type ProposalSummary struct {
	ID         string          `json:"id"`
	Number     string          `json:"number"`
	Client     string          `json:"client"`
	Project    string          `json:"project"`
	Status     proposal.Status `json:"status"`
	TotalValue float64         `json:"totalValue"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func scanProposal(row rowScanner) (proposal.Proposal, error) {
	var p proposal.Proposal
	var budgetsJSON, createdAt, updatedAt string
	if err := row.Scan(
		&p.ID, &p.Number, &p.Client, &p.Project, &p.Manager, &p.Notes,
		&budgetsJSON, &p.Status, &createdAt, &updatedAt,
	); err != nil {
		return proposal.Proposal{}, err
	}

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return proposal.Proposal{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return proposal.Proposal{}, err
	}
	if err := json.Unmarshal([]byte(budgetsJSON), &p.Budgets); err != nil {
		return proposal.Proposal{}, fmt.Errorf("decode proposal budgets: %w", err)
	}
	return p, nil
}

// proposalNumber builds a human-facing number such as PROP-2026-1A2B3C4D.
func proposalNumber(id string, now time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("PROP-%d-%s", now.Year(), short)
}

// CreateProposal validates p and stores it as a new draft.
func (s *Store) CreateProposal(ctx context.Context, p proposal.Proposal) (*proposal.Proposal, error) {
	id := s.newID()
	now := s.now()
	created, err := proposal.New(id, proposalNumber(id, now), p, now)
	if err != nil {
		return nil, err
	}

	budgets, err := json.Marshal(created.Budgets)
	if err != nil {
		return nil, fmt.Errorf("encode proposal budgets: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO proposals (id, number, client, project, manager, notes, budgets_json, total_value, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		created.ID, created.Number, created.Client, created.Project, created.Manager, created.Notes,
		string(budgets), created.TotalValue(), string(created.Status),
		formatTime(created.CreatedAt), formatTime(created.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return nil, &domain.ErrConflict{Message: "proposal number already exists: " + created.Number}
	}
	if err != nil {
		return nil, fmt.Errorf("insert proposal: %w", err)
	}
	return created, nil
}

func (s *Store) GetProposal(ctx context.Context, id string) (*proposal.Proposal, error) {
	p, err := scanProposal(s.db.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "proposal", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("query proposal: %w", err)
	}
	return &p, nil
}

// ListProposals returns matching proposals, newest first.
func (s *Store) ListProposals(ctx context.Context, f ProposalFilter) ([]ProposalSummary, error) {
	query := strings.TrimSpace(f.Query)
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, client, project, status, total_value, created_at
		FROM proposals
		WHERE (? = '' OR number LIKE ? OR client LIKE ? OR project LIKE ?)
			AND (? = '' OR status = ?)
		ORDER BY created_at DESC, id DESC
	`, query, search, search, search, string(f.Status), string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("query proposals: %w", err)
	}
	defer rows.Close()

	items := make([]ProposalSummary, 0)
	for rows.Next() {
		var item ProposalSummary
		var createdAt string
		if err := rows.Scan(&item.ID, &item.Number, &item.Client, &item.Project, &item.Status, &item.TotalValue, &createdAt); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		if item.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return items, nil
}

// UpdateProposal replaces the header and budgets of a proposal. Status is
// left alone; it only changes through TransitionProposal. Completed and
// cancelled proposals are read-only.
func (s *Store) UpdateProposal(ctx context.Context, p proposal.Proposal) (*proposal.Proposal, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Recompute()

	budgets, err := json.Marshal(p.Budgets)
	if err != nil {
		return nil, fmt.Errorf("encode proposal budgets: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin proposal update: %w", err)
	}
	defer tx.Rollback()

	var number string
	var status proposal.Status
	err = tx.QueryRowContext(ctx, `SELECT number, status FROM proposals WHERE id = ?`, p.ID).Scan(&number, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "proposal", ID: p.ID}
	}
	if err != nil {
		return nil, fmt.Errorf("query proposal status: %w", err)
	}
	if status.Final() {
		return nil, &domain.ErrConflict{Message: fmt.Sprintf("proposal %s is %s and can no longer be edited", number, status)}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE proposals
		SET client = ?, project = ?, manager = ?, notes = ?, budgets_json = ?, total_value = ?, updated_at = ?
		WHERE id = ?
	`, p.Client, p.Project, p.Manager, p.Notes, string(budgets), p.TotalValue(), formatTime(s.now()), p.ID); err != nil {
		return nil, fmt.Errorf("update proposal: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit proposal update: %w", err)
	}
	return s.GetProposal(ctx, p.ID)
}

// TransitionProposal moves a proposal to status to, if the status machine
// allows it.
func (s *Store) TransitionProposal(ctx context.Context, id string, to proposal.Status) (*proposal.Proposal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin proposal transition: %w", err)
	}
	defer tx.Rollback()

	p, err := scanProposal(tx.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "proposal", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("query proposal: %w", err)
	}

	if err := p.Transition(to, s.now()); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE proposals SET status = ?, updated_at = ? WHERE id = ?`, string(p.Status), formatTime(p.UpdatedAt), id); err != nil {
		return nil, fmt.Errorf("update proposal status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit proposal transition: %w", err)
	}
	return &p, nil
}
