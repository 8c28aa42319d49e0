package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/dao"
)

const projectColumns = `id, code, name, current_budget, executed_amount, remaining_budget, execution_rate, created_at, updated_at`

const lineItemColumns = `id, project_id, category, name, current_budget, executed_amount, pending_amount,
	remaining_before, remaining_after, execution_rate, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	var code sql.NullString
	var current, executed, remaining, rate, createdAt, updatedAt string
	if err := row.Scan(&p.ID, &code, &p.Name, &current, &executed, &remaining, &rate, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.Code = code.String
	d := &decoder{}
	p.CurrentBudget = d.amount(current)
	p.ExecutedAmount = d.amount(executed)
	p.RemainingBudget = d.amount(remaining)
	p.ExecutionRate = d.amount(rate)
	p.CreatedAt = d.time(createdAt)
	p.UpdatedAt = d.time(updatedAt)
	return &p, d.err
}

func scanLineItem(row rowScanner) (*model.LineItem, error) {
	var l model.LineItem
	var category sql.NullString
	var current, executed, pending, before, after, rate, createdAt, updatedAt string
	var active int
	if err := row.Scan(&l.ID, &l.ProjectID, &category, &l.Name, &current, &executed, &pending,
		&before, &after, &rate, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	l.Category = category.String
	l.Active = active != 0
	d := &decoder{}
	l.CurrentBudget = d.amount(current)
	l.ExecutedAmount = d.amount(executed)
	l.PendingExecutionAmount = d.amount(pending)
	l.RemainingBeforeExec = d.amount(before)
	l.RemainingAfterExec = d.amount(after)
	l.ExecutionRate = d.amount(rate)
	l.CreatedAt = d.time(createdAt)
	l.UpdatedAt = d.time(updatedAt)
	return &l, d.err
}

func (t *transaction) Project(ctx context.Context, id string) (*model.Project, error) {
	ret, err := scanProject(t.queryRow(ctx, t.forUpdate(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id))
	if err != nil {
		return nil, notFoundOr(err, "project", id)
	}
	return ret, nil
}

func (t *transaction) LineItem(ctx context.Context, id string) (*model.LineItem, error) {
	ret, err := scanLineItem(t.queryRow(ctx, t.forUpdate(`SELECT `+lineItemColumns+` FROM budget_line_items WHERE id = ?`), id))
	if err != nil {
		return nil, notFoundOr(err, "line item", id)
	}
	return ret, nil
}

func (t *transaction) LineItems(ctx context.Context, projectID string) ([]*model.LineItem, error) {
	rows, err := t.query(ctx, `SELECT `+lineItemColumns+` FROM budget_line_items
		WHERE project_id = ? ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing line items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ret []*model.LineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

func (t *transaction) InsertProject(ctx context.Context, p *model.Project) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	if p.ID == "" {
		return dao.ErrInvalidID
	}
	_, err := t.exec(ctx, `INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, nullString(p.Code), p.Name, p.CurrentBudget.String(), p.ExecutedAmount.String(),
		p.RemainingBudget.String(), p.ExecutionRate.String(), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting project %s: %w", p.ID, err)
	}
	return nil
}

func (t *transaction) UpdateProject(ctx context.Context, p *model.Project) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	affected, err := t.exec(ctx, `UPDATE projects SET code = ?, name = ?, current_budget = ?, executed_amount = ?,
		remaining_budget = ?, execution_rate = ?, updated_at = ? WHERE id = ?`,
		nullString(p.Code), p.Name, p.CurrentBudget.String(), p.ExecutedAmount.String(),
		p.RemainingBudget.String(), p.ExecutionRate.String(), formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("updating project %s: %w", p.ID, err)
	}
	if affected == 0 {
		return dao.NotFound("project", p.ID)
	}
	return nil
}

func (t *transaction) InsertLineItem(ctx context.Context, l *model.LineItem) error {
	if l == nil {
		return dao.ErrNilEntity
	}
	if l.ID == "" {
		return dao.ErrInvalidID
	}
	if _, err := t.Project(ctx, l.ProjectID); err != nil {
		return err
	}
	_, err := t.exec(ctx, `INSERT INTO budget_line_items (`+lineItemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.ProjectID, nullString(l.Category), l.Name, l.CurrentBudget.String(), l.ExecutedAmount.String(),
		l.PendingExecutionAmount.String(), l.RemainingBeforeExec.String(), l.RemainingAfterExec.String(),
		l.ExecutionRate.String(), boolInt(l.Active), formatTime(l.CreatedAt), formatTime(l.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting line item %s: %w", l.ID, err)
	}
	return nil
}

func (t *transaction) UpdateLineItem(ctx context.Context, l *model.LineItem) error {
	if l == nil {
		return dao.ErrNilEntity
	}
	affected, err := t.exec(ctx, `UPDATE budget_line_items SET category = ?, name = ?, current_budget = ?,
		executed_amount = ?, pending_amount = ?, remaining_before = ?, remaining_after = ?, execution_rate = ?,
		active = ?, updated_at = ? WHERE id = ?`,
		nullString(l.Category), l.Name, l.CurrentBudget.String(), l.ExecutedAmount.String(),
		l.PendingExecutionAmount.String(), l.RemainingBeforeExec.String(), l.RemainingAfterExec.String(),
		l.ExecutionRate.String(), boolInt(l.Active), formatTime(l.UpdatedAt), l.ID)
	if err != nil {
		return fmt.Errorf("updating line item %s: %w", l.ID, err)
	}
	if affected == 0 {
		return dao.NotFound("line item", l.ID)
	}
	return nil
}
