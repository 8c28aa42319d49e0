package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/dao"
)

const requestColumns = `id, request_number, request_type, project_id, line_item_id, amount, execution_date, purpose,
	status, current_step, total_steps, requested_by, rejection_reason, created_at, updated_at, completed_at`

const stepColumns = `id, request_id, step, approver_role, status, approver_id, decision, decided_at, created_at`

func scanRequest(row rowScanner) (*model.ExecutionRequest, error) {
	var r model.ExecutionRequest
	var amount, executionDate, status, createdAt, updatedAt string
	var reason, completedAt sql.NullString
	if err := row.Scan(&r.ID, &r.RequestNumber, &r.RequestType, &r.ProjectID, &r.LineItemID, &amount, &executionDate,
		&r.Purpose, &status, &r.CurrentStep, &r.TotalSteps, &r.RequestedBy, &reason, &createdAt, &updatedAt, &completedAt); err != nil {
		return nil, err
	}
	r.Status = model.RequestStatus(status)
	r.RejectionReason = reason.String
	d := &decoder{}
	r.Amount = d.amount(amount)
	r.ExecutionDate = d.time(executionDate)
	r.CreatedAt = d.time(createdAt)
	r.UpdatedAt = d.time(updatedAt)
	r.CompletedAt = d.timePtr(completedAt)
	return &r, d.err
}

func scanStep(row rowScanner) (*model.ApprovalStep, error) {
	var s model.ApprovalStep
	var status, createdAt string
	var approverID, decision, decidedAt sql.NullString
	if err := row.Scan(&s.ID, &s.RequestID, &s.Step, &s.ApproverRole, &status, &approverID, &decision, &decidedAt, &createdAt); err != nil {
		return nil, err
	}
	s.Status = model.StepStatus(status)
	s.ApproverID = approverID.String
	s.Decision = decision.String
	d := &decoder{}
	s.DecidedAt = d.timePtr(decidedAt)
	s.CreatedAt = d.time(createdAt)
	return &s, d.err
}

func (t *transaction) Request(ctx context.Context, id string) (*model.ExecutionRequest, error) {
	ret, err := scanRequest(t.queryRow(ctx, t.forUpdate(`SELECT `+requestColumns+` FROM execution_requests WHERE id = ?`), id))
	if err != nil {
		return nil, notFoundOr(err, "execution request", id)
	}
	return ret, nil
}

func (t *transaction) Requests(ctx context.Context, parameters ...*dao.Parameter) ([]*model.ExecutionRequest, error) {
	var where []string
	var args []interface{}
	for _, parameter := range parameters {
		column := ""
		switch parameter.Name {
		case dao.ParamStatus:
			column = "status"
		case dao.ParamProjectID:
			column = "project_id"
		case dao.ParamLineItemID:
			column = "line_item_id"
		default:
			return nil, fmt.Errorf("unsupported request parameter: %s", parameter.Name)
		}
		switch value := parameter.Value.(type) {
		case string:
			where = append(where, column+" = ?")
			args = append(args, value)
		case []string:
			if len(value) == 0 {
				return nil, nil
			}
			where = append(where, column+" IN (?"+strings.Repeat(", ?", len(value)-1)+")")
			for _, v := range value {
				args = append(args, v)
			}
		default:
			return nil, fmt.Errorf("unsupported value %T for parameter %s", parameter.Value, parameter.Name)
		}
	}
	query := `SELECT ` + requestColumns + ` FROM execution_requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, request_number`

	rows, err := t.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ret []*model.ExecutionRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, request)
	}
	return ret, rows.Err()
}

func (t *transaction) CountRequestNumbers(ctx context.Context, prefix string) (int, error) {
	if err := t.lockSequence(ctx, prefix); err != nil {
		return 0, err
	}
	var count int
	err := t.queryRow(ctx, `SELECT COUNT(*) FROM execution_requests WHERE request_number LIKE ?`, prefix+"%").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting requests %s: %w", prefix, err)
	}
	return count, nil
}

func (t *transaction) Step(ctx context.Context, id string) (*model.ApprovalStep, error) {
	ret, err := scanStep(t.queryRow(ctx, t.forUpdate(`SELECT `+stepColumns+` FROM approval_steps WHERE id = ?`), id))
	if err != nil {
		return nil, notFoundOr(err, "approval step", id)
	}
	return ret, nil
}

func (t *transaction) Steps(ctx context.Context, requestID string) ([]*model.ApprovalStep, error) {
	rows, err := t.query(ctx, `SELECT `+stepColumns+` FROM approval_steps WHERE request_id = ? ORDER BY step`, requestID)
	if err != nil {
		return nil, fmt.Errorf("listing steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ret []*model.ApprovalStep
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, step)
	}
	return ret, rows.Err()
}

func (t *transaction) PendingSteps(ctx context.Context, role string) ([]*model.PendingApproval, error) {
	rows, err := t.query(ctx, `SELECT s.id FROM approval_steps s
		JOIN execution_requests r ON r.id = s.request_id
		WHERE s.approver_role = ? AND s.status = ? AND r.status = ? AND s.step = r.current_step
		ORDER BY r.created_at, r.request_number`, role, string(model.StepPending), string(model.RequestPending))
	if err != nil {
		return nil, fmt.Errorf("listing pending steps: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ret := make([]*model.PendingApproval, 0, len(ids))
	for _, id := range ids {
		step, err := t.Step(ctx, id)
		if err != nil {
			return nil, err
		}
		request, err := t.Request(ctx, step.RequestID)
		if err != nil {
			return nil, err
		}
		ret = append(ret, &model.PendingApproval{Step: step, Request: request})
	}
	return ret, nil
}

func (t *transaction) InsertRequest(ctx context.Context, r *model.ExecutionRequest) error {
	if r == nil {
		return dao.ErrNilEntity
	}
	if r.ID == "" {
		return dao.ErrInvalidID
	}
	_, err := t.exec(ctx, `INSERT INTO execution_requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RequestNumber, r.RequestType, r.ProjectID, r.LineItemID, r.Amount.String(), formatTime(r.ExecutionDate),
		r.Purpose, string(r.Status), r.CurrentStep, r.TotalSteps, r.RequestedBy, nullString(r.RejectionReason),
		formatTime(r.CreatedAt), formatTime(r.UpdatedAt), formatTimePtr(r.CompletedAt))
	if err != nil {
		return fmt.Errorf("inserting request %s: %w", r.RequestNumber, err)
	}
	return nil
}

func (t *transaction) UpdateRequest(ctx context.Context, r *model.ExecutionRequest) error {
	if r == nil {
		return dao.ErrNilEntity
	}
	affected, err := t.exec(ctx, `UPDATE execution_requests SET status = ?, current_step = ?, rejection_reason = ?,
		updated_at = ?, completed_at = ? WHERE id = ?`,
		string(r.Status), r.CurrentStep, nullString(r.RejectionReason), formatTime(r.UpdatedAt), formatTimePtr(r.CompletedAt), r.ID)
	if err != nil {
		return fmt.Errorf("updating request %s: %w", r.RequestNumber, err)
	}
	if affected == 0 {
		return dao.NotFound("execution request", r.ID)
	}
	return nil
}

func (t *transaction) InsertStep(ctx context.Context, s *model.ApprovalStep) error {
	if s == nil {
		return dao.ErrNilEntity
	}
	if s.ID == "" {
		return dao.ErrInvalidID
	}
	_, err := t.exec(ctx, `INSERT INTO approval_steps (`+stepColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.RequestID, s.Step, s.ApproverRole, string(s.Status), nullString(s.ApproverID),
		nullString(s.Decision), formatTimePtr(s.DecidedAt), formatTime(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting step %d of %s: %w", s.Step, s.RequestID, err)
	}
	return nil
}

// DecideStep only updates a row that is still PENDING; a zero row count
// means a concurrent transaction decided the step first.
func (t *transaction) DecideStep(ctx context.Context, s *model.ApprovalStep) error {
	if s == nil {
		return dao.ErrNilEntity
	}
	affected, err := t.exec(ctx, `UPDATE approval_steps SET status = ?, approver_id = ?, decision = ?, decided_at = ?
		WHERE id = ? AND status = ?`,
		string(s.Status), nullString(s.ApproverID), nullString(s.Decision), formatTimePtr(s.DecidedAt),
		s.ID, string(model.StepPending))
	if err != nil {
		return fmt.Errorf("deciding step %s: %w", s.ID, err)
	}
	if affected == 0 {
		if _, err := t.Step(ctx, s.ID); err != nil {
			return err
		}
		return dao.AlreadyDecided(s.ID)
	}
	return nil
}

func (t *transaction) SkipSteps(ctx context.Context, requestID string, after int, at time.Time) (int, error) {
	affected, err := t.exec(ctx, `UPDATE approval_steps SET status = ?, decided_at = ?
		WHERE request_id = ? AND step > ? AND status = ?`,
		string(model.StepSkipped), formatTime(at), requestID, after, string(model.StepPending))
	if err != nil {
		return 0, fmt.Errorf("skipping steps of %s: %w", requestID, err)
	}
	return int(affected), nil
}
