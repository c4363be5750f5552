// Package workflow 申请 → 发放 → 归还 的状态机。
// 每个操作一个事务：库存、请求状态、发放记录、编号计数器和审计日志一起提交或回滚。
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"Gin_postgres_redis_lab_inventory/db"
	"Gin_postgres_redis_lab_inventory/models"

	"github.com/google/uuid"
)

type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

type Engine struct {
	repo            *db.Repo
	loanPeriod      time.Duration
	restockOnReturn bool
	now             func() time.Time
	logger          *slog.Logger
	metrics         *Metrics
}

func New(repo *db.Repo, opts ...Option) *Engine {
	e := &Engine{
		repo:            repo,
		loanPeriod:      DefaultLoanPeriod,
		restockOnReturn: true,
		now:             time.Now,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) clock() time.Time { return e.now().UTC() }

func (e *Engine) done(op string, err error) error {
	err = wrap(op, err)
	e.metrics.observe(op, err)
	if err != nil && KindOf(err) == KindTransaction {
		e.logger.Error("workflow transaction failed", "op", op, "error", err)
	}
	return err
}

func forbidden(op string) error {
	return &Error{Kind: KindForbidden, Code: "FORBIDDEN", Op: op, Err: ErrForbidden}
}

// SubmitRequest 本队提交 pending 请求，同时立即预留库存
func (e *Engine) SubmitRequest(ctx context.Context, id Identity, teamNumber string, componentID int64, qty int, notes string) (string, error) {
	const op = "submit_request"
	tn := db.NormalizeTeamNumber(teamNumber)
	if !id.is(RoleStudent) || id.TeamNumber != tn {
		return "", e.done(op, forbidden(op))
	}
	if qty < 1 {
		return "", e.done(op, db.ErrInvalidQuantity)
	}

	var requestID string
	err := e.repo.Transaction(ctx, func(tx *db.Repo) error {
		if err := tx.TeamExists(ctx, tn); err != nil {
			return err
		}
		// 会话可能比禁用更早签发，这里以数据库为准
		if err := activeStudent(ctx, tx, id); err != nil {
			return err
		}
		comp, err := tx.FindComponent(ctx, componentID)
		if err != nil {
			return err
		}
		// 锁顺序：component → counter
		if err := tx.Reserve(ctx, componentID, qty); err != nil {
			return err
		}
		now := e.clock()
		seq, err := tx.NextSeq(ctx, db.CounterRequest, now.Year())
		if err != nil {
			return err
		}
		requestID = db.FormatRequestID(now.Year(), seq)
		req := &models.ComponentRequest{
			RequestID:     requestID,
			TeamNumber:    tn,
			ComponentID:   componentID,
			ComponentName: comp.Name,
			Quantity:      qty,
			RequestedBy:   id.SubjectID,
			RequestDate:   now,
			Status:        models.RequestPending,
			Notes:         notes,
		}
		if err := tx.AppendRequest(ctx, req); err != nil {
			return err
		}
		return tx.LogAudit(ctx, audit(id, "submit", tn, requestID,
			fmt.Sprintf("component=%d qty=%d", componentID, qty)))
	})
	if err != nil {
		return "", e.done(op, err)
	}
	e.metrics.addReserved(qty)
	e.logger.Info("request submitted",
		"request_id", requestID, "team", tn, "component_id", componentID, "quantity", qty, "by", id.SubjectID)
	return requestID, e.done(op, nil)
}

// ProcessRequest 接受（按默认借期发放）或拒绝（退回预留）一条 pending 请求
func (e *Engine) ProcessRequest(ctx context.Context, id Identity, teamNumber, requestID string, action Action) error {
	const op = "process_request"
	if !id.staff() {
		return e.done(op, forbidden(op))
	}
	if action != ActionAccept && action != ActionReject {
		return e.done(op, ErrInvalidAction)
	}
	tn := db.NormalizeTeamNumber(teamNumber)

	var (
		qty  int
		item *models.IssuedItem
	)
	err := e.repo.Transaction(ctx, func(tx *db.Repo) error {
		req, err := tx.LockPendingRequest(ctx, tn, requestID)
		if err != nil {
			return err
		}
		now := e.clock()
		if action == ActionReject {
			if err := tx.Release(ctx, req.ComponentID, req.Quantity); err != nil {
				return err
			}
			if err := tx.UpdateRequestStatus(ctx, tn, requestID, models.RequestRejected,
				models.Resolution{By: id.SubjectID, At: now}); err != nil {
				return err
			}
			qty = req.Quantity
			return tx.LogAudit(ctx, audit(id, "reject", tn, requestID, ""))
		}
		item, err = e.issue(ctx, tx, id, req, models.RequestAccepted, e.loanPeriod, now)
		return err
	})
	if err != nil {
		return e.done(op, err)
	}
	if action == ActionReject {
		e.metrics.addReleased(qty)
		e.logger.Info("request rejected", "request_id", requestID, "team", tn, "by", id.SubjectID)
	} else {
		e.logger.Info("request accepted",
			"request_id", requestID, "issue_id", item.IssueID, "team", tn, "by", id.SubjectID)
	}
	return e.done(op, nil)
}

// ApproveRequest 同 accept，但借期由讲师指定（天，0 = 默认）；状态记为 approved
func (e *Engine) ApproveRequest(ctx context.Context, id Identity, teamNumber, requestID string, loanDays int) (*models.IssuedItem, error) {
	const op = "approve_request"
	if !id.staff() {
		return nil, e.done(op, forbidden(op))
	}
	loan := e.loanPeriod
	switch {
	case loanDays < 0 || loanDays > MaxLoanDays:
		return nil, e.done(op, ErrInvalidLoanPeriod)
	case loanDays > 0:
		loan = time.Duration(loanDays) * 24 * time.Hour
	}
	tn := db.NormalizeTeamNumber(teamNumber)

	var item *models.IssuedItem
	err := e.repo.Transaction(ctx, func(tx *db.Repo) error {
		req, err := tx.LockPendingRequest(ctx, tn, requestID)
		if err != nil {
			return err
		}
		item, err = e.issue(ctx, tx, id, req, models.RequestApproved, loan, e.clock())
		return err
	})
	if err != nil {
		return nil, e.done(op, err)
	}
	e.logger.Info("request approved",
		"request_id", requestID, "issue_id", item.IssueID, "team", tn, "due", item.ExpectedReturnDate, "by", id.SubjectID)
	return item, e.done(op, nil)
}

// issue 把已锁住的 pending 请求改成 status 并生成 IssuedItem。
// 库存在提交时已扣，这里只需确认元件行还在。
func (e *Engine) issue(ctx context.Context, tx *db.Repo, id Identity, req *models.ComponentRequest, status models.RequestStatus, loan time.Duration, now time.Time) (*models.IssuedItem, error) {
	comp, err := tx.LockComponent(ctx, req.ComponentID)
	if errors.Is(err, db.ErrComponentNotFound) {
		return nil, ErrComponentUnavailable
	}
	if err != nil {
		return nil, err
	}
	if err := tx.UpdateRequestStatus(ctx, req.TeamNumber, req.RequestID, status,
		models.Resolution{By: id.SubjectID, At: now}); err != nil {
		return nil, err
	}
	seq, err := tx.NextSeq(ctx, db.CounterIssue, now.Year())
	if err != nil {
		return nil, err
	}
	item := &models.IssuedItem{
		IssueID:            db.FormatIssueID(now, seq),
		RequestID:          req.RequestID,
		TeamNumber:         req.TeamNumber,
		ComponentID:        req.ComponentID,
		ComponentName:      comp.Name,
		Quantity:           req.Quantity,
		IssueDate:          now,
		IssuedBy:           id.SubjectID,
		ExpectedReturnDate: now.Add(loan),
		Status:             models.IssueIssued,
	}
	if err := tx.AppendIssued(ctx, item); err != nil {
		return nil, err
	}
	if err := tx.LogAudit(ctx, audit(id, string(status), req.TeamNumber, req.RequestID,
		"issue="+item.IssueID)); err != nil {
		return nil, err
	}
	return item, nil
}

// RecordReturn issued/overdue → returned；开启入库时数量加回库存
func (e *Engine) RecordReturn(ctx context.Context, id Identity, teamNumber, issueID, conditionNotes string) (string, error) {
	const op = "record_return"
	if !id.staff() {
		return "", e.done(op, forbidden(op))
	}
	tn := db.NormalizeTeamNumber(teamNumber)

	var rec *models.ReturnRecord
	err := e.repo.Transaction(ctx, func(tx *db.Repo) error {
		item, err := tx.LockIssue(ctx, tn, issueID)
		if err != nil {
			return err
		}
		if !item.Status.Open() {
			return db.ErrAlreadyReturned
		}
		if err := tx.MarkIssueReturned(ctx, tn, issueID); err != nil {
			return err
		}
		rec = &models.ReturnRecord{
			ReturnID:       uuid.NewString(),
			IssueID:        item.IssueID,
			TeamNumber:     tn,
			ComponentID:    item.ComponentID,
			Quantity:       item.Quantity,
			ReturnedAt:     e.clock(),
			ReceivedBy:     id.SubjectID,
			ConditionNotes: conditionNotes,
		}
		if err := tx.AppendReturn(ctx, rec); err != nil {
			return err
		}
		if e.restockOnReturn {
			if err := tx.Release(ctx, item.ComponentID, item.Quantity); err != nil {
				return err
			}
		}
		return tx.LogAudit(ctx, audit(id, "return", tn, issueID, "return="+rec.ReturnID))
	})
	if err != nil {
		return "", e.done(op, err)
	}
	if e.restockOnReturn {
		e.metrics.addReleased(rec.Quantity)
	}
	e.logger.Info("item returned",
		"issue_id", issueID, "return_id", rec.ReturnID, "team", tn, "restocked", e.restockOnReturn)
	return rec.ReturnID, e.done(op, nil)
}

func (e *Engine) MarkOverdue(ctx context.Context) (int64, error) {
	const op = "mark_overdue"
	n, err := e.repo.MarkOverdue(ctx, e.clock())
	if err != nil {
		return 0, e.done(op, err)
	}
	e.metrics.addOverdue(n)
	if n > 0 {
		e.logger.Info("issued items marked overdue", "count", n)
	}
	return n, e.done(op, nil)
}

// activeStudent 学生必须仍是本队的在册成员
func activeStudent(ctx context.Context, r *db.Repo, id Identity) error {
	m, err := r.FindMemberByRoll(ctx, id.SubjectID)
	if errors.Is(err, db.ErrMemberNotFound) {
		return ErrAccountDisabled
	}
	if err != nil {
		return err
	}
	if !m.IsActive || m.TeamNumber != id.TeamNumber {
		return ErrAccountDisabled
	}
	return nil
}

func audit(id Identity, action, team, target, detail string) *models.AuditEntry {
	return &models.AuditEntry{
		ActorID:    id.SubjectID,
		ActorRole:  string(id.Role),
		Action:     action,
		TeamNumber: team,
		TargetID:   target,
		Detail:     detail,
	}
}
