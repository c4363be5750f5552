// db/repo_requests.go
package db

import (
	"context"
	"errors"
	"time"

	"Gin_postgres_redis_lab_inventory/models"

	"gorm.io/gorm/clause"
)

var (
	ErrRequestNotFound = errors.New("no pending request found")
	ErrInvalidStatus   = errors.New("invalid target status")
	ErrIssueNotFound   = errors.New("issued item not found")
	ErrAlreadyReturned = errors.New("item already returned")
)

// Requests

// AppendRequest 追加一条请求（队伍必须存在）
func (r *Repo) AppendRequest(ctx context.Context, req *models.ComponentRequest) error {
	if req.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if err := r.TeamExists(ctx, req.TeamNumber); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Create(req).Error
}

// LockPendingRequest 锁住本队某条 pending 请求；不存在或已处理都算 ErrRequestNotFound
func (r *Repo) LockPendingRequest(ctx context.Context, teamNumber, requestID string) (*models.ComponentRequest, error) {
	var req models.ComponentRequest
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("team_number = ? AND request_id = ? AND status = ?",
			NormalizeTeamNumber(teamNumber), requestID, models.RequestPending).
		First(&req).Error; err != nil {
		return nil, notFound(err, ErrRequestNotFound)
	}
	return &req, nil
}

func (r *Repo) FindRequest(ctx context.Context, teamNumber, requestID string) (*models.ComponentRequest, error) {
	var req models.ComponentRequest
	if err := r.DB.WithContext(ctx).
		Where("team_number = ? AND request_id = ?", NormalizeTeamNumber(teamNumber), requestID).
		First(&req).Error; err != nil {
		return nil, notFound(err, ErrRequestNotFound)
	}
	return &req, nil
}

// UpdateRequestStatus pending → 终态，同时写 resolution。
// 条件更新：并发处理同一请求时只有一个能改到行。
func (r *Repo) UpdateRequestStatus(ctx context.Context, teamNumber, requestID string, to models.RequestStatus, res models.Resolution) error {
	if !to.Terminal() {
		return ErrInvalidStatus
	}
	out := r.DB.WithContext(ctx).Model(&models.ComponentRequest{}).
		Where("team_number = ? AND request_id = ? AND status = ?",
			NormalizeTeamNumber(teamNumber), requestID, models.RequestPending).
		Updates(map[string]any{
			"status":      to,
			"resolved_by": res.By,
			"resolved_at": res.At,
		})
	if out.Error != nil {
		return out.Error
	}
	if out.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// Issued items

func (r *Repo) AppendIssued(ctx context.Context, it *models.IssuedItem) error {
	if it.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return r.DB.WithContext(ctx).Create(it).Error
}

func (r *Repo) FindIssue(ctx context.Context, teamNumber, issueID string) (*models.IssuedItem, error) {
	var it models.IssuedItem
	if err := r.DB.WithContext(ctx).
		Where("team_number = ? AND issue_id = ?", NormalizeTeamNumber(teamNumber), issueID).
		First(&it).Error; err != nil {
		return nil, notFound(err, ErrIssueNotFound)
	}
	return &it, nil
}

func (r *Repo) LockIssue(ctx context.Context, teamNumber, issueID string) (*models.IssuedItem, error) {
	var it models.IssuedItem
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("team_number = ? AND issue_id = ?", NormalizeTeamNumber(teamNumber), issueID).
		First(&it).Error; err != nil {
		return nil, notFound(err, ErrIssueNotFound)
	}
	return &it, nil
}

// MarkIssueReturned issued/overdue → returned；之后不可再变
func (r *Repo) MarkIssueReturned(ctx context.Context, teamNumber, issueID string) error {
	tn := NormalizeTeamNumber(teamNumber)
	res := r.DB.WithContext(ctx).Model(&models.IssuedItem{}).
		Where("team_number = ? AND issue_id = ? AND status IN ?", tn, issueID,
			[]models.IssueStatus{models.IssueIssued, models.IssueOverdue}).
		Update("status", models.IssueReturned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindIssue(ctx, tn, issueID); err != nil {
			return err
		}
		return ErrAlreadyReturned
	}
	return nil
}

// MarkOverdue 把过了应还日期的 issued 标为 overdue，返回影响行数
func (r *Repo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.IssuedItem{}).
		Where("status = ? AND expected_return_date < ?", models.IssueIssued, now.UTC()).
		Update("status", models.IssueOverdue)
	return res.RowsAffected, res.Error
}

// Returns

// AppendReturn issue_id 唯一，重复归还 → ErrAlreadyReturned
func (r *Repo) AppendReturn(ctx context.Context, rec *models.ReturnRecord) error {
	return duplicate(r.DB.WithContext(ctx).Create(rec).Error, ErrAlreadyReturned)
}

// Snapshot

type TeamSnapshot struct {
	TeamNumber        string                    `json:"team_number"`
	Members           []models.Member           `json:"members"`
	ComponentRequests []models.ComponentRequest `json:"component_requests"`
	IssuedComponents  []models.IssuedItem       `json:"issued_components"`
	ReturnHistory     []models.ReturnRecord     `json:"return_history"`
}

// Snapshot 队伍成员 + 三个追加日志，按写入顺序
func (r *Repo) Snapshot(ctx context.Context, teamNumber string) (*TeamSnapshot, error) {
	t, err := r.FindTeam(ctx, teamNumber)
	if err != nil {
		return nil, err
	}
	s := &TeamSnapshot{
		TeamNumber:        t.TeamNumber,
		Members:           t.Members,
		ComponentRequests: []models.ComponentRequest{},
		IssuedComponents:  []models.IssuedItem{},
		ReturnHistory:     []models.ReturnRecord{},
	}
	db := r.DB.WithContext(ctx)
	if err := db.Where("team_number = ?", t.TeamNumber).Order("id ASC").Find(&s.ComponentRequests).Error; err != nil {
		return nil, err
	}
	if err := db.Where("team_number = ?", t.TeamNumber).Order("id ASC").Find(&s.IssuedComponents).Error; err != nil {
		return nil, err
	}
	if err := db.Where("team_number = ?", t.TeamNumber).Order("id ASC").Find(&s.ReturnHistory).Error; err != nil {
		return nil, err
	}
	return s, nil
}
