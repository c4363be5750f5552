package db

import (
	"context"
	"fmt"

	"Gin_postgres_redis_lab_inventory/models"
)

func (r *Repo) LogAudit(ctx context.Context, e *models.AuditEntry) error {
	if err := r.DB.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListAudit 最近的流程记录，新的在前；teamNumber 为空时不过滤
func (r *Repo) ListAudit(ctx context.Context, teamNumber string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := r.DB.WithContext(ctx)
	if tn := NormalizeTeamNumber(teamNumber); tn != "" {
		q = q.Where("team_number = ?", tn)
	}
	es := []models.AuditEntry{}
	err := q.Order("id DESC").
		Limit(limit).
		Find(&es).Error
	return es, err
}
