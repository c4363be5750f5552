package db

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_lab_inventory/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	CounterRequest = "request_id"
	CounterIssue   = "issue_id"
)

// NextSeq 在调用方事务里给 (kind, year) 计数器 +1 并返回新值。
// 行锁一直持有到事务结束，所以编号按提交顺序严格递增；回滚时计数也一起回滚，不留空号。
func (r *Repo) NextSeq(ctx context.Context, kind string, year int) (int64, error) {
	db := r.DB.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Counter{Kind: kind, Year: year}).Error; err != nil {
		return 0, fmt.Errorf("init counter %s/%d: %w", kind, year, err)
	}
	if err := db.Model(&models.Counter{}).
		Where("kind = ? AND year = ?", kind, year).
		Update("seq", gorm.Expr("seq + 1")).Error; err != nil {
		return 0, fmt.Errorf("bump counter %s/%d: %w", kind, year, err)
	}
	var c models.Counter
	if err := db.Where("kind = ? AND year = ?", kind, year).First(&c).Error; err != nil {
		return 0, fmt.Errorf("read counter %s/%d: %w", kind, year, err)
	}
	return c.Seq, nil
}

// REQ2026-007
func FormatRequestID(year int, seq int64) string {
	return fmt.Sprintf("REQ%d-%03d", year, seq)
}

// ISS20261017-0012：日期 + 当年 issue 序号
func FormatIssueID(at time.Time, seq int64) string {
	return fmt.Sprintf("ISS%s-%04d", at.UTC().Format("20060102"), seq)
}
