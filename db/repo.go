package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	DB *gorm.DB

	lockTimeout time.Duration
}

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// WithLockTimeout Postgres 事务里等行锁的上限；0 表示不限
func (r *Repo) WithLockTimeout(d time.Duration) *Repo {
	return &Repo{DB: r.DB, lockTimeout: d}
}

// Transaction 在同一个事务里执行 fn；fn 拿到的 Repo 绑定在 tx 上，
// fn 返回错误或 panic 时全部回滚
func (r *Repo) Transaction(ctx context.Context, fn func(tx *Repo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if q := lockTimeoutSQL(tx.Dialector.Name(), r.lockTimeout); q != "" {
			if err := tx.Exec(q).Error; err != nil {
				return err
			}
		}
		return fn(&Repo{DB: tx, lockTimeout: r.lockTimeout})
	})
}

// lockTimeoutSQL SQLite 靠 busy_timeout，不需要
func lockTimeoutSQL(dialect string, d time.Duration) string {
	if dialect != "postgres" || d <= 0 {
		return ""
	}
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("SET LOCAL lock_timeout = %d", ms)
}

// notFound 把 gorm 的 ErrRecordNotFound 换成领域错误
func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// duplicate 唯一索引冲突 → 领域错误（需要 TranslateError: true）
func duplicate(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sentinel
	}
	return err
}
