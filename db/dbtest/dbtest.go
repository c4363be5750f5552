// Package dbtest 测试用的一次性内存 SQLite
package dbtest

import (
	"fmt"
	"testing"

	"Gin_postgres_redis_lab_inventory/db"
	"Gin_postgres_redis_lab_inventory/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// New 每个测试一个独立库，已迁移；测试结束自动关闭
func New(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := db.OpenSQLite(dsn)
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close(conn) })
	return conn
}

func NewRepo(tb testing.TB) *db.Repo {
	tb.Helper()
	return db.NewRepo(New(tb))
}

func SeedComponent(tb testing.TB, r *db.Repo, id int64, name string, available int) *models.Component {
	tb.Helper()
	c := &models.Component{ID: id, Name: name, Category: "test", Available: available}
	if err := r.DB.Create(c).Error; err != nil {
		tb.Fatalf("seed component %d: %v", id, err)
	}
	return c
}

// Available 当前库存
func Available(tb testing.TB, r *db.Repo, id int64) int {
	tb.Helper()
	var c models.Component
	if err := r.DB.First(&c, "id = ?", id).Error; err != nil {
		tb.Fatalf("read component %d: %v", id, err)
	}
	return c.Available
}
