package db

import (
	"context"
	"errors"
	"strings"

	"Gin_postgres_redis_lab_inventory/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrComponentNotFound  = errors.New("component not found")
	ErrDuplicateComponent = errors.New("component already exists")
	ErrInvalidComponent   = errors.New("invalid component")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
)

// Components

func (r *Repo) CreateComponent(ctx context.Context, c *models.Component) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.ID <= 0 || c.Name == "" || c.Available < 0 {
		return ErrInvalidComponent
	}
	return duplicate(r.DB.WithContext(ctx).Create(c).Error, ErrDuplicateComponent)
}

func (r *Repo) FindComponent(ctx context.Context, id int64) (*models.Component, error) {
	var c models.Component
	if err := r.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrComponentNotFound)
	}
	return &c, nil
}

// LockComponent 事务内锁住该行（SQLite 忽略 FOR UPDATE）
func (r *Repo) LockComponent(ctx context.Context, id int64) (*models.Component, error) {
	var c models.Component
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrComponentNotFound)
	}
	return &c, nil
}

func (r *Repo) ListComponents(ctx context.Context) ([]models.Component, error) {
	var cs []models.Component
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&cs).Error
	return cs, err
}

// Reserve 原子地检查 available >= qty 并扣减；库存不足时不产生任何副作用。
// 条件写在 UPDATE 的 WHERE 里，并发扣减不会超卖。
func (r *Repo) Reserve(ctx context.Context, componentID int64, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	res := r.DB.WithContext(ctx).Model(&models.Component{}).
		Where("id = ? AND available >= ?", componentID, qty).
		Update("available", gorm.Expr("available - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindComponent(ctx, componentID); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

// Release 归还预留（拒绝或归还入库时）
func (r *Repo) Release(ctx context.Context, componentID int64, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	res := r.DB.WithContext(ctx).Model(&models.Component{}).
		Where("id = ?", componentID).
		Update("available", gorm.Expr("available + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrComponentNotFound
	}
	return nil
}
