// Package seed 从 YAML 文件导入元件和队伍
package seed

import (
	"context"
	"fmt"
	"os"

	"Gin_postgres_redis_lab_inventory/db"
	"Gin_postgres_redis_lab_inventory/models"
	"Gin_postgres_redis_lab_inventory/workflow"

	"gopkg.in/yaml.v3"
)

type Component struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Available   int    `yaml:"available"`
}

type Team struct {
	TeamNumber string           `yaml:"team_number"`
	Members    []db.MemberInput `yaml:"members"`
}

type File struct {
	Components []Component `yaml:"components"`
	Teams      []Team      `yaml:"teams"`
}

// Result 新建数与跳过数
type Result struct {
	Components, Teams int
	Skipped           int
}

func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Apply 通过 engine 写入（同样走校验和审计）；已存在的元件/队伍跳过，
// 所以可以重复执行
func Apply(ctx context.Context, e *workflow.Engine, admin workflow.Identity, f *File) (Result, error) {
	var res Result
	for _, c := range f.Components {
		err := e.CreateComponent(ctx, admin, &models.Component{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Category:    c.Category,
			Available:   c.Available,
		})
		switch {
		case err == nil:
			res.Components++
		case workflow.CodeOf(err) == "DUPLICATE_COMPONENT":
			res.Skipped++
		default:
			return res, fmt.Errorf("component %d: %w", c.ID, err)
		}
	}
	for _, t := range f.Teams {
		_, err := e.CreateTeam(ctx, admin, t.TeamNumber, t.Members)
		switch {
		case err == nil:
			res.Teams++
		case workflow.CodeOf(err) == "DUPLICATE_TEAM":
			res.Skipped++
		default:
			return res, fmt.Errorf("team %s: %w", t.TeamNumber, err)
		}
	}
	return res, nil
}
