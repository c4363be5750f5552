package workflow_test

import (
	"context"
	"testing"
	"time"

	"Gin_postgres_redis_lab_inventory/db"
	"Gin_postgres_redis_lab_inventory/db/dbtest"
	"Gin_postgres_redis_lab_inventory/workflow"

	"github.com/stretchr/testify/require"
)

var (
	admin      = workflow.Identity{SubjectID: "root", Role: workflow.RoleAdmin}
	instructor = workflow.Identity{SubjectID: "hema", Role: workflow.RoleInstructor}
	alice      = workflow.Identity{SubjectID: "A101", Role: workflow.RoleStudent, TeamNumber: "IPA001"}
	bob        = workflow.Identity{SubjectID: "B101", Role: workflow.RoleStudent, TeamNumber: "IPA002"}
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	repo   *db.Repo
	engine *workflow.Engine
	clock  *fixedClock
}

// newFixture: component 1 with 5 units, teams IPA001 (A101, A102) and IPA002 (B101)
func newFixture(t *testing.T, opts ...workflow.Option) *fixture {
	t.Helper()
	repo := dbtest.NewRepo(t)
	clock := &fixedClock{t: time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)}
	opts = append([]workflow.Option{workflow.WithClock(clock.Now)}, opts...)
	e := workflow.New(repo, opts...)

	dbtest.SeedComponent(t, repo, 1, "Arduino Uno", 5)
	ctx := context.Background()
	_, err := repo.CreateTeam(ctx, "IPA001", []db.MemberInput{
		{Name: "Alice", RollNumber: "A101"},
		{Name: "Arun", RollNumber: "A102"},
	})
	require.NoError(t, err)
	_, err = repo.CreateTeam(ctx, "IPA002", []db.MemberInput{{Name: "Bob", RollNumber: "B101"}})
	require.NoError(t, err)
	return &fixture{repo: repo, engine: e, clock: clock}
}

func (f *fixture) available(t *testing.T, id int64) int {
	t.Helper()
	return dbtest.Available(t, f.repo, id)
}

func requireKind(t *testing.T, err error, kind workflow.Kind, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, workflow.KindOf(err), "error: %v", err)
	require.Equal(t, code, workflow.CodeOf(err))
}
