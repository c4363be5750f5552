package db_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"Gin_postgres_redis_lab_inventory/db"
	"Gin_postgres_redis_lab_inventory/db/dbtest"
	"Gin_postgres_redis_lab_inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTeam(t *testing.T, repo *db.Repo, team string, rolls ...string) {
	t.Helper()
	_, err := repo.CreateTeam(context.Background(), team, members(rolls...))
	require.NoError(t, err)
}

func pendingRequest(id, team string, qty int) *models.ComponentRequest {
	return &models.ComponentRequest{
		RequestID:   id,
		TeamNumber:  team,
		ComponentID: 1,
		Quantity:    qty,
		RequestedBy: "A101",
		RequestDate: time.Now().UTC(),
		Status:      models.RequestPending,
	}
}

func TestAppendRequestAndTransition(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.NewRepo(t)
	seedTeam(t, repo, "IPA001", "A101")

	assert.ErrorIs(t, repo.AppendRequest(ctx, pendingRequest("REQ2026-001", "IPA009", 1)), db.ErrTeamNotFound)
	assert.ErrorIs(t, repo.AppendRequest(ctx, pendingRequest("REQ2026-001", "IPA001", 0)), db.ErrInvalidQuantity)
	require.NoError(t, repo.AppendRequest(ctx, pendingRequest("REQ2026-001", "IPA001", 2)))

	req, err := repo.LockPendingRequest(ctx, "ipa001", "REQ2026-001")
	require.NoError(t, err)
	assert.Nil(t, req.Resolution)

	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	assert.ErrorIs(t,
		repo.UpdateRequestStatus(ctx, "IPA001", "REQ2026-001", models.RequestPending, models.Resolution{By: "hema", At: at}),
		db.ErrInvalidStatus)
	require.NoError(t,
		repo.UpdateRequestStatus(ctx, "IPA001", "REQ2026-001", models.RequestRejected, models.Resolution{By: "hema", At: at}))

	// 只能离开 pending 一次
	assert.ErrorIs(t,
		repo.UpdateRequestStatus(ctx, "IPA001", "REQ2026-001", models.RequestAccepted, models.Resolution{By: "hema", At: at}),
		db.ErrRequestNotFound)
	_, err = repo.LockPendingRequest(ctx, "IPA001", "REQ2026-001")
	assert.ErrorIs(t, err, db.ErrRequestNotFound)

	got, err := repo.FindRequest(ctx, "IPA001", "REQ2026-001")
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, got.Status)
	require.NotNil(t, got.Resolution)
	assert.Equal(t, "hema", got.Resolution.By)
	assert.True(t, at.Equal(got.Resolution.At))
}

func TestUpdateRequestStatusIsScopedToTeam(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.NewRepo(t)
	seedTeam(t, repo, "IPA001", "A101")
	seedTeam(t, repo, "IPA002", "B101")
	require.NoError(t, repo.AppendRequest(ctx, pendingRequest("REQ2026-001", "IPA001", 1)))

	err := repo.UpdateRequestStatus(ctx, "IPA002", "REQ2026-001", models.RequestAccepted, models.Resolution{By: "x", At: time.Now()})
	assert.ErrorIs(t, err, db.ErrRequestNotFound)
}

func TestConcurrentTransitionSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.NewRepo(t)
	seedTeam(t, repo, "IPA001", "A101")
	require.NoError(t, repo.AppendRequest(ctx, pendingRequest("REQ2026-001", "IPA001", 1)))

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = repo.UpdateRequestStatus(ctx, "IPA001", "REQ2026-001", models.RequestAccepted,
				models.Resolution{By: fmt.Sprintf("inst-%d", i), At: time.Now().UTC()})
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, db.ErrRequestNotFound)
	}
	assert.Equal(t, 1, ok)
}

func issued(id, team string, due time.Time) *models.IssuedItem {
	return &models.IssuedItem{
		IssueID:            id,
		RequestID:          "REQ2026-001",
		TeamNumber:         team,
		ComponentID:        1,
		Quantity:           2,
		IssueDate:          due.Add(-14 * 24 * time.Hour),
		IssuedBy:           "hema",
		ExpectedReturnDate: due,
		Status:             models.IssueIssued,
	}
}

func TestIssueReturnLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.NewRepo(t)
	seedTeam(t, repo, "IPA001", "A101")
	due := time.Now().UTC().Add(24 * time.Hour)
	require.NoError(t, repo.AppendIssued(ctx, issued("ISS20261017-0001", "IPA001", due)))

	_, err := repo.FindIssue(ctx, "IPA002", "ISS20261017-0001")
	assert.ErrorIs(t, err, db.ErrIssueNotFound)

	require.NoError(t, repo.MarkIssueReturned(ctx, "IPA001", "ISS20261017-0001"))
	assert.ErrorIs(t, repo.MarkIssueReturned(ctx, "IPA001", "ISS20261017-0001"), db.ErrAlreadyReturned)
	assert.ErrorIs(t, repo.MarkIssueReturned(ctx, "IPA001", "ISS20261017-0999"), db.ErrIssueNotFound)

	rec := &models.ReturnRecord{
		ReturnID: "r-1", IssueID: "ISS20261017-0001", TeamNumber: "IPA001",
		ComponentID: 1, Quantity: 2, ReturnedAt: time.Now().UTC(), ReceivedBy: "hema",
	}
	require.NoError(t, repo.AppendReturn(ctx, rec))
	dup := *rec
	dup.ID, dup.ReturnID = 0, "r-2"
	assert.ErrorIs(t, repo.AppendReturn(ctx, &dup), db.ErrAlreadyReturned)
}

func TestMarkOverdue(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.NewRepo(t)
	seedTeam(t, repo, "IPA001", "A101")
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.AppendIssued(ctx, issued("ISS-late", "IPA001", now.Add(-48*time.Hour))))
	require.NoError(t, repo.AppendIssued(ctx, issued("ISS-ontime", "IPA001", now.Add(48*time.Hour))))
	require.NoError(t, repo.AppendIssued(ctx, issued("ISS-back", "IPA001", now.Add(-72*time.Hour))))
	require.NoError(t, repo.MarkIssueReturned(ctx, "IPA001", "ISS-back"))

	n, err := repo.MarkOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	late, err := repo.FindIssue(ctx, "IPA001", "ISS-late")
	require.NoError(t, err)
	assert.Equal(t, models.IssueOverdue, late.Status)
	back, err := repo.FindIssue(ctx, "IPA001", "ISS-back")
	require.NoError(t, err)
	assert.Equal(t, models.IssueReturned, back.Status)

	// overdue 仍然可以归还
	require.NoError(t, repo.MarkIssueReturned(ctx, "IPA001", "ISS-late"))
}

func TestSnapshotOrdering(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.NewRepo(t)
	seedTeam(t, repo, "IPA001", "A101", "A102")
	seedTeam(t, repo, "IPA002", "B101")

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.AppendRequest(ctx, pendingRequest(fmt.Sprintf("REQ2026-%03d", i), "IPA001", i)))
	}
	require.NoError(t, repo.AppendRequest(ctx, pendingRequest("REQ2026-004", "IPA002", 1)))

	s, err := repo.Snapshot(ctx, "ipa001")
	require.NoError(t, err)
	assert.Equal(t, "IPA001", s.TeamNumber)
	assert.Len(t, s.Members, 2)
	require.Len(t, s.ComponentRequests, 3)
	for i, r := range s.ComponentRequests {
		assert.Equal(t, fmt.Sprintf("REQ2026-%03d", i+1), r.RequestID)
	}
	assert.Empty(t, s.IssuedComponents)
	assert.NotNil(t, s.ReturnHistory)

	_, err = repo.Snapshot(ctx, "IPR404")
	assert.ErrorIs(t, err, db.ErrTeamNotFound)
}
