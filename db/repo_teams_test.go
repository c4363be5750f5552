package db_test

import (
	"context"
	"testing"

	"Gin_postgres_redis_lab_inventory/db"
	"Gin_postgres_redis_lab_inventory/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func members(rolls ...string) []db.MemberInput {
	out := make([]db.MemberInput, 0, len(rolls))
	for _, r := range rolls {
		out = append(out, db.MemberInput{Name: "Student " + r, RollNumber: r, Email: r + "@college.edu"})
	}
	return out
}

func TestValidFormats(t *testing.T) {
	for _, tn := range []string{"IPA001", "IPR999"} {
		assert.True(t, db.ValidTeamNumber(tn), tn)
	}
	for _, tn := range []string{"IPB001", "IPA01", "IPA0011", "", "XIPA001"} {
		assert.False(t, db.ValidTeamNumber(tn), tn)
	}
	assert.True(t, db.ValidTeamNumber("ipa001"), "team numbers are case-insensitive")

	assert.True(t, db.ValidRollNumber("S101"))
	assert.False(t, db.ValidRollNumber("s101"))
	assert.False(t, db.ValidRollNumber("S1001"))
	assert.False(t, db.ValidRollNumber("11011"))
}

func TestCreateTeam(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.NewRepo(t)

	team, err := repo.CreateTeam(ctx, "ipa001", members("a101", "A102"))
	require.NoError(t, err)
	assert.Equal(t, "IPA001", team.TeamNumber)

	got, err := repo.FindTeam(ctx, "IPA001")
	require.NoError(t, err)
	require.Len(t, got.Members, 2)
	assert.Equal(t, "A101", got.Members[0].RollNumber)
	assert.Equal(t, "A102", got.Members[1].RollNumber)
	assert.True(t, got.Members[0].IsActive)

	m, err := repo.FindMemberByRoll(ctx, "a102")
	require.NoError(t, err)
	assert.Equal(t, "IPA001", m.TeamNumber)
}

func TestCreateTeamRejects(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.NewRepo(t)
	_, err := repo.CreateTeam(ctx, "IPA001", members("A101"))
	require.NoError(t, err)

	cases := []struct {
		name    string
		team    string
		members []db.MemberInput
		want    error
	}{
		{"bad team number", "XYZ001", members("B101"), db.ErrInvalidTeamNumber},
		{"no members", "IPA002", nil, db.ErrNoMembers},
		{"bad roll number", "IPA002", members("B1011"), db.ErrInvalidRollNumber},
		{"duplicate team", "ipa001", members("B101"), db.ErrDuplicateTeam},
		{"roll number in other team", "IPA002", members("B101", "A101"), db.ErrDuplicateRollNumber},
		{"roll number repeated in input", "IPA002", members("B101", "b101"), db.ErrDuplicateRollNumber},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.CreateTeam(ctx, tc.team, tc.members)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// 失败的创建不能留下半个队伍
	assert.ErrorIs(t, repo.TeamExists(ctx, "IPA002"), db.ErrTeamNotFound)
	_, err = repo.FindMemberByRoll(ctx, "B101")
	assert.ErrorIs(t, err, db.ErrMemberNotFound)
}

func TestMemberActiveAndSeen(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.NewRepo(t)
	_, err := repo.CreateTeam(ctx, "IPR010", members("C201"))
	require.NoError(t, err)

	require.NoError(t, repo.SetMemberActive(ctx, "C201", false))
	m, err := repo.FindMemberByRoll(ctx, "C201")
	require.NoError(t, err)
	assert.False(t, m.IsActive)
	assert.ErrorIs(t, repo.SetMemberActive(ctx, "Z999", true), db.ErrMemberNotFound)

	require.NoError(t, repo.TouchMemberSeen(ctx, "C201"))
	m, err = repo.FindMemberByRoll(ctx, "C201")
	require.NoError(t, err)
	assert.NotNil(t, m.LastSeenAt)
}

func TestListTeams(t *testing.T) {
	ctx := context.Background()
	repo := dbtest.NewRepo(t)
	_, err := repo.CreateTeam(ctx, "IPR002", members("D101"))
	require.NoError(t, err)
	_, err = repo.CreateTeam(ctx, "IPA001", members("D102", "D103"))
	require.NoError(t, err)

	ts, err := repo.ListTeams(ctx)
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, "IPA001", ts[0].TeamNumber)
	assert.Len(t, ts[0].Members, 2)
	assert.Equal(t, "IPR002", ts[1].TeamNumber)
}
