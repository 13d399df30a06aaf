package match_test

import (
	"context"
	"testing"
	"time"

	"github.com/programme-lv/dilemma/internal/match"
	"github.com/programme-lv/dilemma/internal/sandbox"
	"github.com/programme-lv/dilemma/internal/sandbox/sandboxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	sandboxtest.Main(m)
}

func TestPayoffMatrix(t *testing.T) {
	cases := []struct {
		a, b   int32
		sa, sb int
	}{
		{0, 0, 0, 0},
		{0, 1, 3, -1},
		{1, 0, -1, 3},
		{1, 1, 2, 2},
	}
	for _, c := range cases {
		sa, sb := match.Score(c.a, c.b)
		assert.Equal(t, c.sa, sa, "%d vs %d", c.a, c.b)
		assert.Equal(t, c.sb, sb, "%d vs %d", c.a, c.b)
	}
}

func TestIterRangeValidate(t *testing.T) {
	for _, r := range []match.IterRange{{1, 1}, {200, 500}, {match.MaxIterations, match.MaxIterations}} {
		assert.NoError(t, r.Validate(), r)
	}
	for _, r := range []match.IterRange{{0, 5}, {10, 5}, {-1, 3}, {1, match.MaxIterations + 1}} {
		assert.ErrorIs(t, r.Validate(), match.ErrInvalidRange, r)
	}
}

func TestSchedulerCoversRange(t *testing.T) {
	s := match.NewScheduler(42)
	r := match.IterRange{Min: 3, Max: 7}
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		n := s.Draw(r)
		require.GreaterOrEqual(t, n, r.Min)
		require.LessOrEqual(t, n, r.Max)
		seen[n] = true
	}
	assert.Len(t, seen, 5)
}

func TestSchedulerIsReproducible(t *testing.T) {
	a, b := match.NewScheduler(7), match.NewScheduler(7)
	r := match.IterRange{Min: 1, Max: 1000}
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Draw(r), b.Draw(r))
	}
}

func TestCompareScoresEveryTurn(t *testing.T) {
	sp := newFakeSpawner(map[string][]int32{
		"alt":   {0, 1},
		"coop":  {1},
		"sneak": {1, 1, 0},
	})
	j := match.NewJudge(sp, match.Options{Seed: 1})

	res, err := j.Compare(context.Background(), "alt", "sneak", match.IterRange{Min: 6, Max: 6})
	require.NoError(t, err)
	assert.Equal(t, 6, res.Iterations)
	assert.Equal(t, []int32{0, 1, 0, 1, 0, 1}, res.FirstChoices)
	assert.Equal(t, []int32{1, 1, 0, 0, 0, 0}, res.SecondChoices)

	var want1, want2 int
	for i := range res.FirstChoices {
		s1, s2 := match.Score(res.FirstChoices[i], res.SecondChoices[i])
		want1 += s1
		want2 += s2
	}
	assert.Equal(t, want1, res.FirstScore)
	assert.Equal(t, want2, res.SecondScore)
	assert.Equal(t, 3+2+0-1+0-1, res.FirstScore)

	first, second := sp.spawned[0], sp.spawned[1]
	assert.Equal(t, []int32{1, 1, 0, 0, 0, -1}, first.sent, "first side sees the second side's moves")
	assert.Equal(t, []int32{0, 1, 0, 1, 0, -1}, second.sent)
	assert.Equal(t, 1, first.closed)
	assert.Equal(t, 1, second.closed)
}

func TestCompareViolationDiscardsMatch(t *testing.T) {
	sp := newFakeSpawner(map[string][]int32{
		"coop": {1},
		"bad":  {1, 1, 7},
	})
	j := match.NewJudge(sp, match.Options{})

	res, err := j.Compare(context.Background(), "coop", "bad", match.IterRange{Min: 10, Max: 10})
	assert.Nil(t, res)
	require.ErrorIs(t, err, match.ErrProtocolViolation)

	var v *match.ViolationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, 2, v.Side)
	assert.Equal(t, 3, v.Turn)
	assert.Equal(t, int32(7), v.Value)

	first, second := sp.spawned[0], sp.spawned[1]
	assert.Len(t, first.sent, 2, "no turn is played after the violation")
	assert.Len(t, second.sent, 2)
	assert.Equal(t, 1, first.closed)
	assert.Equal(t, 1, second.closed)
}

func TestCompareRejectsRangeBeforeSpawning(t *testing.T) {
	sp := newFakeSpawner(map[string][]int32{"coop": {1}})
	j := match.NewJudge(sp, match.Options{})

	for _, r := range []match.IterRange{{0, 5}, {10, 5}} {
		res, err := j.Compare(context.Background(), "coop", "coop", r)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, match.ErrInvalidRange)
	}
	assert.Empty(t, sp.spawned)
}

func TestCompareClosesFirstWhenSecondFails(t *testing.T) {
	sp := newFakeSpawner(map[string][]int32{"coop": {1}})
	j := match.NewJudge(sp, match.Options{})

	_, err := j.Compare(context.Background(), "coop", "missing", match.IterRange{Min: 1, Max: 1})
	require.Error(t, err)
	require.Len(t, sp.spawned, 1)
	assert.Equal(t, 1, sp.spawned[0].closed)
}

func sandboxedJudge(t *testing.T) *match.Judge {
	t.Helper()
	sandboxtest.RequireShm(t)
	return match.NewJudge(match.Sandboxed(&sandbox.Spawner{}), match.Options{
		TurnTimeout: 10 * time.Second,
	})
}

func TestSandboxedAlwaysCooperate(t *testing.T) {
	j := sandboxedJudge(t)
	cmd := sandboxtest.Command("always1")

	res, err := j.Compare(context.Background(), cmd, cmd, match.IterRange{Min: 5, Max: 5})
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 1, 1, 1, 1}, res.FirstChoices)
	assert.Equal(t, []int32{1, 1, 1, 1, 1}, res.SecondChoices)
	assert.Equal(t, 10, res.FirstScore)
	assert.Equal(t, 10, res.SecondScore)
}

func TestSandboxedAlwaysDefect(t *testing.T) {
	j := sandboxedJudge(t)
	cmd := sandboxtest.Command("always0")

	res, err := j.Compare(context.Background(), cmd, cmd, match.IterRange{Min: 20, Max: 40})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Iterations, 20)
	assert.LessOrEqual(t, res.Iterations, 40)
	assert.Equal(t, 0, res.FirstScore)
	assert.Equal(t, 0, res.SecondScore)
}

func TestSandboxedTitForTatAgainstDefector(t *testing.T) {
	j := sandboxedJudge(t)

	res, err := j.Compare(context.Background(),
		sandboxtest.Command("titfortat"), sandboxtest.Command("always0"),
		match.IterRange{Min: 4, Max: 4})
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 0, 0, 0}, res.FirstChoices)
	assert.Equal(t, -1, res.FirstScore)
	assert.Equal(t, 3, res.SecondScore)
}

func TestSandboxedViolation(t *testing.T) {
	j := sandboxedJudge(t)

	res, err := j.Compare(context.Background(),
		sandboxtest.Command("always1"), sandboxtest.Command("invalid3"),
		match.IterRange{Min: 10, Max: 10})
	assert.Nil(t, res)
	var v *match.ViolationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, 2, v.Side)
	assert.Equal(t, 3, v.Turn)
}

func TestSandboxedCrash(t *testing.T) {
	j := sandboxedJudge(t)

	_, err := j.Compare(context.Background(),
		sandboxtest.Command("always1"), sandboxtest.Command("crash"),
		match.IterRange{Min: 3, Max: 3})
	assert.ErrorIs(t, err, sandbox.ErrPeerExited)
}
