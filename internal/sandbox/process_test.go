package sandbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/programme-lv/dilemma/internal/sandbox"
	"github.com/programme-lv/dilemma/internal/sandbox/sandboxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTimeout(t *testing.T, d time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

func TestProcessTitForTat(t *testing.T) {
	sandboxtest.RequireShm(t)
	sp := &sandbox.Spawner{}

	p, err := sp.Spawn(context.Background(), sandboxtest.Command("titfortat"))
	require.NoError(t, err)
	defer p.Close()

	ctx := withTimeout(t, 10*time.Second)
	v, err := p.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v, "tit for tat opens with 1")

	for _, move := range []int32{0, 1, 0, 0} {
		require.NoError(t, p.Send(move))
		v, err = p.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, move, v)
	}
	require.NoError(t, p.Send(-1))
}

func TestReceiveTimesOut(t *testing.T) {
	sandboxtest.RequireShm(t)
	sp := &sandbox.Spawner{}

	p, err := sp.Spawn(context.Background(), sandboxtest.Command("silent"))
	require.NoError(t, err)
	defer p.Close()

	start := time.Now()
	_, err = p.Receive(withTimeout(t, 200*time.Millisecond))
	assert.ErrorIs(t, err, sandbox.ErrPeerUnresponsive)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestReceiveAfterExit(t *testing.T) {
	sandboxtest.RequireShm(t)
	sp := &sandbox.Spawner{}

	p, err := sp.Spawn(context.Background(), sandboxtest.Command("crash"))
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Receive(withTimeout(t, 10*time.Second))
	assert.ErrorIs(t, err, sandbox.ErrPeerExited)

	p2, err := sp.Spawn(context.Background(), "/nonexistent/strategy")
	require.NoError(t, err)
	defer p2.Close()

	_, err = p2.Receive(withTimeout(t, 10*time.Second))
	assert.ErrorIs(t, err, sandbox.ErrPeerExited)
}

func TestCloseIsIdempotent(t *testing.T) {
	sandboxtest.RequireShm(t)
	keys := sandbox.NewRotatingKeys(sandbox.DefaultBaseKey+1000, 2)
	sp := &sandbox.Spawner{Keys: keys}

	p, err := sp.Spawn(context.Background(), sandboxtest.Command("silent"))
	require.NoError(t, err)
	assert.Equal(t, 1, keys.InUse())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 0, keys.InUse())

	assert.ErrorIs(t, p.Send(1), sandbox.ErrClosed)
	_, err = p.Receive(context.Background())
	assert.ErrorIs(t, err, sandbox.ErrClosed)
}

func TestCloseInterruptsReceive(t *testing.T) {
	sandboxtest.RequireShm(t)
	sp := &sandbox.Spawner{}

	p, err := sp.Spawn(context.Background(), sandboxtest.Command("silent"))
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Receive(context.Background())
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, p.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, sandbox.ErrClosed)
	case <-time.After(10 * time.Second):
		t.Fatal("receive did not return after close")
	}
}

func TestReusedKeyStartsZeroed(t *testing.T) {
	sandboxtest.RequireShm(t)
	sp := &sandbox.Spawner{Keys: sandbox.NewRotatingKeys(sandbox.DefaultBaseKey+2000, 1)}
	ctx := withTimeout(t, 10*time.Second)

	// leave a value in each direction unread
	first, err := sp.Spawn(ctx, sandboxtest.Command("always1"))
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, first.Send(1))
	require.NoError(t, first.Close())

	second, err := sp.Spawn(ctx, sandboxtest.Command("stale"))
	require.NoError(t, err)
	defer second.Close()

	v, err := second.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(0), v, "child saw a value left over from the previous match")

	_, err = second.Receive(withTimeout(t, 100*time.Millisecond))
	assert.ErrorIs(t, err, sandbox.ErrPeerUnresponsive, "judge saw a value left over from the previous match")
}

func TestSpawnRespectsKeyCeiling(t *testing.T) {
	sandboxtest.RequireShm(t)
	sp := &sandbox.Spawner{Keys: sandbox.NewRotatingKeys(sandbox.DefaultBaseKey+3000, 1)}

	p, err := sp.Spawn(context.Background(), sandboxtest.Command("silent"))
	require.NoError(t, err)
	defer p.Close()

	_, err = sp.Spawn(context.Background(), sandboxtest.Command("silent"))
	assert.ErrorIs(t, err, sandbox.ErrResourceAcquisition)
	assert.ErrorIs(t, err, sandbox.ErrKeyPoolExhausted)
}
