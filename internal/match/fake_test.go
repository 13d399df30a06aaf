package match_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/programme-lv/dilemma/internal/match"
)

// fakePeer replays a fixed list of moves, repeating the last one, and
// records what the judge sent it.
type fakePeer struct {
	moves  []int32
	turn   int
	sent   []int32
	closed int
}

func (p *fakePeer) Send(v int32) error {
	p.sent = append(p.sent, v)
	return nil
}

func (p *fakePeer) Receive(context.Context) (int32, error) {
	i := min(p.turn, len(p.moves)-1)
	p.turn++
	return p.moves[i], nil
}

func (p *fakePeer) Close() error {
	p.closed++
	return nil
}

// fakeSpawner hands out fakePeers by execution command.
type fakeSpawner struct {
	mu      sync.Mutex
	scripts map[string][]int32
	spawned []*fakePeer
}

func newFakeSpawner(scripts map[string][]int32) *fakeSpawner {
	return &fakeSpawner{scripts: scripts}
}

func (s *fakeSpawner) Spawn(_ context.Context, execCmd string) (match.Peer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	moves, ok := s.scripts[execCmd]
	if !ok {
		return nil, fmt.Errorf("no script for %q", execCmd)
	}
	p := &fakePeer{moves: moves}
	s.spawned = append(s.spawned, p)
	return p, nil
}
