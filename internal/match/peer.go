package match

import (
	"context"

	"github.com/programme-lv/dilemma/internal/sandbox"
)

// Peer is one running strategy as the judge sees it.
type Peer interface {
	Send(v int32) error
	Receive(ctx context.Context) (int32, error)
	Close() error
}

type Spawner interface {
	Spawn(ctx context.Context, execCmd string) (Peer, error)
}

type SpawnFunc func(ctx context.Context, execCmd string) (Peer, error)

func (f SpawnFunc) Spawn(ctx context.Context, execCmd string) (Peer, error) {
	return f(ctx, execCmd)
}

// Sandboxed spawns peers as sandboxed processes.
func Sandboxed(s *sandbox.Spawner) Spawner {
	return SpawnFunc(func(ctx context.Context, execCmd string) (Peer, error) {
		p, err := s.Spawn(ctx, execCmd)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}
