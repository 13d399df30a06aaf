package sandbox

import (
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/programme-lv/dilemma/internal/mailbox"
)

// KeyAllocator hands out SysV keys for mailbox segments.
type KeyAllocator interface {
	Acquire() (int, error)
	Release(key int)
}

// PrivateKeys gives every mailbox its own IPC_PRIVATE segment. There is no
// ceiling on how many may be alive at once.
type PrivateKeys struct{}

func (PrivateKeys) Acquire() (int, error) { return mailbox.PrivateKey, nil }
func (PrivateKeys) Release(int)           {}

const (
	DefaultBaseKey  = 998244353
	DefaultPoolSize = 16
)

// RotatingKeys cycles through a fixed pool of well-known keys, skipping the
// ones still held. At most size mailboxes can be alive at once.
type RotatingKeys struct {
	base int
	size int

	mu    sync.Mutex
	next  int
	inUse mapset.Set[int]
}

func NewRotatingKeys(base, size int) *RotatingKeys {
	if size <= 0 {
		panic("rotating key pool size must be positive")
	}
	return &RotatingKeys{
		base:  base,
		size:  size,
		inUse: mapset.NewThreadUnsafeSet[int](),
	}
}

func (r *RotatingKeys) Acquire() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < r.size; i++ {
		key := r.base + (r.next+i)%r.size
		if r.inUse.Contains(key) {
			continue
		}
		r.inUse.Add(key)
		r.next = (r.next + i + 1) % r.size
		return key, nil
	}
	return 0, fmt.Errorf("%w: all %d keys from %d are in use", ErrKeyPoolExhausted, r.size, r.base)
}

func (r *RotatingKeys) Release(key int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inUse.Remove(key)
}

func (r *RotatingKeys) InUse() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inUse.Cardinality()
}
