package utils

import (
	"bytes"
	"sync"
)

// LimitedBuffer keeps the first Limit bytes written to it and silently
// drops the rest, so a chatty child can never block on a full pipe.
type LimitedBuffer struct {
	Limit int

	mu        sync.Mutex
	buf       bytes.Buffer
	truncated bool
}

func NewLimitedBuffer(limit int) *LimitedBuffer {
	return &LimitedBuffer{Limit: limit}
}

// Write always reports len(p) bytes written.
func (b *LimitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.Limit - b.buf.Len()
	if room <= 0 {
		if len(p) > 0 {
			b.truncated = true
		}
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *LimitedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

func (b *LimitedBuffer) String() string {
	return string(b.Bytes())
}

func (b *LimitedBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}
