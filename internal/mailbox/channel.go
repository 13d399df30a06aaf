package mailbox

import (
	"runtime"
	"sync/atomic"
	"unsafe"
)

// Channel is one single-slot direction of a mailbox. At most one value may
// be outstanding; storing over an unread value loses it.
type Channel struct {
	ready *int32
	value *int32
}

// Store publishes v. The ready flag is written last so a reader that sees
// it also sees the value.
func (c Channel) Store(v int32) {
	atomic.StoreInt32(c.value, v)
	atomic.StoreInt32(c.ready, 1)
}

// TryLoad takes the pending value, if any, and marks the slot empty.
func (c Channel) TryLoad() (int32, bool) {
	if atomic.LoadInt32(c.ready) == 0 {
		return 0, false
	}
	v := atomic.LoadInt32(c.value)
	atomic.StoreInt32(c.ready, 0)
	return v, true
}

func (c Channel) Pending() bool {
	return atomic.LoadInt32(c.ready) != 0
}

// Endpoint is one side's view of a mailbox.
type Endpoint struct {
	In  Channel
	Out Channel
}

// NewEndpoint views mem as a mailbox from the given role. mem must be at
// least Size bytes and 4-byte aligned, which shmat guarantees.
func NewEndpoint(mem []byte, role Role) *Endpoint {
	if len(mem) < Size {
		panic("mailbox memory is smaller than the layout")
	}
	ch := func(s slot) Channel {
		return Channel{ready: word(mem, s.ready), value: word(mem, s.value)}
	}
	return &Endpoint{In: ch(role.inbound()), Out: ch(role.outbound())}
}

func (e *Endpoint) Send(v int32) {
	e.Out.Store(v)
}

func (e *Endpoint) TryReceive() (int32, bool) {
	return e.In.TryLoad()
}

// Receive spins until the peer has sent a value. It never gives up; the
// judge side uses its own bounded loop instead.
func (e *Endpoint) Receive() int32 {
	for i := 1; ; i++ {
		if v, ok := e.In.TryLoad(); ok {
			return v
		}
		if i%spinsPerYield == 0 {
			runtime.Gosched()
		}
	}
}

const spinsPerYield = 256

func word(mem []byte, idx int) *int32 {
	return (*int32)(unsafe.Pointer(&mem[idx*WordSize]))
}
