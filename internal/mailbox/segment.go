package mailbox

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// PrivateKey asks the kernel for a fresh segment nobody else can look up.
const PrivateKey = unix.IPC_PRIVATE

const segmentPerm = 0o666

// Segment is an attached SysV shared memory block holding one mailbox.
type Segment struct {
	id  int
	key int
	mem []byte
}

// Create gets (or creates) the segment for key, attaches it and zeroes it.
func Create(key int) (*Segment, error) {
	id, err := unix.SysvShmGet(key, Size, unix.IPC_CREAT|segmentPerm)
	if err != nil {
		return nil, fmt.Errorf("failed to shmget key %d: %w", key, err)
	}
	mem, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		_, _ = unix.SysvShmCtl(id, unix.IPC_RMID, nil)
		return nil, fmt.Errorf("failed to shmat segment %d: %w", id, err)
	}
	s := &Segment{id: id, key: key, mem: mem}
	s.Zero()
	return s, nil
}

// Attach maps an existing segment by id. This is what a strategy process
// does with the id it receives as its only argument.
func Attach(id int) (*Segment, error) {
	mem, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to shmat segment %d: %w", id, err)
	}
	if len(mem) < Size {
		_ = unix.SysvShmDetach(mem)
		return nil, fmt.Errorf("segment %d holds %d bytes, need %d", id, len(mem), Size)
	}
	return &Segment{id: id, key: -1, mem: mem}, nil
}

// AttachFromArgs attaches the segment whose id is the last of args.
func AttachFromArgs(args []string) (*Segment, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("expected the mailbox id as the last argument")
	}
	id, err := strconv.Atoi(args[len(args)-1])
	if err != nil {
		return nil, fmt.Errorf("invalid mailbox id %q: %w", args[len(args)-1], err)
	}
	return Attach(id)
}

func (s *Segment) ID() int {
	return s.id
}

func (s *Segment) Key() int {
	return s.key
}

func (s *Segment) Endpoint(role Role) *Endpoint {
	return NewEndpoint(s.mem, role)
}

func (s *Segment) Zero() {
	clear(s.mem[:Size])
}

// Detach unmaps the segment. The segment must not be touched afterwards.
func (s *Segment) Detach() error {
	if s.mem == nil {
		return nil
	}
	err := unix.SysvShmDetach(s.mem)
	s.mem = nil
	if err != nil {
		return fmt.Errorf("failed to shmdt segment %d: %w", s.id, err)
	}
	return nil
}

// Remove marks the segment for destruction once every process detached.
func (s *Segment) Remove() error {
	if _, err := unix.SysvShmCtl(s.id, unix.IPC_RMID, nil); err != nil {
		return fmt.Errorf("failed to remove segment %d: %w", s.id, err)
	}
	return nil
}
