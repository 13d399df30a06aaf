package sandbox

import "errors"

var (
	// ErrResourceAcquisition wraps failures to create a mailbox or start a
	// child. Nothing is retried.
	ErrResourceAcquisition = errors.New("failed to acquire sandbox resources")
	ErrKeyPoolExhausted    = errors.New("mailbox key pool exhausted")

	// ErrPeerUnresponsive means the child did not answer before the
	// receive deadline.
	ErrPeerUnresponsive = errors.New("strategy process did not respond in time")
	// ErrPeerExited means the child is gone and left nothing to read.
	ErrPeerExited = errors.New("strategy process exited")
	ErrClosed     = errors.New("strategy process is closed")
)
