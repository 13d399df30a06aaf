// Package natsrep publishes tournament events as JSON on a NATS subject.
package natsrep

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/programme-lv/dilemma/internal/reporter"
)

// Publisher is the part of *nats.Conn the sink uses.
type Publisher interface {
	Publish(subj string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

type Sink struct {
	pub     Publisher
	subject string
}

func NewSink(pub Publisher, subject string) *Sink {
	return &Sink{pub: pub, subject: subject}
}

func (s *Sink) Send(msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := s.pub.Publish(s.subject, b); err != nil {
		return fmt.Errorf("failed to publish message to NATS: %w", err)
	}
	return nil
}

// New returns a reporter streaming to subject over nc.
func New(nc *nats.Conn, subject string, logger *slog.Logger) *reporter.Streamer {
	return reporter.NewStreamer(NewSink(nc, subject), logger)
}

// Connect dials url and returns the connection with a reporter on it. The
// caller drains the connection when done.
func Connect(url, subject string, logger *slog.Logger) (*nats.Conn, *reporter.Streamer, error) {
	nc, err := nats.Connect(url, nats.Name("dilemma"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return nc, New(nc, subject, logger), nil
}
