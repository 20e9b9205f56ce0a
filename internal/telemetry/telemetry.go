// Package telemetry republishes protected device records over ZeroMQ so
// a monitoring process can observe device activity without taking part
// in the encryption itself.
package telemetry

import (
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"
)

// Publisher is a PUB socket bound to a single endpoint. Each protected
// record is sent as a three-frame message: the "device" topic, the user
// id, and the record.
type Publisher struct {
	ctx    context.Context
	cancel context.CancelFunc
	sock   zmq4.Socket
}

// NewPublisher binds a PUB socket at endpoint (e.g. "tcp://127.0.0.1:5556").
func NewPublisher(endpoint string) (*Publisher, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sock := zmq4.NewPub(ctx)
	if err := sock.Listen(endpoint); err != nil {
		cancel()
		return nil, fmt.Errorf("telemetry: failed to bind publisher: %w", err)
	}
	return &Publisher{ctx: ctx, cancel: cancel, sock: sock}, nil
}

// Publish sends one protected record under the "device" topic.
func (p *Publisher) Publish(userID string, record []byte) error {
	msg := zmq4.NewMsgFrom([]byte("device"), []byte(userID), record)
	if err := p.sock.Send(msg); err != nil {
		return fmt.Errorf("telemetry: failed to publish record: %w", err)
	}
	return nil
}

// Close releases the publisher's socket.
func (p *Publisher) Close() error {
	p.cancel()
	return p.sock.Close()
}

// Subscriber is a SUB socket dialing a publisher's endpoint, subscribed
// to every "device" topic record.
type Subscriber struct {
	ctx    context.Context
	cancel context.CancelFunc
	sock   zmq4.Socket
}

// NewSubscriber dials endpoint and subscribes to the "device" topic.
func NewSubscriber(endpoint string) (*Subscriber, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sock := zmq4.NewSub(ctx)
	if err := sock.Dial(endpoint); err != nil {
		cancel()
		return nil, fmt.Errorf("telemetry: failed to dial subscriber: %w", err)
	}
	if err := sock.SetOption(zmq4.OptionSubscribe, "device"); err != nil {
		cancel()
		return nil, fmt.Errorf("telemetry: failed to subscribe: %w", err)
	}
	return &Subscriber{ctx: ctx, cancel: cancel, sock: sock}, nil
}

// Recv blocks until the next record arrives, returning the user id and
// the protected record.
func (s *Subscriber) Recv() (userID string, record []byte, err error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return "", nil, fmt.Errorf("telemetry: recv failed: %w", err)
	}
	if len(msg.Frames) != 3 {
		return "", nil, fmt.Errorf("telemetry: malformed record: %d frames", len(msg.Frames))
	}
	return string(msg.Frames[1]), msg.Frames[2], nil
}

// Close releases the subscriber's socket.
func (s *Subscriber) Close() error {
	s.cancel()
	return s.sock.Close()
}
