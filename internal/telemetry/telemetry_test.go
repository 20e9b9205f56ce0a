package telemetry

import (
	"testing"
	"time"
)

func TestPublishSubscribeRoundTrip(t *testing.T) {
	pub, err := NewPublisher("tcp://127.0.0.1:15556")
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewSubscriber("tcp://127.0.0.1:15556")
	if err != nil {
		t.Fatalf("NewSubscriber: %v", err)
	}
	defer sub.Close()

	// PUB/SUB over TCP is subject to the "slow joiner" problem: the
	// subscriber's connection may not be established by the time the
	// first message is sent, so retry publishing until it is observed.
	recordCh := make(chan []byte, 1)
	errCh := make(chan error, 1)
	go func() {
		_, record, err := sub.Recv()
		if err != nil {
			errCh <- err
			return
		}
		recordCh <- record
	}()

	want := []byte{0x01, 0x02, 0x03, 0x04}
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(150 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if err := pub.Publish("user-1", want); err != nil {
				return
			}
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()
	defer close(stop)

	select {
	case got := <-recordCh:
		if string(got) != string(want) {
			t.Fatalf("got %x want %x", got, want)
		}
	case err := <-errCh:
		t.Fatalf("Recv: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for published record")
	}
}
