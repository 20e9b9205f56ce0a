package transport

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// PeerAddr describes how to reach one of the other two parties.
type PeerAddr struct {
	ID      int
	Listen  bool   // this process listens for this peer rather than dialing out
	Address string // "host:port" to dial, or "host:port" to listen on
}

// WebSocketNetwork is the real inter-process Channel: each party dials
// the peers whose PeerAddr has Listen == false and listens for the
// others, so every pair of parties opens one connection when the two
// parties' configurations agree on which side listens. It is not
// exercised by the core's deterministic tests, which stay on
// LocalNetwork.
type WebSocketNetwork struct {
	self int

	mu    sync.Mutex
	conns map[int]*websocket.Conn

	inbox map[int]chan []byte
}

// DialPeers establishes a WebSocketNetwork for party `self`, dialing out
// to every peer address marked Listen == false and listening for the
// rest. It blocks until every connection is established.
func DialPeers(self int, peers []PeerAddr) (*WebSocketNetwork, error) {
	n := &WebSocketNetwork{
		self:  self,
		conns: make(map[int]*websocket.Conn),
		inbox: make(map[int]chan []byte),
	}
	for _, p := range peers {
		n.inbox[p.ID] = make(chan []byte, 64)
	}

	var listenAddrs []PeerAddr
	var dialErr error
	var wg sync.WaitGroup

	for _, p := range peers {
		p := p
		if p.Listen {
			listenAddrs = append(listenAddrs, p)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := dialWithRetry(p.Address)
			if err != nil {
				dialErr = fmt.Errorf("transport: dialing party %d at %s: %w", p.ID, p.Address, err)
				return
			}
			n.mu.Lock()
			n.conns[p.ID] = conn
			n.mu.Unlock()
			go n.readLoop(p.ID, conn)
		}()
	}

	for _, p := range listenAddrs {
		ln, err := net.Listen("tcp", p.Address)
		if err != nil {
			return nil, fmt.Errorf("transport: listening for party %d on %s: %w", p.ID, p.Address, err)
		}
		upgrader := websocket.Upgrader{}
		srv := &http.Server{}
		connCh := make(chan *websocket.Conn, 1)
		srv.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := upgrader.Upgrade(w, r, nil)
			if err == nil {
				connCh <- c
			}
		})
		go srv.Serve(ln)
		conn := <-connCh
		n.mu.Lock()
		n.conns[p.ID] = conn
		n.mu.Unlock()
		go n.readLoop(p.ID, conn)
	}

	wg.Wait()
	if dialErr != nil {
		return nil, dialErr
	}
	return n, nil
}

func dialWithRetry(addr string) (*websocket.Conn, error) {
	var lastErr error
	for attempt := 0; attempt < 20; attempt++ {
		conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr, nil)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(250 * time.Millisecond)
	}
	return nil, lastErr
}

func (n *WebSocketNetwork) readLoop(peerID int, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			close(n.inbox[peerID])
			return
		}
		n.inbox[peerID] <- data
	}
}

func (n *WebSocketNetwork) SendTo(partyID int, msg []byte) error {
	n.mu.Lock()
	conn, ok := n.conns[partyID]
	n.mu.Unlock()
	if !ok {
		return fmt.Errorf("transport: no connection to party %d", partyID)
	}
	return conn.WriteMessage(websocket.BinaryMessage, msg)
}

func (n *WebSocketNetwork) RecvFrom(partyID int) ([]byte, error) {
	ch, ok := n.inbox[partyID]
	if !ok {
		return nil, fmt.Errorf("transport: no inbox for party %d", partyID)
	}
	msg, ok := <-ch
	if !ok {
		return nil, fmt.Errorf("transport: connection to party %d closed", partyID)
	}
	return msg, nil
}

func (n *WebSocketNetwork) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	var firstErr error
	for _, c := range n.conns {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
