package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Conn is a request/response connection to a ledger node. Requests carry
// a command name and a parameter object; responses are command-specific
// JSON treated as untrusted input by the caller.
type Conn interface {
	Request(ctx context.Context, command string, params map[string]any) (json.RawMessage, error)
	Close() error
}

const (
	maxMessageSize = 512 * 1024
	writeTimeout   = 10 * time.Second
)

// wsConn is the gorilla/websocket Conn implementation. A single read
// pump dispatches responses to pending requests by id; writes are
// serialized by a mutex so telemetry fetches can be in flight alongside
// a user-initiated operation.
type wsConn struct {
	conn *websocket.Conn
	log  *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[uint64]chan response
	nextID  uint64
	closed  bool
	readErr error

	done chan struct{}
}

type response struct {
	result json.RawMessage
	err    error
}

// wsMessage is the node's response envelope. Error responses use the
// ledger's flat format with error fields at the top level.
type wsMessage struct {
	ID           uint64          `json:"id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	Error        string          `json:"error"`
	ErrorCode    int             `json:"error_code"`
	ErrorMessage string          `json:"error_message"`
}

// dialNode opens a websocket connection to the node and starts the read
// pump.
func dialNode(ctx context.Context, url string, log *zap.Logger) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	conn.SetReadLimit(maxMessageSize)

	c := &wsConn{
		conn:    conn,
		log:     log,
		pending: make(map[uint64]chan response),
		done:    make(chan struct{}),
	}
	go c.readPump()
	return c, nil
}

// Request sends one command and waits for the matching response.
func (c *wsConn) Request(ctx context.Context, command string, params map[string]any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed {
		err := c.readErr
		c.mu.Unlock()
		if err == nil {
			err = errConnClosed
		}
		return nil, &ConnectionError{Err: err}
	}
	c.nextID++
	id := c.nextID
	ch := make(chan response, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	msg := make(map[string]any, len(params)+2)
	for k, v := range params {
		msg[k] = v
	}
	msg["id"] = id
	msg["command"] = command

	c.writeMu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := c.conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		c.drop(id)
		return nil, &ConnectionError{Err: err}
	}

	select {
	case res := <-ch:
		return res.result, res.err
	case <-ctx.Done():
		c.drop(id)
		return nil, ctx.Err()
	case <-c.done:
		return nil, &ConnectionError{Err: errConnClosed}
	}
}

// Close tears the connection down and resolves every pending request.
// Idempotent.
func (c *wsConn) Close() error {
	return c.shutdown(errConnClosed)
}

func (c *wsConn) drop(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// readPump is the sole reader. It dispatches responses by id and
// terminates the connection on any read failure.
func (c *wsConn) readPump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.shutdown(err)
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Debug("discarding unparseable node message", zap.Error(err))
			continue
		}
		if msg.ID == 0 {
			// Unsolicited stream message; this session subscribes to
			// nothing, so there is no consumer for it.
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.ID]
		delete(c.pending, msg.ID)
		c.mu.Unlock()
		if !ok {
			continue
		}

		if msg.Status == "error" {
			ch <- response{err: &APIError{Name: msg.Error, Code: msg.ErrorCode, Message: msg.ErrorMessage}}
			continue
		}
		ch <- response{result: msg.Result}
	}
}

// shutdown closes the socket once and fails all pending requests with a
// ConnectionError.
func (c *wsConn) shutdown(cause error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.readErr = cause
	pending := c.pending
	c.pending = nil
	close(c.done)
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- response{err: &ConnectionError{Err: cause}}
	}
	return c.conn.Close()
}
