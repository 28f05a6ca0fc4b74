package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const notificationCancelled = "notifications/cancelled"

var errConnectionClosed = errors.New("connection closed")

// requestConnection implements mcp.Connection for exactly one HTTP request.
// Read hands the decoded message to the MCP runtime and then blocks until the
// connection closes; Write keeps only the response to that message.
type requestConnection struct {
	sessionID string
	callID    jsonrpc.ID
	incoming  chan jsonrpc.Message
	responses chan *jsonrpc.Response
	delivered chan struct{}
	closed    chan struct{}

	deliverOnce sync.Once
	closeOnce   sync.Once
}

func newRequestConnection(sessionID string, msg jsonrpc.Message) *requestConnection {
	c := &requestConnection{
		sessionID: sessionID,
		incoming:  make(chan jsonrpc.Message, 2),
		responses: make(chan *jsonrpc.Response, 1),
		delivered: make(chan struct{}),
		closed:    make(chan struct{}),
	}
	if req, ok := msg.(*jsonrpc.Request); ok && req.IsCall() {
		c.callID = req.ID
	}
	c.incoming <- msg
	return c
}

// Read implements mcp.Connection.Read.
func (c *requestConnection) Read(ctx context.Context) (jsonrpc.Message, error) {
	select {
	case <-c.closed:
		return nil, io.EOF
	default:
	}
	select {
	case msg := <-c.incoming:
		c.deliverOnce.Do(func() { close(c.delivered) })
		return msg, nil
	case <-c.closed:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Write implements mcp.Connection.Write. Server-initiated traffic has no way
// back to an HTTP client that is waiting on a single response, so it is dropped.
func (c *requestConnection) Write(_ context.Context, msg jsonrpc.Message) error {
	select {
	case <-c.closed:
		return errConnectionClosed
	default:
	}
	resp, ok := msg.(*jsonrpc.Response)
	if !ok || !c.callID.IsValid() || resp.ID != c.callID {
		return nil
	}
	select {
	case c.responses <- resp:
	default:
	}
	return nil
}

// Close implements mcp.Connection.Close. It is safe to call more than once.
func (c *requestConnection) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// SessionID implements mcp.Connection.SessionID.
func (c *requestConnection) SessionID() string {
	return c.sessionID
}

// cancel asks the MCP runtime to abandon the in-flight call, which cancels the
// context its tool handler runs under.
func (c *requestConnection) cancel(reason string) {
	if !c.callID.IsValid() {
		return
	}
	params, err := json.Marshal(mcp.CancelledParams{RequestID: c.callID.Raw(), Reason: reason})
	if err != nil {
		return
	}
	select {
	case c.incoming <- &jsonrpc.Request{Method: notificationCancelled, Params: params}:
	default:
	}
}

// requestTransport is the mcp.Transport handed to Server.Connect for one request.
type requestTransport struct {
	conn *requestConnection
}

func (t requestTransport) Connect(context.Context) (mcp.Connection, error) {
	if t.conn == nil {
		return nil, errConnectionClosed
	}
	return t.conn, nil
}
