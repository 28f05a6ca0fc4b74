package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

func mustID(t *testing.T, v any) jsonrpc.ID {
	t.Helper()
	id, err := jsonrpc.MakeID(v)
	if err != nil {
		t.Fatalf("make id: %v", err)
	}
	return id
}

func TestRequestConnectionReadDeliversOnceThenBlocks(t *testing.T) {
	msg := &jsonrpc.Request{ID: mustID(t, float64(1)), Method: "ping"}
	conn := newRequestConnection("session-1", msg)

	got, err := conn.Read(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != msg {
		t.Fatalf("expected the request message, got %v", got)
	}
	select {
	case <-conn.delivered:
	default:
		t.Fatal("expected delivered to be closed after first read")
	}

	readErr := make(chan error, 1)
	go func() {
		_, err := conn.Read(context.Background())
		readErr <- err
	}()

	select {
	case err := <-readErr:
		t.Fatalf("read returned before close: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	select {
	case err := <-readErr:
		if !errors.Is(err, io.EOF) {
			t.Fatalf("expected EOF, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("close did not unblock read")
	}
}

func TestRequestConnectionReadContextCancelled(t *testing.T) {
	conn := newRequestConnection("session-1", &jsonrpc.Request{Method: "notifications/initialized"})
	if _, err := conn.Read(context.Background()); err != nil {
		t.Fatalf("read: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := conn.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRequestConnectionWriteKeepsMatchingResponse(t *testing.T) {
	conn := newRequestConnection("session-1", &jsonrpc.Request{ID: mustID(t, "abc"), Method: "tools/list"})
	ctx := context.Background()

	writes := []jsonrpc.Message{
		&jsonrpc.Request{Method: "notifications/message"},
		&jsonrpc.Response{ID: mustID(t, "other")},
		&jsonrpc.Response{ID: mustID(t, "abc"), Result: json.RawMessage(`{"tools":[]}`)},
		&jsonrpc.Response{ID: mustID(t, "abc"), Result: json.RawMessage(`{"second":true}`)},
	}
	for _, msg := range writes {
		if err := conn.Write(ctx, msg); err != nil {
			t.Fatalf("write %T: %v", msg, err)
		}
	}

	select {
	case resp := <-conn.responses:
		if string(resp.Result) != `{"tools":[]}` {
			t.Fatalf("unexpected response result %s", resp.Result)
		}
	default:
		t.Fatal("expected a buffered response")
	}
	select {
	case resp := <-conn.responses:
		t.Fatalf("expected a single response, got another: %s", resp.Result)
	default:
	}
}

func TestRequestConnectionWriteDropsResponsesForNotifications(t *testing.T) {
	conn := newRequestConnection("session-1", &jsonrpc.Request{Method: "notifications/initialized"})
	if err := conn.Write(context.Background(), &jsonrpc.Response{ID: mustID(t, float64(1))}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(conn.responses) != 0 {
		t.Fatal("notification connection should not buffer responses")
	}
}

func TestRequestConnectionWriteAfterClose(t *testing.T) {
	conn := newRequestConnection("session-1", &jsonrpc.Request{ID: mustID(t, float64(1)), Method: "ping"})
	_ = conn.Close()
	_ = conn.Close()

	err := conn.Write(context.Background(), &jsonrpc.Response{ID: mustID(t, float64(1))})
	if !errors.Is(err, errConnectionClosed) {
		t.Fatalf("expected errConnectionClosed, got %v", err)
	}
	if _, err := conn.Read(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF after close, got %v", err)
	}
}

func TestRequestConnectionCancelQueuesNotification(t *testing.T) {
	conn := newRequestConnection("session-1", &jsonrpc.Request{ID: mustID(t, float64(7)), Method: "tools/call"})
	ctx := context.Background()
	if _, err := conn.Read(ctx); err != nil {
		t.Fatalf("read: %v", err)
	}

	conn.cancel("request timeout")

	msg, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read cancel: %v", err)
	}
	req, ok := msg.(*jsonrpc.Request)
	if !ok || req.Method != notificationCancelled || req.IsCall() {
		t.Fatalf("expected cancellation notification, got %#v", msg)
	}
	var params struct {
		RequestID float64 `json:"requestId"`
		Reason    string  `json:"reason"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if params.RequestID != 7 || params.Reason != "request timeout" {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestRequestConnectionCancelIgnoresNotifications(t *testing.T) {
	conn := newRequestConnection("session-1", &jsonrpc.Request{Method: "notifications/initialized"})
	conn.cancel("request timeout")
	if len(conn.incoming) != 1 {
		t.Fatalf("expected only the original message queued, got %d", len(conn.incoming))
	}
}

func TestRequestConnectionSessionID(t *testing.T) {
	conn := newRequestConnection("session-42", &jsonrpc.Request{Method: "ping"})
	if conn.SessionID() != "session-42" {
		t.Fatalf("session id = %q", conn.SessionID())
	}
	got, err := requestTransport{conn: conn}.Connect(context.Background())
	if err != nil || got != conn {
		t.Fatalf("connect = %v, %v", got, err)
	}
	if _, err := (requestTransport{}).Connect(context.Background()); err == nil {
		t.Fatal("expected error for missing connection")
	}
}
