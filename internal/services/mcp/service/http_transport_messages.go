package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"

	platformotel "github.com/louisbranch/plugin-catalog/internal/platform/otel"
	"github.com/louisbranch/plugin-catalog/internal/platform/ratelimiter"
	"github.com/louisbranch/plugin-catalog/internal/platform/requestctx"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	requestIDHeader = "X-Request-Id"

	methodInitialize        = "initialize"
	notificationInitialized = "notifications/initialized"

	// statelessProtocolVersion is assumed for sessions that skip initialize.
	statelessProtocolVersion = "2025-06-18"
)

// handleMessages handles POST /mcp. Each request runs in its own MCP session:
// it binds a catalog snapshot and a fresh server, reads and validates the
// body, dispatches one JSON-RPC message and tears the session down again.
// Nothing about one request is visible to another.
func (t *HTTPTransport) handleMessages(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.RequestIDOrNew(r.Header.Get(requestIDHeader))
	w.Header().Set(requestIDHeader, requestID)
	rw := &responseRecorder{ResponseWriter: w}

	ctx := platformotel.ExtractHTTP(r.Context(), r.Header)
	ctx = requestctx.WithRequestID(ctx, requestID)
	ctx, span := t.tracer.Start(ctx, "mcp.http.request",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("mcp.request_id", requestID)),
	)

	outcome := outcomeInternalError
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("MCP request %s panicked: %v", requestID, rec)
			outcome = outcomeInternalError
			if !rw.wroteHeader() {
				reject(rw, rejectInternal)
			}
		}
		if outcome == outcomeInternalError {
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(
			attribute.String("mcp.outcome", outcome),
			attribute.Int("http.response.status_code", rw.status),
		)
		span.End()
		t.metrics.observeRequest(outcome)
	}()

	outcome = t.serveMessage(ctx, rw, r)
}

func (t *HTTPTransport) serveMessage(ctx context.Context, w *responseRecorder, r *http.Request) string {
	requestID := requestctx.RequestIDFromContext(ctx)
	if !t.limiter.Allow(ratelimiter.ClientKey(r), t.now()) {
		return reject(w, rejectRateLimited)
	}

	server, err := t.newServer(domain.StaticCatalog(t.store.Snapshot()))
	if err != nil {
		log.Printf("MCP request %s: create server: %v", requestID, err)
		return reject(w, rejectInternal)
	}

	body, rej := t.readBody(w, r)
	if rej.status != 0 {
		if rej.outcome != outcomeTooLarge {
			log.Printf("MCP request %s: read body: %s", requestID, rej.message)
		}
		return reject(w, rej)
	}

	if !json.Valid(body) {
		return reject(w, rejectInvalidJSON)
	}

	msg, err := jsonrpc.DecodeMessage(body)
	if err != nil {
		log.Printf("MCP request %s: invalid JSON-RPC message: %v", requestID, err)
		writeInvalidRequest(w)
		return outcomeInvalidRequest
	}
	t.metrics.observeBody(len(body))

	return t.dispatch(ctx, w, server, msg)
}

// readBody reads at most maxBodySize bytes before the request deadline. A
// declared Content-Length over the ceiling is rejected without reading.
func (t *HTTPTransport) readBody(w *responseRecorder, r *http.Request) ([]byte, rejection) {
	if r.ContentLength > t.maxBodySize {
		return nil, rejectTooLarge
	}
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(t.now().Add(t.requestTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Printf("Failed to set read deadline: %v", err)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, t.maxBodySize))
	if err == nil {
		return body, rejection{}
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return nil, rejectTooLarge
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return nil, rejectTimeout
	}
	return nil, rejectBadRequest
}

// dispatch delivers msg to server over a one-shot connection. Calls wait for
// their response until the request deadline; notifications and responses
// are acknowledged once the server has taken them. The request id in ctx
// doubles as the MCP session id.
func (t *HTTPTransport) dispatch(ctx context.Context, w *responseRecorder, server *mcp.Server, msg jsonrpc.Message) string {
	sessionID := requestctx.RequestIDFromContext(ctx)
	ctx, cancel := context.WithTimeout(ctx, t.requestTimeout)
	defer cancel()

	conn := newRequestConnection(sessionID, msg)
	defer conn.Close()

	session, err := server.Connect(ctx, requestTransport{conn: conn}, &mcp.ServerSessionOptions{
		State: statelessSessionState(msg),
	})
	if err != nil {
		log.Printf("MCP request %s: connect session: %v", sessionID, err)
		return reject(w, rejectInternal)
	}
	defer session.Close()

	req, ok := msg.(*jsonrpc.Request)
	if !ok || !req.IsCall() {
		select {
		case <-conn.delivered:
		case <-ctx.Done():
		}
		w.WriteHeader(http.StatusAccepted)
		return outcomeAccepted
	}

	start := t.now()
	select {
	case resp := <-conn.responses:
		t.metrics.observeDispatch(req.Method, t.now().Sub(start))
		data, err := jsonrpc.EncodeMessage(resp)
		if err != nil {
			log.Printf("MCP request %s: encode response: %v", sessionID, err)
			return reject(w, rejectInternal)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			log.Printf("Failed to write response: %v", err)
		}
		return outcomeOK
	case <-ctx.Done():
		conn.cancel("request timeout")
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Printf("MCP request %s: %s timed out after %s", sessionID, req.Method, t.requestTimeout)
			return reject(w, rejectTimeout)
		}
		return outcomeCancelled
	}
}

// statelessSessionState pre-initializes a per-request session so that any
// method is accepted without a prior handshake. initialize and
// notifications/initialized still run their normal handlers.
func statelessSessionState(msg jsonrpc.Message) *mcp.ServerSessionState {
	var method string
	if req, ok := msg.(*jsonrpc.Request); ok {
		method = req.Method
	}
	state := &mcp.ServerSessionState{LogLevel: "info"}
	if method != methodInitialize {
		state.InitializeParams = &mcp.InitializeParams{ProtocolVersion: statelessProtocolVersion}
	}
	if method != notificationInitialized {
		state.InitializedParams = new(mcp.InitializedParams)
	}
	return state
}
