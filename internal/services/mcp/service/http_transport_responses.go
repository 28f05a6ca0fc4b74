package service

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// rejection is a transport-level failure answered with a JSON error body.
type rejection struct {
	status  int
	message string
	outcome string
}

var (
	rejectNotFound    = rejection{status: http.StatusNotFound, message: "Not found", outcome: outcomeNotFound}
	rejectRateLimited = rejection{status: http.StatusTooManyRequests, message: "Too many requests", outcome: outcomeRateLimited}
	rejectTooLarge    = rejection{status: http.StatusRequestEntityTooLarge, message: "Request body too large", outcome: outcomeTooLarge}
	rejectTimeout     = rejection{status: http.StatusRequestTimeout, message: "Request timeout", outcome: outcomeTimeout}
	rejectBadRequest  = rejection{status: http.StatusBadRequest, message: "Bad request", outcome: outcomeBadRequest}
	rejectInvalidJSON = rejection{status: http.StatusBadRequest, message: "Invalid JSON in request body", outcome: outcomeInvalidJSON}
	rejectInternal    = rejection{status: http.StatusInternalServerError, message: "Internal server error", outcome: outcomeInternalError}
)

type errorResponse struct {
	Error string `json:"error"`
}

type rpcErrorEnvelope struct {
	JSONRPC string         `json:"jsonrpc"`
	Error   *jsonrpc.Error `json:"error"`
	ID      any            `json:"id"`
}

// reject writes rej and returns its outcome. Oversized bodies also close the
// connection so the client stops sending.
func reject(w http.ResponseWriter, rej rejection) string {
	if rej.status == http.StatusRequestEntityTooLarge {
		w.Header().Set("Connection", "close")
	}
	writeJSONError(w, rej.status, rej.message)
	return rej.outcome
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeInvalidRequest answers a JSON body that is not a JSON-RPC message.
// The request id is unknown, so it is null.
func writeInvalidRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, rpcErrorEnvelope{
		JSONRPC: "2.0",
		Error: &jsonrpc.Error{
			Code:    jsonrpc.CodeInvalidRequest,
			Message: "Invalid Request",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to encode response: %v", err)
		status = http.StatusInternalServerError
		data = []byte(`{"error":"Internal server error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// responseRecorder remembers the status it sent and ignores later status
// lines, so a failure after the response started cannot corrupt it.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (w *responseRecorder) WriteHeader(status int) {
	if w.status != 0 {
		return
	}
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(p)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *responseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *responseRecorder) wroteHeader() bool {
	return w.status != 0
}
