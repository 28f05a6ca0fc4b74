package service

import "net/http"

type healthResponse struct {
	Status  string `json:"status"`
	Plugins int    `json:"plugins"`
}

// handleHealth reports liveness and the size of the current catalog.
func (t *HTTPTransport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Plugins: t.store.Snapshot().Len()})
}

func (t *HTTPTransport) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	t.metrics.observeRequest(reject(w, rejectNotFound))
}
