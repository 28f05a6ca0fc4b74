// Package timeouts defines shared timeout constants used across the server
// and its command entrypoints.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Request is the default deadline for reading and dispatching one HTTP
// request to the MCP server.
const Request = 30 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// Idle limits how long a keep-alive HTTP connection may sit unused.
const Idle = 60 * time.Second
